package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/api/responses"
	"github.com/medirush/medirush-backend/api/validators"
	checkoutsvc "github.com/medirush/medirush-backend/internal/checkout"
	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/logger"
)

type checkoutAddress struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required,min=10"`
	AddressLine string `json:"addressLine" validate:"required"`
	Pincode     string `json:"pincode" validate:"required,len=6"`
}

type checkoutRequest struct {
	PaymentMethod string           `json:"paymentMethod" validate:"required"`
	AddressID     *uuid.UUID       `json:"addressId"`
	Address       *checkoutAddress `json:"address"`
}

// CheckoutPlace turns the current cart into a confirmed order.
func CheckoutPlace(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		var address *checkoutsvc.DeliveryAddress
		if payload.Address != nil {
			address = &checkoutsvc.DeliveryAddress{
				Name:        strings.TrimSpace(payload.Address.Name),
				Phone:       strings.TrimSpace(payload.Address.Phone),
				AddressLine: strings.TrimSpace(payload.Address.AddressLine),
				Pincode:     strings.TrimSpace(payload.Address.Pincode),
			}
		}

		order, err := svc.Place(r.Context(), checkoutsvc.PlaceParams{
			UserID:        userID,
			PaymentMethod: method,
			AddressID:     payload.AddressID,
			Address:       address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
