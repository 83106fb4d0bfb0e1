package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/medirush/medirush-backend/api/responses"
	"github.com/medirush/medirush-backend/api/validators"
	prescriptionsvc "github.com/medirush/medirush-backend/internal/prescriptions"
	"github.com/medirush/medirush-backend/pkg/analysis"
	"github.com/medirush/medirush-backend/pkg/config"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/logger"
)

// PrescriptionAnalyze accepts a prescription image, either as a multipart
// "image" part or as a raw body, and runs it through the analyzer.
func PrescriptionAnalyze(svc prescriptionsvc.Service, cfg config.AnalysisConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescription service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := readUploadedImage(w, r, cfg.MaxUploadMB)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AnalyzeUpload(r.Context(), userID, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type mergeRequest struct {
	Medicines []analysis.ExtractedMedicine `json:"medicines" validate:"required,min=1,dive"`
}

// PrescriptionMerge folds extracted medicines into the cart, matching
// against the catalog by name.
func PrescriptionMerge(svc prescriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescription service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload mergeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MergeToCart(r.Context(), userID, payload.Medicines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// readUploadedImage drains the image bytes from a multipart form or a raw
// body. The byte cap fires here so oversized uploads never buffer fully.
func readUploadedImage(w http.ResponseWriter, r *http.Request, maxUploadMB int) ([]byte, error) {
	maxBytes := int64(maxUploadMB) * 1024 * 1024
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, payloadTooLarge(maxBytes)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image form field required")
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, payloadTooLarge(maxBytes)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read image upload")
		}
		return image, nil
	}

	image, err := io.ReadAll(r.Body)
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, payloadTooLarge(maxBytes)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read image upload")
	}
	return image, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func payloadTooLarge(maxBytes int64) error {
	return pkgerrors.New(pkgerrors.CodePayloadTooLarge, "image exceeds the upload size limit").
		WithDetails(map[string]any{"maxBytes": maxBytes})
}
