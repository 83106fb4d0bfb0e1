package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/medirush/medirush-backend/api/responses"
	"github.com/medirush/medirush-backend/api/validators"
	directorysvc "github.com/medirush/medirush-backend/internal/directory"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/logger"
	"github.com/medirush/medirush-backend/pkg/pagination"
)

// HospitalsList returns nearby hospitals, closest first.
func HospitalsList(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}

		open24x7, err := validators.ParseQueryBool(r, "open24x7")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		maxKM, err := parseQueryFloat(r, "maxKm")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hospitals, err := svc.ListHospitals(r.Context(), directorysvc.HospitalParams{
			Search:   r.URL.Query().Get("search"),
			Open24x7: open24x7,
			MaxKM:    maxKM,
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, hospitals)
	}
}

// HospitalGet returns a single hospital by id.
func HospitalGet(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hospital, err := svc.GetHospital(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, hospital)
	}
}

// DoctorsList returns doctors, best rated first.
func DoctorsList(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}

		available, err := validators.ParseQueryBool(r, "available")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doctors, err := svc.ListDoctors(r.Context(), directorysvc.DoctorParams{
			Specialty: r.URL.Query().Get("specialty"),
			Search:    r.URL.Query().Get("search"),
			Available: available,
			Limit:     limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doctors)
	}
}

// DoctorGet returns a single doctor by id.
func DoctorGet(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doctor, err := svc.GetDoctor(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doctor)
	}
}

// DoctorSpecialties returns the distinct specialties on file.
func DoctorSpecialties(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}

		specialties, err := svc.DoctorSpecialties(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]string{"specialties": specialties})
	}
}

func parseQueryFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a non-negative number")
	}
	return value, nil
}
