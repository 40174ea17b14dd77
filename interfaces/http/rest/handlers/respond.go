package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	pkgerrors "graphnav-backend/pkg/errors"
)

// validate is the shared validator instance; validator caches struct
// metadata, so one instance serves all handlers.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// decodeAndValidate parses the request body into dst and runs validation
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pkgerrors.NewValidation("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			field := invalid[0]
			return pkgerrors.NewValidation("invalid field " + field.Field())
		}
		return pkgerrors.NewValidation("invalid request")
	}
	return nil
}

// idParam extracts a positive int64 URL parameter
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewValidation(name + " must be a positive integer")
	}
	return id, nil
}
