package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/brewvote/server/internal/api/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator reports fields by their form names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("form")
	})
	return v
}

// Empty ids pass form validation so the gateway can report the specific
// "required" error.
type beerForm struct {
	BeerID string `form:"beerId" validate:"omitempty,uuid"`
}

type adminForm struct {
	AdminID string `form:"adminId" validate:"omitempty,uuid"`
}

type visibilityForm struct {
	ResultsVisible string `form:"results_visible" validate:"omitempty,oneof=true false on off 1 0"`
}

type voterCodesForm struct {
	Count int `form:"count" validate:"min=1,max=500"`
}

type formError struct {
	fields map[string]string
}

func (e *formError) Error() string {
	return "invalid form"
}

// parseForm reads the body and rejects oversized or malformed requests.
func parseForm(w http.ResponseWriter, r *http.Request, env string) bool {
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			problem.Write(w, r, http.StatusRequestEntityTooLarge, "request_too_large", "Request body too large", err, env)
			return false
		}
		problem.Write(w, r, http.StatusBadRequest, "invalid_form", "Invalid form data", err, env)
		return false
	}
	return true
}

// check validates form and writes a problem listing the offending fields.
func check(w http.ResponseWriter, r *http.Request, form any, env string) bool {
	err := validate.Struct(form)
	if err == nil {
		return true
	}

	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	problem.Write(w, r, http.StatusBadRequest, "invalid_form", "Invalid form data", &formError{fields: fields}, env, problem.WithErrors(fields))
	return false
}

// optionalUUID returns uuid.Nil for an empty value. Callers validate the
// format first.
func optionalUUID(value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func parseVisible(value string) bool {
	switch value {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}

func parseCount(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// splitCodes parses the comma separated print list, dropping blanks.
func splitCodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
