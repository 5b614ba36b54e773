package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// ValidationFailed is the error code of requests rejected before reaching a service.
	ValidationFailed = "VALIDATION_FAILED"

	maxBodyBytes = 1 << 20
)

var errMalformedBody = errors.New("request body must be a valid JSON object")

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	decoder := json.NewDecoder(body)

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errMalformedBody
	}

	return nil
}

// fieldErrors flattens validator output into field -> message.
// Errors that are not validation errors are reported under "request".
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors

	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}

	out := make(map[string]string, len(verrs))

	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}

	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with", "required_without", "required_without_all":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", fe.Field())
	case "number":
		return fmt.Sprintf("The %s field must be a whole number.", fe.Field())
	case "max":
		if fe.Kind() != reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s.", fe.Field(), fe.Param())
		}

		return fmt.Sprintf("The %s field must not be greater than %s characters.", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() != reflect.String {
			return fmt.Sprintf("The %s field must be at least %s.", fe.Field(), fe.Param())
		}

		return fmt.Sprintf("The %s field must be at least %s characters.", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

// respondWithValidationError sends 422 with per-field messages.
func (rs responder) respondWithValidationError(w http.ResponseWriter, err error) {
	errs := fieldErrors(err)

	message := "The given data was invalid."

	if len(errs) == 1 {
		for _, m := range errs {
			message = m
		}
	}

	rs.respondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   ValidationFailed,
		Message: message,
		Errors:  errs,
	})
}
