package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"crack-go/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the custom rules on gin's binding validator and
// makes validation errors report JSON field names. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("severity", validateSeverity)
	})
}

func validateSeverity(fl validator.FieldLevel) bool {
	return models.Severity(fl.Field().String()).Valid()
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// FormatValidationError turns binding errors into a single readable message.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request body"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		param := e.Param()

		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, param)
		case "severity":
			message = fmt.Sprintf("%s must be one of Low, Medium, High, Critical", field)
		default:
			message = fmt.Sprintf("%s failed validation: %s", field, e.Tag())
		}
		messages = append(messages, message)
	}

	return strings.Join(messages, "; ")
}
