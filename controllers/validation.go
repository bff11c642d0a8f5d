package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/otica-api/services"
)

// DateLayout is the accepted format for birth dates
const DateLayout = "2006-01-02"

var (
	cepPattern   = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	phonePattern = regexp.MustCompile(`^(\+55\s?)?(\(?\d{2}\)?\s?)?(\d{4,5}-?\d{4})$`)

	registerOnce sync.Once
)

// RegisterValidators installs the custom binding rules and makes validation
// messages use JSON field names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
			return cepPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
}

// bindJSON decodes the body into dst. Every rule violation is reported at once as a
// 400 VALIDATION_ERROR; false means a response was already written.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(c, services.NewValidationError("Invalid request data", validationMessages(verrs)...))
		return false
	}
	respondError(c, services.NewValidationError("Invalid request body", err.Error()))
	return false
}

func validationMessages(verrs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return messages
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	// drop the request struct name
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, lowerFirst(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "cep":
		return field + " must be a valid CEP (00000-000)"
	case "phone":
		return field + " must be a valid phone number"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// parseDate parses an optional YYYY-MM-DD value already checked by binding
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, services.NewValidationError("Invalid request data", "birthDate must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}
