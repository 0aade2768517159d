package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/guttosm/freightrates/internal/apperrors"
	"github.com/guttosm/freightrates/internal/service"
)

var (
	currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)
	registerOnce      sync.Once
)

// RegisterValidators installs the custom binding tags used by request DTOs
// and makes validation errors report JSON field names. Safe to call twice.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
			_ = v.RegisterValidation("isodate", validateISODate)
			_ = v.RegisterValidation("currency_code", validateCurrencyCode)
		}
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(service.DayLayout, fl.Field().String())
	return err == nil
}

// validateCurrencyCode only checks the shape; whether the rate table knows
// the code is decided at conversion time.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodeRegex.MatchString(fl.Field().String())
}

// bindingError maps a ShouldBindJSON failure to the client error envelope:
// absent keys are 2001, everything else 2000.
func bindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return apperrors.WithMessage(apperrors.ErrMissingKey, fmt.Sprintf("%s is required", fe.Field()))
			}
		}
		return apperrors.Validation(describeField(verrs[0]))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.Validation(fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type))
	}
	if errors.Is(err, io.EOF) {
		return apperrors.WithMessage(apperrors.ErrMissingKey, "request body is required")
	}
	return apperrors.Validation("request body is not valid JSON")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "currency_code":
		return fmt.Sprintf("%s must be a 3-letter currency code", fe.Field())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be a non-negative integer", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
