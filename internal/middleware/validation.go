package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "twxcli/internal/errors"
	"twxcli/pkg/contracts/domain"
)

// RequestValidator validates bound request parameters using struct tags.
// Field names in errors follow the json tags.
type RequestValidator struct {
	validator *validator.Validate
}

// NewRequestValidator registers the API's custom tags: date (YYYY-MM-DD),
// report_kind and market.
func NewRequestValidator() *RequestValidator {
	v := validator.New()

	v.RegisterValidation("date", isDate)
	v.RegisterValidation("report_kind", isReportKind)
	v.RegisterValidation("market", isMarket)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validator: v}
}

// ValidateStruct returns an *errors.APIError listing every rejected field.
func (m *RequestValidator) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidRequest, err.Error())
	}

	fields := make([]apperrors.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(fields)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "date":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", field)
	case "report_kind":
		return fmt.Sprintf("%s must be a supported report kind", field)
	case "market":
		return fmt.Sprintf("%s must be %s or %s", field, domain.MarketTSE, domain.MarketOTC)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateLayout, fl.Field().String())
	return err == nil
}

func isReportKind(fl validator.FieldLevel) bool {
	_, ok := domain.ParseReportKind(fl.Field().String())
	return ok
}

func isMarket(fl validator.FieldLevel) bool {
	switch strings.ToUpper(fl.Field().String()) {
	case domain.MarketTSE, domain.MarketOTC:
		return true
	}
	return false
}
