package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/senyabanana/tender-portal/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct проверяет структуру запроса по тегам validate и возвращает
// ErrorResponse с перечнем нарушений.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return models.NewErrorResponse(http.StatusBadRequest, "invalid request body").WithDetails(ValidationMessages(err))
}

// ValidationMessages переводит ошибки валидатора в читаемые сообщения.
func ValidationMessages(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, validationMessage(e))
	}
	return messages
}

func validationMessage(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "gte":
		return field + " must be at least " + e.Param()
	case "lte", "max":
		return field + " must be at most " + e.Param()
	default:
		return field + " is invalid"
	}
}
