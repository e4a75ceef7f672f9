package dto

import (
	"fmt"
	"strings"
)

const (
	MinAge        = 14
	MaxAge        = 99
	MinExperience = 0
	MaxExperience = 50
)

// FieldError отклонённое поле записи о сотруднике
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
}

// CheckRanges проверяет допустимые диапазоны числовых полей любой записи.
func CheckRanges(p Person) []FieldError {
	var out []FieldError

	if v, ok := p.Age.Get(); ok && (v < MinAge || v > MaxAge) {
		out = append(out, FieldError{Field: "age", Message: fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)})
	}

	if v, ok := p.Experience.Get(); ok && (v < MinExperience || v > MaxExperience) {
		out = append(out, FieldError{Field: "experience", Message: fmt.Sprintf("must be between %d and %d", MinExperience, MaxExperience)})
	}

	return out
}

// ValidatePerson проверяет ручной ввод: помимо CheckRanges обязательны имя и фамилия.
func ValidatePerson(p Person) []FieldError {
	var out []FieldError

	if strings.TrimSpace(p.FirstName) == "" {
		out = append(out, FieldError{Field: "first_name", Message: "required field"})
	}

	if strings.TrimSpace(p.LastName) == "" {
		out = append(out, FieldError{Field: "last_name", Message: "required field"})
	}

	return append(out, CheckRanges(p)...)
}
