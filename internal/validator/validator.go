// Package validator оборачивает go-playground/validator и регистрирует
// правила для идентификаторов сделок и ключей акторов.
package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	dealIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	actorKeyPattern = regexp.MustCompile(`^(user:[A-Za-z0-9_-]{1,64}|guest:[0-9a-f-]{36})$`)
)

// Validator оборачивает validator.Validate
type Validator struct {
	validate *validator.Validate
}

// New создаёт Validator с правилами dealid и actorkey
func New() *Validator {
	v := validator.New()
	// Ошибка возможна только при пустом теге
	_ = v.RegisterValidation("dealid", func(fl validator.FieldLevel) bool {
		return dealIDPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("actorkey", func(fl validator.FieldLevel) bool {
		return actorKeyPattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// ValidateStruct проверяет структуру по тегам validate
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateVar проверяет одно значение по тегу
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
