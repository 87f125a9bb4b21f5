package dto

import (
	"fmt"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the caisse_* tags used by request bindings.
func RegisterValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"caisse_role": func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).Valid()
		},
		"caisse_currency": func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseCurrency(fl.Field().String())
			return ok
		},
		"caisse_kind": func(fl validator.FieldLevel) bool {
			return domain.OperationKind(fl.Field().String()).Valid()
		},
		"caisse_status": func(fl validator.FieldLevel) bool {
			return domain.OperationStatus(fl.Field().String()).Valid()
		},
		"caisse_decision": func(fl validator.FieldLevel) bool {
			return domain.OperationStatus(fl.Field().String()).IsDecision()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q: %w", tag, err)
		}
	}
	return nil
}
