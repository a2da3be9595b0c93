package services

import (
	"github.com/go-playground/validator/v10"
)

// validate checks the `validate` tags of catalog rows and the emails of
// accounts created outside request binding.
var validate = validator.New(validator.WithRequiredStructEnabled())

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
