package utils

import "github.com/go-playground/validator/v10"

// RequestValidator adapts go-playground/validator to echo.Validator so
// handlers can call c.Validate on bound request structs.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}
