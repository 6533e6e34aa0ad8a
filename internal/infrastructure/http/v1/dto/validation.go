package dto

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/money"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the "hsn" and "money" tags to gin's validator.
// Later calls return the first result.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = registerValidators()
	})
	return registerErr
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	if err := v.RegisterValidation("hsn", validateHSN); err != nil {
		return err
	}
	return v.RegisterValidation("money", validateMoney)
}

func validateHSN(fl validator.FieldLevel) bool {
	return material.ValidHSN(fl.Field().String())
}

// validateMoney accepts a non-negative decimal string with at most two places.
func validateMoney(fl validator.FieldLevel) bool {
	m, err := money.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return !m.IsNegative() && m.Exponent() >= -2
}

// BindError converts a binding failure into an InvalidArgument error listing
// the failing field and rule.
func BindError(message string, err error) *apperror.AppError {
	appErr := apperror.NewInvalidArgument(message)

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return appErr.WithDetail("fields", fields)
	}
	return appErr.WithDetail("error", err.Error())
}

// ParseMoney parses a value that passed the money validator.
func ParseMoney(s string) money.Money {
	m, err := money.Parse(s)
	if err != nil {
		return money.Zero()
	}
	return m
}
