package config

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// validatorInstance returns the shared validator, built once. Mirrors the
// pack's sync.Once-guarded singleton pattern (Streamy's config package)
// rather than constructing a validator.Validate per Load call.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
	})
	return validatorInst
}
