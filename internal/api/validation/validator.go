package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

// New returns a validator that also understands the fuzzydate tag
func New() *validator.Validate {
	v := validator.New()
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("fuzzydate", validFuzzyDate)
	return v
}

func validFuzzyDate(fl validator.FieldLevel) bool {
	d, err := fuzzydate.ParseValid(fl.Field().String())
	return err == nil && !d.IsZero()
}
