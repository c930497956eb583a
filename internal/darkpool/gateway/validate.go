package gateway

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// registerValidators installs custom struct-tag validators into gin's
// default validator engine, following the teacher's
// internal/validation.NewValidator's RegisterValidation convention
// (amount/price tags), adapted to this domain's decimal-string fields.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("decimal", validateDecimal)
	v.RegisterValidation("positivedecimal", validatePositiveDecimal)
}

func validateDecimal(fl validator.FieldLevel) bool {
	_, err := decimal.NewFromString(fl.Field().String())
	return err == nil
}

func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}
