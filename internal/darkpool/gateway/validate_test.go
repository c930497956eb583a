package gateway

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type decimalFixture struct {
	Amount string `validate:"decimal"`
}

type positiveDecimalFixture struct {
	Amount string `validate:"positivedecimal"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := v.RegisterValidation("decimal", validateDecimal); err != nil {
		t.Fatalf("registering decimal validator: %v", err)
	}
	if err := v.RegisterValidation("positivedecimal", validatePositiveDecimal); err != nil {
		t.Fatalf("registering positivedecimal validator: %v", err)
	}
	return v
}

func TestValidateDecimalAcceptsWellFormedStrings(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Struct(decimalFixture{Amount: "-12.5"}); err != nil {
		t.Fatalf("expected -12.5 to be a valid decimal, got %v", err)
	}
}

func TestValidateDecimalRejectsGarbage(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Struct(decimalFixture{Amount: "not-a-number"}); err == nil {
		t.Fatalf("expected garbage input to fail decimal validation")
	}
}

func TestValidatePositiveDecimalRejectsZeroAndNegative(t *testing.T) {
	v := newTestValidator(t)
	for _, amount := range []string{"0", "-1"} {
		if err := v.Struct(positiveDecimalFixture{Amount: amount}); err == nil {
			t.Fatalf("expected %q to fail positivedecimal validation", amount)
		}
	}
}

func TestValidatePositiveDecimalAcceptsPositive(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Struct(positiveDecimalFixture{Amount: "0.0001"}); err != nil {
		t.Fatalf("expected positive decimal to pass, got %v", err)
	}
}
