package validator

import (
	"strings"

	"app/internal/usecase"
)

type checkoutValidator struct{}

// Usecaseは interface を依存注入
func NewCheckoutValidator() usecase.CheckoutValidator {
	return &checkoutValidator{}
}

// Validateはcheckoutフォームを検証し、違反を全件返す。
// 最初の違反で打ち切らない。
func (v *checkoutValidator) Validate(form usecase.CheckoutForm) []string {
	var violations []string

	if strings.TrimSpace(form.Name) == "" {
		violations = append(violations, "full name is required")
	}

	phone := strings.TrimSpace(form.Phone)
	if len(phone) != 11 || !strings.HasPrefix(phone, "09") || !allDigits(phone) {
		violations = append(violations, "phone must be 11 digits starting with 09")
	}

	email := strings.TrimSpace(form.Email)
	if email == "" || !strings.Contains(email, "@") {
		violations = append(violations, "email is invalid")
	}

	if strings.TrimSpace(form.PostalCode) == "" {
		violations = append(violations, "postal code is required")
	}

	if strings.TrimSpace(form.Address) == "" {
		violations = append(violations, "address is required")
	}

	return violations
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
