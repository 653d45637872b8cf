package service

import (
	"restaurant-pos/internal/entity"
)

// PaymentPolicy decides whether an amount may be paid against a table.
// It runs before the payment is recorded.
type PaymentPolicy interface {
	Validate(table *entity.ServingTable, amount int64) error
}

// PermissivePolicy accepts any amount, including zero, negative and
// overpayments.
type PermissivePolicy struct{}

func (PermissivePolicy) Validate(*entity.ServingTable, int64) error { return nil }

// StrictPolicy only accepts positive amounts up to the remaining balance.
type StrictPolicy struct{}

func (StrictPolicy) Validate(table *entity.ServingTable, amount int64) error {
	if amount <= 0 {
		return badRequest("Payment amount must be positive.")
	}
	if amount > table.RemainingBalance {
		return badRequest("Payment amount exceeds remaining balance.")
	}
	return nil
}

// PaymentPolicyFor maps a configuration name to a policy. Unknown names get
// the permissive policy.
func PaymentPolicyFor(name string) PaymentPolicy {
	if name == "strict" {
		return StrictPolicy{}
	}
	return PermissivePolicy{}
}
