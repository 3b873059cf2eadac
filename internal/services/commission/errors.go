package commission

import (
	"errors"
	"fmt"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// Service errors
var (
	ErrRuleNotFound        = errors.New("commission rule not found")
	ErrRuleNotActive       = errors.New("commission rule is not active")
	ErrRuleNotEffective    = errors.New("commission rule is not effective at this time")
	ErrCommissionNotFound  = errors.New("commission not found")
	ErrDuplicateCommission = errors.New("commission already recorded for this transaction")
)

// AmountBoundError reports that a transaction amount violates an explicit
// rule's eligibility bounds. It carries the violated bound so the caller can
// explain why pricing failed.
type AmountBoundError struct {
	Bound    string // "minimum" or "maximum"
	Limit    int64
	Currency models.Currency
}

func (e *AmountBoundError) Error() string {
	return fmt.Sprintf("transaction amount violates rule %s of %d %s", e.Bound, e.Limit, e.Currency)
}
