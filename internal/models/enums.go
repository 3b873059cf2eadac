// Package models defines the persistent domain entities of the commission service.
package models

import "fmt"

// Currency is one of the zero-decimal currencies the service prices in.
type Currency string

const (
	CurrencyXOF Currency = "XOF"
	CurrencyXAF Currency = "XAF"
	CurrencyGNF Currency = "GNF"
)

// ParseCurrency validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyXOF, CurrencyXAF, CurrencyGNF:
		return Currency(s), nil
	}
	return "", fmt.Errorf("unsupported currency: %q", s)
}

// TransferType classifies the transfer being priced.
type TransferType string

const (
	TransferSameWallet    TransferType = "SAME_WALLET"    // same provider (Orange -> Orange)
	TransferCrossWallet   TransferType = "CROSS_WALLET"   // different providers (Orange -> Wave)
	TransferInternational TransferType = "INTERNATIONAL"  // cross-country transfer
)

// ParseTransferType validates a transfer type.
func ParseTransferType(s string) (TransferType, error) {
	switch TransferType(s) {
	case TransferSameWallet, TransferCrossWallet, TransferInternational:
		return TransferType(s), nil
	}
	return "", fmt.Errorf("unsupported transfer type: %q", s)
}

// KYCLevel is the verification tier of the transacting user. KYCAny on a rule
// means the rule applies regardless of the user's tier.
type KYCLevel string

const (
	KYCAny    KYCLevel = "ANY"
	KYCLevel1 KYCLevel = "LEVEL_1"
	KYCLevel2 KYCLevel = "LEVEL_2"
	KYCLevel3 KYCLevel = "LEVEL_3"
)

// ParseKYCLevel validates a KYC level.
func ParseKYCLevel(s string) (KYCLevel, error) {
	switch KYCLevel(s) {
	case KYCAny, KYCLevel1, KYCLevel2, KYCLevel3:
		return KYCLevel(s), nil
	}
	return "", fmt.Errorf("unsupported KYC level: %q", s)
}

// CommissionStatus is the lifecycle state of a recorded commission.
//
// Fee capture is synchronous, so COMPLETED is the usual state immediately
// after recording. REFUNDED is terminal.
type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "PENDING"
	CommissionCompleted CommissionStatus = "COMPLETED"
	CommissionRefunded  CommissionStatus = "REFUNDED"
)
