package config

import (
	"log"

	"github.com/shopspring/decimal"
)

// Tariff holds the jurisdiction default fee parameters applied when no
// commission rule matches a transaction. The defaults implement the BCEAO
// tariff for the XOF zone: transfers at or below the free threshold cost
// nothing, everything above pays a fixed fee plus a percentage, capped.
type Tariff struct {
	FreeThreshold int64           // minor units, inclusive
	FixedFee      int64           // minor units
	Percentage    decimal.Decimal // e.g. 0.005 for 0.5%
	MaxFee        int64           // minor units
}

// LoadTariff reads the default tariff from the environment.
func LoadTariff() Tariff {
	pctStr := GetEnv("TARIFF_PERCENTAGE", "0.005")
	pct, err := decimal.NewFromString(pctStr)
	if err != nil {
		log.Printf("invalid TARIFF_PERCENTAGE %q, using 0.005: %v", pctStr, err)
		pct = decimal.NewFromFloat(0.005)
	}

	return Tariff{
		FreeThreshold: GetInt64Env("TARIFF_FREE_THRESHOLD", 5000),
		FixedFee:      GetInt64Env("TARIFF_FIXED_FEE", 100),
		Percentage:    pct,
		MaxFee:        GetInt64Env("TARIFF_MAX_FEE", 1000),
	}
}
