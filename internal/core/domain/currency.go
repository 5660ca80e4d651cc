package domain

// Currency is an ISO 4217 code from the closed set the platform settles.
// Anything outside the set is rejected at the boundary before it can
// reach a wallet or the ledger.
type Currency string

const (
	CurrencyAOA Currency = "AOA"
	CurrencyBRL Currency = "BRL"
)

// IsSupported reports whether the currency belongs to the settled set.
// Codes are case-sensitive; "aoa" is not a currency.
func (c Currency) IsSupported() bool {
	switch c {
	case CurrencyAOA, CurrencyBRL:
		return true
	}
	return false
}
