package domain

import (
	"unicode/utf8"

	"token-minter/internal/apperr"
)

// Field length bounds.
const (
	MaxNameLen   = 30
	MaxSymbolLen = 8
)

// ValidateForm checks a token request in a fixed order and returns the first
// violation as a validation error naming the field.
func ValidateForm(payer string, form *TokenForm) error {
	if payer == "" || form == nil {
		return apperr.Validation("publicKey", "Missing `publicKey` or `tokenForm`.")
	}
	if _, err := DecodeAddress(payer); err != nil {
		return apperr.Validation("publicKey", "Invalid `publicKey`.")
	}

	if form.Name == "" {
		return apperr.Validation("name", "Missing token name.")
	}
	if utf8.RuneCountInString(form.Name) > MaxNameLen {
		return apperr.Validation("name", "Token name must contain 1 to 30 characters.")
	}

	if form.Symbol == "" {
		return apperr.Validation("symbol", "Missing token symbol.")
	}
	if utf8.RuneCountInString(form.Symbol) > MaxSymbolLen {
		return apperr.Validation("symbol", "Token symbol must contain 1 to 8 characters.")
	}

	if form.Supply < 1 {
		return apperr.Validation("supply", "Supply needs to be a number 1 or greater")
	}

	if form.Decimals < 0 || form.Decimals > MaxDecimals {
		return apperr.Validation("decimals", "Decimals need to be a number between 0 & 18.")
	}

	if form.Description == "" {
		return apperr.Validation("description", "Missing token description.")
	}

	if _, err := ScaleSupply(uint64(form.Supply), uint8(form.Decimals)); err != nil {
		return apperr.Validation("supply", "Supply is too large for the chosen decimals.")
	}

	return nil
}
