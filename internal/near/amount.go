package near

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// NominationExp is the number of decimals between NEAR and yoctoNEAR.
const NominationExp = 24

var ErrInvalidAmount = errors.New("invalid amount")

// ParseNearAmount converts a human readable NEAR amount ("1.5", "1,000")
// into yoctoNEAR.
func ParseNearAmount(amount string) (*big.Int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}

	yocto := d.Shift(NominationExp)
	if !yocto.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, NominationExp)
	}

	return yocto.BigInt(), nil
}

// FormatNearAmount converts a yoctoNEAR decimal string into NEAR with
// trailing zeros trimmed.
func FormatNearAmount(yocto string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(yocto))
	if err != nil || !d.IsInteger() {
		return "", fmt.Errorf("%w: yocto %q", ErrInvalidAmount, yocto)
	}

	return d.Shift(-NominationExp).String(), nil
}

// FormatYocto formats a yoctoNEAR integer as NEAR.
func FormatYocto(yocto *big.Int) string {
	if yocto == nil {
		return "0"
	}

	return decimal.NewFromBigInt(yocto, -NominationExp).String()
}
