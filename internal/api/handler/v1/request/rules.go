package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	// A positive NEAR amount with at most 24 decimals.
	priceRegexPattern = `^(?=.*[1-9])\d{1,12}(\.\d{1,24})?$`
	// NEAR account ids: 2 to 64 lowercase chars, parts separated by dots,
	// no leading, trailing or doubled separators.
	accountIDRegexPattern = `^(?=.{2,64}$)(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`
	tokenIDRegexPattern   = `^(?![-_.])[A-Za-z\d_.-]{1,128}$`
	// base58 of a 32 byte sha256 digest.
	txHashRegexPattern = `^[1-9A-HJ-NP-Za-km-z]{32,44}$`
)

var (
	priceExp     = regexp2.MustCompile(priceRegexPattern, regexp2.None)
	accountIDExp = regexp2.MustCompile(accountIDRegexPattern, regexp2.None)
	tokenIDExp   = regexp2.MustCompile(tokenIDRegexPattern, regexp2.None)
	txHashExp    = regexp2.MustCompile(txHashRegexPattern, regexp2.None)

	errInvalidPrice     = errors.New("must be a positive NEAR amount with at most 24 decimals")
	errInvalidAccountID = errors.New("must be a valid NEAR account id")
	errInvalidTokenID   = errors.New("may only contain letters, digits, '-', '_' and '.'")
	errInvalidTxHash    = errors.New("must be comma separated base58 transaction hashes")
)

// matchRule adapts a regexp2 pattern to ozzo-validation. Empty values pass
// so it composes with validation.Required.
func matchRule(exp *regexp2.Regexp, ruleErr error) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}

		ok, err := exp.MatchString(s)
		if err != nil || !ok {
			return ruleErr
		}

		return nil
	})
}

var (
	isPrice     = matchRule(priceExp, errInvalidPrice)
	isAccountID = matchRule(accountIDExp, errInvalidAccountID)
	isTokenID   = matchRule(tokenIDExp, errInvalidTokenID)
	isTxHash    = matchRule(txHashExp, errInvalidTxHash)
)
