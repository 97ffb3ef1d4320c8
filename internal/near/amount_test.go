package near

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNearAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "whole", input: "1", want: "1000000000000000000000000"},
		{name: "fraction", input: "1.5", want: "1500000000000000000000000"},
		{name: "mint deposit", input: "0.1", want: "100000000000000000000000"},
		{name: "commas", input: "1,000", want: "1000000000000000000000000000"},
		{name: "one yocto", input: "0.000000000000000000000001", want: "1"},
		{name: "zero", input: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNearAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseNearAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "  ", "abc", "-1", "0.0000000000000000000000001"} {
		_, err := ParseNearAmount(input)
		assert.ErrorIs(t, err, ErrInvalidAmount, input)
	}
}

func TestFormatNearAmount(t *testing.T) {
	got, err := FormatNearAmount("1500000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1.5", got)

	got, err = FormatNearAmount("0")
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	got, err = FormatNearAmount("1")
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000000000001", got)

	_, err = FormatNearAmount("1.5")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmountRoundTrip(t *testing.T) {
	for _, s := range []string{"3", "2.5", "0.1", "123.456789"} {
		yocto, err := ParseNearAmount(s)
		require.NoError(t, err)

		back, err := FormatNearAmount(yocto.String())
		require.NoError(t, err)
		assert.Equal(t, s, back)
		assert.Equal(t, s, FormatYocto(yocto))
	}

	assert.Equal(t, "0", FormatYocto(nil))
	assert.Equal(t, "0", FormatYocto(new(big.Int)))
}
