package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommaDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "plain", input: "1234,56", want: 1234.56},
		{name: "thousands dots", input: "1.234.567,89", want: 1234567.89},
		{name: "integer", input: "150", want: 150},
		{name: "zero", input: "0,00", want: 0},
		{name: "negative", input: "-10,50", want: -10.50},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCommaDecimal(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestParseMoneyAuto(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "brazilian convention", input: "1.234,56", want: 1234.56},
		{name: "english convention", input: "1,234.56", want: 1234.56},
		{name: "comma decimal only", input: "987,10", want: 987.10},
		{name: "dot decimal only", input: "987.10", want: 987.10},
		{name: "currency prefix", input: "R$ 2.500,00", want: 2500},
		{name: "plain integer", input: "42", want: 42},
		{name: "empty", input: "", wantErr: true},
		{name: "only prefix", input: "R$", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMoneyAuto(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestParsePercent(t *testing.T) {
	got, err := ParsePercent("6,54%")
	require.NoError(t, err)
	assert.InDelta(t, 0.0654, got, 1e-9)

	got, err = ParsePercent("12.5")
	require.NoError(t, err)
	assert.InDelta(t, 0.125, got, 1e-9)

	_, err = ParsePercent("%")
	require.Error(t, err)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.57, Round2(10.566))
	assert.Equal(t, 10.56, Round2(10.564))
	assert.Equal(t, 0.0, Round2(0))

	// rounding an already-rounded value is stable
	assert.Equal(t, Round2(1234.56), Round2(Round2(1234.56)))
}

func TestClampNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, ClampNonNegative(-15.3))
	assert.Equal(t, 15.3, ClampNonNegative(15.3))
}
