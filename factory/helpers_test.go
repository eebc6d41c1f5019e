package factory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decimalJSON(t *testing.T, raw string) decimal.NullDecimal {
	t.Helper()
	var n decimal.NullDecimal
	require.NoError(t, n.UnmarshalJSON([]byte(raw)))
	return n
}
