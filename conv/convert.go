package conv

import (
	"fmt"
	"strings"

	"github.com/ericlagergren/decimal"
	"github.com/ericlagergren/decimal/sql/postgres"
)

// NewDecimalWithPrecision create a decimal with the precision used for money amounts
func NewDecimalWithPrecision() *decimal.Big {
	dec := &decimal.Big{}
	dec.Context = decimal.Context128
	dec.Context.RoundingMode = decimal.ToZero
	return dec
}

// CloneToPrecision copy the given amount into a fresh decimal with the default context
func CloneToPrecision(amount *decimal.Big) *decimal.Big {
	dec := NewDecimalWithPrecision()
	dec.Copy(amount)
	dec.Quantize(8)
	return dec
}

// FmtDecimal format a nullable database decimal as a plain number string
func FmtDecimal(dec *postgres.Decimal) string {
	if dec == nil || dec.V == nil {
		return "0"
	}
	str := dec.V.String()
	if strings.ContainsAny(str, "eE") {
		// the %f verb renders the plain form without an exponent
		return fmt.Sprintf("%f", dec.V)
	}
	return str
}

// ToFloat64 lossy conversion used for rates and trend math, not for money
func ToFloat64(dec *decimal.Big) float64 {
	if dec == nil {
		return 0
	}
	f, _ := dec.Float64()
	return f
}
