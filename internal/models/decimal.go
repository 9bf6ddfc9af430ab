package models

import "github.com/shopspring/decimal"

func intDecimal(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}
