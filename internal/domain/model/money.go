package model

import "github.com/shopspring/decimal"

// 金額は小数第2位まで
const MoneyScale = 2

// 列の桁の上限。単価はnumeric(10,2)、注文合計はnumeric(12,2)
var (
	MaxPrice       = decimal.RequireFromString("99999999.99")
	MaxOrderAmount = decimal.RequireFromString("9999999999.99")
)

func init() {
	// JSONでは金額を数値で返す
	decimal.MarshalJSONWithoutQuotes = true
}

// 単価 × 数量
func Subtotal(price decimal.Decimal, qty int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(qty))
}

// 小数第2位に丸める
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// 小数第2位までで表せるか
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}
