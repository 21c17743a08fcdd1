package services

import (
	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LinePrice is quantity times unit price, rounded to the cent.
func LinePrice(unitPrice float64, quantity int) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// Total sums the line prices of items.
func Total(items []models.LineItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price))
	}
	return sum.Round(2).InexactFloat64()
}

// ToMinorUnits converts an amount to the smallest currency unit (paise, cents).
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(amount int64) float64 {
	return decimal.NewFromInt(amount).Div(hundred).InexactFloat64()
}
