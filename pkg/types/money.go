package types

import "fmt"

// Money is an exact birr/cents pair. All arithmetic happens in whole
// cents so repeated totals never drift the way float currency does.
type Money struct {
	Birr  int64 `json:"birr"`
	Cents int64 `json:"cents"`
}

// NewMoneyFromCents normalizes a cent amount into a birr/cents pair.
func NewMoneyFromCents(cents int64) Money {
	return Money{Birr: cents / 100, Cents: cents % 100}
}

// TotalCents returns the amount in whole cents.
func (m Money) TotalCents() int64 {
	return m.Birr*100 + m.Cents
}

// Mul returns the price of qty units.
func (m Money) Mul(qty int64) Money {
	return NewMoneyFromCents(m.TotalCents() * qty)
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return NewMoneyFromCents(m.TotalCents() + other.TotalCents())
}

// IsValid reports whether the pair is non-negative with cents in [0,99].
func (m Money) IsValid() bool {
	return m.Birr >= 0 && m.Cents >= 0 && m.Cents <= 99
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.Birr, m.Cents)
}
