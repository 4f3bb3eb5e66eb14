package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoneyMul(t *testing.T) {
	tests := []struct {
		name string
		unit Money
		qty  int64
		want Money
	}{
		{"whole birr", Money{Birr: 10, Cents: 0}, 3, Money{Birr: 30, Cents: 0}},
		{"cents carry over", Money{Birr: 10, Cents: 50}, 3, Money{Birr: 31, Cents: 50}},
		{"only cents", Money{Birr: 0, Cents: 99}, 100, Money{Birr: 99, Cents: 0}},
		{"single unit", Money{Birr: 1250, Cents: 75}, 1, Money{Birr: 1250, Cents: 75}},
		{"zero quantity", Money{Birr: 10, Cents: 50}, 0, Money{Birr: 0, Cents: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.unit.Mul(tt.qty))
		})
	}
}

func TestMoneyMulNoDrift(t *testing.T) {
	// 0.10 * 3 must be exactly 0.30. The float version of this
	// computation yields 0.30000000000000004.
	got := Money{Birr: 0, Cents: 10}.Mul(3)
	assert.Equal(t, Money{Birr: 0, Cents: 30}, got)
}

func TestMoneyAdd(t *testing.T) {
	got := Money{Birr: 1, Cents: 60}.Add(Money{Birr: 2, Cents: 55})
	assert.Equal(t, Money{Birr: 4, Cents: 15}, got)
}

func TestMoneyIsValid(t *testing.T) {
	assert.True(t, Money{Birr: 0, Cents: 0}.IsValid())
	assert.True(t, Money{Birr: 10, Cents: 99}.IsValid())
	assert.False(t, Money{Birr: 10, Cents: 100}.IsValid())
	assert.False(t, Money{Birr: -1, Cents: 0}.IsValid())
	assert.False(t, Money{Birr: 0, Cents: -5}.IsValid())
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "31.50", Money{Birr: 31, Cents: 50}.String())
	assert.Equal(t, "7.05", Money{Birr: 7, Cents: 5}.String())
}
