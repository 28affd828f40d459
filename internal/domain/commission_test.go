package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageStructure_Calculate(t *testing.T) {
	s := PercentageStructure{Rate: 25}

	got, err := s.Calculate(2000)
	require.NoError(t, err)
	assert.InDelta(t, 500, got, 0.001)

	got, err = s.Calculate(0)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = s.Calculate(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = PercentageStructure{Rate: 120}.Calculate(100)
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestFixedStructure_Calculate(t *testing.T) {
	s := FixedStructure{Amount: 300}

	// Фиксированная комиссия не зависит от суммы услуги
	for _, amount := range []float64{0, 500, 10000} {
		got, err := s.Calculate(amount)
		require.NoError(t, err)
		assert.InDelta(t, 300, got, 0.001)
	}
}

func TestTieredStructure_Calculate(t *testing.T) {
	s, err := NewTieredStructure([]CommissionTier{
		{Min: 0, Max: 1000, Rate: 10},
		{Min: 1000, Max: math.MaxFloat64, Rate: 15},
	})
	require.NoError(t, err)

	// 1000*0.10 + 500*0.15 = 175
	got, err := s.Calculate(1500)
	require.NoError(t, err)
	assert.InDelta(t, 175, got, 0.001)

	// Сумма целиком в первом уровне
	got, err = s.Calculate(800)
	require.NoError(t, err)
	assert.InDelta(t, 80, got, 0.001)

	// Ровно на границе уровней
	got, err = s.Calculate(1000)
	require.NoError(t, err)
	assert.InDelta(t, 100, got, 0.001)

	got, err = s.Calculate(0)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestNewTieredStructure_Validation(t *testing.T) {
	tests := []struct {
		name  string
		tiers []CommissionTier
	}{
		{name: "empty", tiers: nil},
		{name: "negative min", tiers: []CommissionTier{{Min: -1, Max: 100, Rate: 10}}},
		{name: "max not above min", tiers: []CommissionTier{{Min: 100, Max: 100, Rate: 10}}},
		{name: "rate out of range", tiers: []CommissionTier{{Min: 0, Max: 100, Rate: 150}}},
		{name: "overlapping tiers", tiers: []CommissionTier{
			{Min: 0, Max: 1000, Rate: 10},
			{Min: 500, Max: 2000, Rate: 15},
		}},
		{name: "unsorted tiers", tiers: []CommissionTier{
			{Min: 1000, Max: 2000, Rate: 15},
			{Min: 0, Max: 1000, Rate: 10},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTieredStructure(tt.tiers)
			assert.ErrorIs(t, err, ErrInvalidStructure)
		})
	}
}

func TestHybridStructure_Calculate(t *testing.T) {
	s := HybridStructure{FixedAmount: 100, Rate: 10}

	got, err := s.Calculate(2000)
	require.NoError(t, err)
	assert.InDelta(t, 300, got, 0.001)
}

func TestQualityMultiplier(t *testing.T) {
	tests := []struct {
		rating float64
		want   float64
	}{
		{4.9, 1.15},
		{4.8, 1.15},
		{4.7, 1.10},
		{4.5, 1.10},
		{4.2, 1.05},
		{4.0, 1.05},
		{3.5, 1.00},
		{3.0, 1.00},
		{2.9, 0.90},
		{0, 0.90},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, QualityMultiplier(tt.rating), 0.0001, "rating %.1f", tt.rating)
	}
}

func TestCalculateCommission_WithMultiplier(t *testing.T) {
	// База 200 при рейтинге 4.9 дает итог 230
	base, multiplier, total, err := CalculateCommission(PercentageStructure{Rate: 20}, 1000, 4.9)
	require.NoError(t, err)
	assert.InDelta(t, 200, base, 0.001)
	assert.InDelta(t, 1.15, multiplier, 0.001)
	assert.InDelta(t, 230, total, 0.001)
}

func TestStaffCommission_Guards(t *testing.T) {
	c := &StaffCommission{ApprovalStatus: ApprovalPending, PayoutStatus: PayoutPending}
	assert.True(t, c.CanApprove())
	assert.False(t, c.CanMarkPaid(), "unapproved commission cannot be paid")

	c.ApprovalStatus = ApprovalApproved
	assert.False(t, c.CanApprove())
	assert.True(t, c.CanMarkPaid())

	c.PayoutStatus = PayoutPaid
	assert.False(t, c.CanMarkPaid(), "no double payment")

	c = &StaffCommission{ApprovalStatus: ApprovalRejected, PayoutStatus: PayoutPending}
	assert.False(t, c.CanMarkPaid(), "rejected commission cannot be paid")
}

func TestStaffCommission_NetEarning(t *testing.T) {
	c := &StaffCommission{
		TotalEarning:  230,
		TipAmount:     50,
		BonusAmount:   20,
		PenaltyAmount: 10,
	}
	assert.InDelta(t, 290, c.NetEarning(), 0.001)
}

func TestDefaultCommissionStructure(t *testing.T) {
	s := DefaultCommissionStructure()
	assert.Equal(t, CommissionPercentage, s.Type())

	got, err := s.Calculate(1000)
	require.NoError(t, err)
	assert.InDelta(t, 250, got, 0.001)
}
