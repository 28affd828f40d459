package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// CommissionType represents the kind of commission structure
type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
	CommissionTiered     CommissionType = "tiered"
	CommissionHybrid     CommissionType = "hybrid"
)

// ApprovalStatus represents the approval state of a commission record
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// PayoutStatus represents whether a commission has been paid out
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)

var (
	// ErrInvalidStructure возвращается при некорректной структуре комиссии
	ErrInvalidStructure = errors.New("domain: invalid commission structure")

	// ErrNegativeAmount возвращается при отрицательной сумме услуги
	ErrNegativeAmount = errors.New("domain: service amount must not be negative")
)

// CommissionStructure is a resolved commission rule. Exactly one variant is
// passed into the calculation - there is no runtime probing of optional fields
type CommissionStructure interface {
	Type() CommissionType
	// Calculate returns the base commission for a service amount,
	// before the quality multiplier is applied
	Calculate(serviceAmount float64) (float64, error)
}

// PercentageStructure commission as a percentage of the service amount
type PercentageStructure struct {
	Rate float64 // 0-100
}

func (s PercentageStructure) Type() CommissionType { return CommissionPercentage }

func (s PercentageStructure) Calculate(serviceAmount float64) (float64, error) {
	if serviceAmount < 0 {
		return 0, ErrNegativeAmount
	}
	if s.Rate < 0 || s.Rate > 100 {
		return 0, fmt.Errorf("%w: percentage rate %.2f out of range", ErrInvalidStructure, s.Rate)
	}
	return serviceAmount * s.Rate / 100, nil
}

// FixedStructure flat commission independent of the service amount
type FixedStructure struct {
	Amount float64
}

func (s FixedStructure) Type() CommissionType { return CommissionFixed }

func (s FixedStructure) Calculate(serviceAmount float64) (float64, error) {
	if serviceAmount < 0 {
		return 0, ErrNegativeAmount
	}
	if s.Amount < 0 {
		return 0, fmt.Errorf("%w: fixed amount must not be negative", ErrInvalidStructure)
	}
	return s.Amount, nil
}

// CommissionTier one band of a tiered structure, applied to the portion of the
// service amount falling within [Min, Max)
type CommissionTier struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"` // math.MaxFloat64 = открытый верхний уровень
	Rate float64 `json:"rate"`
}

// TieredStructure commission accumulated band by band.
// Tiers must be ascending and non-overlapping - use NewTieredStructure
type TieredStructure struct {
	Tiers []CommissionTier
}

// NewTieredStructure validates tier ordering at construction time:
// tiers must be sorted ascending, non-overlapping, with valid rates.
// Malformed tiers are a configuration error, not something to silently reorder
func NewTieredStructure(tiers []CommissionTier) (TieredStructure, error) {
	if len(tiers) == 0 {
		return TieredStructure{}, fmt.Errorf("%w: tiered structure requires at least one tier", ErrInvalidStructure)
	}
	for i, tier := range tiers {
		if tier.Min < 0 {
			return TieredStructure{}, fmt.Errorf("%w: tier %d has negative min", ErrInvalidStructure, i)
		}
		if tier.Max <= tier.Min {
			return TieredStructure{}, fmt.Errorf("%w: tier %d max must exceed min", ErrInvalidStructure, i)
		}
		if tier.Rate < 0 || tier.Rate > 100 {
			return TieredStructure{}, fmt.Errorf("%w: tier %d rate %.2f out of range", ErrInvalidStructure, i, tier.Rate)
		}
		if i > 0 && tier.Min < tiers[i-1].Max {
			return TieredStructure{}, fmt.Errorf("%w: tier %d overlaps previous tier", ErrInvalidStructure, i)
		}
	}
	return TieredStructure{Tiers: tiers}, nil
}

func (s TieredStructure) Type() CommissionType { return CommissionTiered }

// Calculate walks the tiers in order and applies each rate to the portion of
// the amount inside [Min, Max), until the amount is exhausted
func (s TieredStructure) Calculate(serviceAmount float64) (float64, error) {
	if serviceAmount < 0 {
		return 0, ErrNegativeAmount
	}
	if len(s.Tiers) == 0 {
		return 0, fmt.Errorf("%w: tiered structure has no tiers", ErrInvalidStructure)
	}

	commission := 0.0
	for _, tier := range s.Tiers {
		if serviceAmount <= tier.Min {
			break
		}
		upper := math.Min(serviceAmount, tier.Max)
		portion := upper - tier.Min
		if portion <= 0 {
			continue
		}
		commission += portion * tier.Rate / 100
	}
	return commission, nil
}

// HybridStructure fixed base plus a percentage of the service amount
type HybridStructure struct {
	FixedAmount float64
	Rate        float64 // 0-100
}

func (s HybridStructure) Type() CommissionType { return CommissionHybrid }

func (s HybridStructure) Calculate(serviceAmount float64) (float64, error) {
	if serviceAmount < 0 {
		return 0, ErrNegativeAmount
	}
	if s.FixedAmount < 0 || s.Rate < 0 || s.Rate > 100 {
		return 0, fmt.Errorf("%w: hybrid structure out of range", ErrInvalidStructure)
	}
	return s.FixedAmount + serviceAmount*s.Rate/100, nil
}

// DefaultCommissionStructure the global fallback when neither the staff member
// nor the service has an override configured
func DefaultCommissionStructure() CommissionStructure {
	return PercentageStructure{Rate: DefaultCommissionRate}
}

// QualityMultiplier maps a staff member's trailing 30-day average rating to a
// commission multiplier
func QualityMultiplier(avgRating float64) float64 {
	switch {
	case avgRating >= 4.8:
		return 1.15
	case avgRating >= 4.5:
		return 1.10
	case avgRating >= 4.0:
		return 1.05
	case avgRating < 3.0:
		return 0.90
	default:
		return 1.00
	}
}

// StaffCommission represents a staff member's earning for one completed booking.
// One record per booking - creation is idempotent on booking_id
type StaffCommission struct {
	ID        int64
	StaffID   int64
	BranchID  int64
	BookingID int64
	ServiceID int64

	CommissionType    CommissionType
	ServiceAmount     float64
	CommissionAmount  float64 // база по структуре, до множителя
	QualityMultiplier float64
	TotalEarning      float64 // CommissionAmount * QualityMultiplier

	// Отдельные аддитивные поля, множитель к ним не применяется
	TipAmount     float64
	BonusAmount   float64
	PenaltyAmount float64

	PayoutStatus   PayoutStatus
	ApprovalStatus ApprovalStatus
	EarnedDate     time.Time

	ApprovedAt *time.Time
	PaidAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NetEarning returns the payable amount: multiplied commission plus tips and
// bonuses, minus penalties
func (c *StaffCommission) NetEarning() float64 {
	return c.TotalEarning + c.TipAmount + c.BonusAmount - c.PenaltyAmount
}

// CanApprove returns true if the record is still awaiting an approval decision
func (c *StaffCommission) CanApprove() bool {
	return c.ApprovalStatus == ApprovalPending
}

// CanMarkPaid returns true if the record is approved and not yet paid.
// Paid records are immutable
func (c *StaffCommission) CanMarkPaid() bool {
	return c.ApprovalStatus == ApprovalApproved && c.PayoutStatus == PayoutPending
}

// CommissionSummary aggregate over a staff member's commission records
type CommissionSummary struct {
	StaffID       int64
	RecordCount   int
	TotalEarning  float64 // сумма total_earning
	TipTotal      float64
	BonusTotal    float64
	PenaltyTotal  float64
	PendingAmount float64 // total_earning по невыплаченным записям
	PaidAmount    float64 // total_earning по выплаченным записям
}

// StaffEarnings one row of a branch top-earners report
type StaffEarnings struct {
	StaffID      int64
	TotalEarning float64
	BookingCount int
}

// CalculateCommission computes the base commission and the final earning for a
// completed booking's service amount under the given structure and rating
func CalculateCommission(structure CommissionStructure, serviceAmount, avgRating float64) (base, multiplier, total float64, err error) {
	base, err = structure.Calculate(serviceAmount)
	if err != nil {
		return 0, 0, 0, err
	}
	multiplier = QualityMultiplier(avgRating)
	return base, multiplier, base * multiplier, nil
}
