// Package vesting implements the pure vesting math for payment streams.
//
// A schedule maps a committed amount and a time window to the portion of
// the amount that has vested at a given instant. All computation is
// integer-only in minor currency units; the multiply-divide step runs in
// 128-bit intermediate precision so it cannot overflow before the final
// division narrows the result back into range.
//
// Every schedule satisfies the same envelope: vested is 0 at or before
// the window start, equals the full amount at or after the window end,
// and never decreases as time advances.
package vesting

import (
	"errors"
	"fmt"
	"math/bits"
)

// Kind names a vesting curve shape.
type Kind string

// Supported schedule kinds.
const (
	KindLinear   Kind = "linear"
	KindCliff    Kind = "cliff"
	KindStepwise Kind = "stepwise"
)

// Schedule validation errors.
var (
	ErrUnknownKind      = errors.New("vesting: unknown schedule kind")
	ErrCliffOffset      = errors.New("vesting: cliff offset must be within the stream window")
	ErrCliffAmount      = errors.New("vesting: cliff amount must be positive and at most the stream amount")
	ErrStepCount        = errors.New("vesting: step count must be at least 1")
	ErrNegativeAmount   = errors.New("vesting: amount must not be negative")
	ErrNegativeDuration = errors.New("vesting: duration must not be negative")
)

// Schedule describes one vesting curve. The zero value is not valid;
// construct schedules with Linear, Cliff, or Stepwise. Schedules are
// plain data so they round-trip through stores unchanged.
type Schedule struct {
	Kind Kind `json:"kind"`

	// CliffOffset is the number of seconds after the stream start at
	// which the cliff unlocks. Only meaningful for KindCliff.
	CliffOffset int64 `json:"cliff_offset,omitempty"`

	// CliffAmount is the portion (minor units) unlocked at the cliff.
	// The remainder vests linearly from the cliff to the window end.
	// Only meaningful for KindCliff.
	CliffAmount int64 `json:"cliff_amount,omitempty"`

	// Steps is the number of equal tranches for KindStepwise.
	Steps int64 `json:"steps,omitempty"`
}

// Linear returns the default schedule: strictly proportional vesting
// across the whole window.
func Linear() Schedule {
	return Schedule{Kind: KindLinear}
}

// Cliff returns a schedule that unlocks amount minor units at
// start+offset seconds, then vests the remainder linearly to the end.
func Cliff(offset, amount int64) Schedule {
	return Schedule{Kind: KindCliff, CliffOffset: offset, CliffAmount: amount}
}

// Stepwise returns a schedule that unlocks the amount in steps equal
// tranches at equal intervals across the window.
func Stepwise(steps int64) Schedule {
	return Schedule{Kind: KindStepwise, Steps: steps}
}

// Validate checks the schedule parameters against a stream's committed
// amount (minor units) and duration (seconds). It does not validate the
// amount and duration themselves beyond sign; the engine enforces the
// positivity rules at its own boundary.
func (s Schedule) Validate(amount, duration int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if duration < 0 {
		return ErrNegativeDuration
	}

	switch s.Kind {
	case KindLinear:
		return nil
	case KindCliff:
		if s.CliffOffset <= 0 || s.CliffOffset >= duration {
			return fmt.Errorf("%w: offset %d, duration %d", ErrCliffOffset, s.CliffOffset, duration)
		}
		if s.CliffAmount <= 0 || s.CliffAmount > amount {
			return fmt.Errorf("%w: cliff %d, amount %d", ErrCliffAmount, s.CliffAmount, amount)
		}
		return nil
	case KindStepwise:
		if s.Steps < 1 {
			return fmt.Errorf("%w: got %d", ErrStepCount, s.Steps)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

// VestedAt returns the vested portion of amount at time now for a stream
// spanning [start, end). Times are unix seconds. The result is always in
// [0, amount]: 0 at or before start, amount at or after end.
//
// The window must satisfy end > start; a non-positive window is an
// internal invariant violation (callers validate duration before a
// schedule ever reaches the calculator) and panics.
func (s Schedule) VestedAt(amount, start, end, now int64) int64 {
	total := end - start
	if total <= 0 {
		panic(fmt.Sprintf("vesting: non-positive window [%d, %d)", start, end))
	}
	if amount <= 0 {
		return 0
	}
	if now <= start {
		return 0
	}
	if now >= end {
		return amount
	}

	elapsed := now - start

	var vested int64
	switch s.Kind {
	case KindCliff:
		vested = s.cliffVested(amount, elapsed, total)
	case KindStepwise:
		vested = s.stepwiseVested(amount, elapsed, total)
	default:
		// Linear, and the shape every other kind falls back to.
		vested = mulDiv(amount, elapsed, total)
	}

	// Safety bound: no rounding asymmetry may push vested past amount.
	if vested > amount {
		vested = amount
	}
	if vested < 0 {
		vested = 0
	}
	return vested
}

// cliffVested: nothing before the cliff; at the cliff CliffAmount
// unlocks and the remainder vests linearly over the rest of the window.
func (s Schedule) cliffVested(amount, elapsed, total int64) int64 {
	if elapsed < s.CliffOffset {
		return 0
	}
	remainder := amount - s.CliffAmount
	tail := total - s.CliffOffset
	if remainder <= 0 || tail <= 0 {
		return s.CliffAmount
	}
	return s.CliffAmount + mulDiv(remainder, elapsed-s.CliffOffset, tail)
}

// stepwiseVested: the amount unlocks in Steps equal tranches; tranche k
// unlocks once k/Steps of the window has elapsed.
func (s Schedule) stepwiseVested(amount, elapsed, total int64) int64 {
	steps := s.Steps
	if steps < 1 {
		steps = 1
	}
	unlocked := mulDiv(elapsed, steps, total)
	return mulDiv(amount, unlocked, steps)
}

// mulDiv computes floor(a*b/d) for non-negative inputs using a 128-bit
// intermediate product. Callers guarantee a < d or b <= d, which bounds
// the quotient within int64 so the division cannot overflow.
func mulDiv(a, b, d int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	quo, _ := bits.Div64(hi, lo, uint64(d))
	return int64(quo)
}
