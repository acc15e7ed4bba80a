// Package safe provides checked integer conversions and arithmetic.
package safe

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is wrapped by every failed conversion or addition.
var ErrOutOfRange = errors.New("value out of range")

// Integer lists the integer kinds accepted by the conversion helpers.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// Uint32 converts signed or unsigned integers to uint32 with range validation.
func Uint32[T Integer](v T) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of uint32 range: %w", v, ErrOutOfRange)
	}
	return uint32(v), nil
}

// Uint64 converts signed or unsigned integers to uint64 while guarding against negatives.
func Uint64[T Integer](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range: %w", v, ErrOutOfRange)
	}
	return uint64(v), nil
}

// Int64 converts an unsigned value to int64, rejecting values above math.MaxInt64.
func Int64[T ~uint | ~uint32 | ~uint64](v T) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of int64 range: %w", v, ErrOutOfRange)
	}
	return int64(v), nil
}

// AddUint32 returns a+b or ErrOutOfRange when the sum wraps.
func AddUint32(a, b uint32) (uint32, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("%d + %d overflows uint32: %w", a, b, ErrOutOfRange)
	}
	return sum, nil
}

// SubUint32 returns a-b or ErrOutOfRange when b > a.
func SubUint32(a, b uint32) (uint32, error) {
	if b > a {
		return 0, fmt.Errorf("%d - %d underflows uint32: %w", a, b, ErrOutOfRange)
	}
	return a - b, nil
}
