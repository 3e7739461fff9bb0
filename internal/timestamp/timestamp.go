// Package timestamp converts date or epoch inputs into the decimal epoch
// strings the events API expects.
package timestamp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrInvalid is matched by every error this package returns.
var ErrInvalid = errors.New("invalid timestamp")

// InvalidError reports the rejected input.
type InvalidError struct {
	Input string
}

func (e *InvalidError) Error() string {
	return "invalid date or number: " + e.Input
}

// Is reports whether target is ErrInvalid.
func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}

// Value is a point in time given either as a time.Time or as a raw epoch
// number. Times are expressed in epoch milliseconds. The zero Value is absent.
type Value struct {
	t      time.Time
	n      float64
	isTime bool
	set    bool
}

// Time wraps a wall-clock time.
func Time(t time.Time) Value {
	return Value{t: t, isTime: true, set: true}
}

// Epoch wraps a raw epoch number. Fractions are floored on normalization.
func Epoch(n float64) Value {
	return Value{n: n, set: true}
}

// IsZero reports whether v was never set.
func (v Value) IsZero() bool {
	return !v.set
}

func (v Value) String() string {
	switch {
	case !v.set:
		return "<absent>"
	case v.isTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	}
}

// Normalize returns the canonical decimal encoding of v. It fails for
// absent values, NaN, +Inf and anything negative after flooring.
func Normalize(v Value) (string, error) {
	if !v.set {
		return "", &InvalidError{Input: v.String()}
	}
	if v.isTime {
		ms := v.t.UnixMilli()
		if ms < 0 {
			return "", &InvalidError{Input: v.String()}
		}
		return strconv.FormatInt(ms, 10), nil
	}

	f := math.Floor(v.n)
	if math.IsNaN(f) || math.IsInf(f, 1) || f < 0 {
		return "", &InvalidError{Input: v.String()}
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(f, 'f', 0, 64), nil
}

// Parse reads an upstream timestamp string such as an event's "ts" field.
func Parse(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return n, nil
}
