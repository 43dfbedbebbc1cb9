package render

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// minFixedDigits is the shortest digit run FixedEnvelope accepts. Epoch
// milliseconds after 1970-04-26 have at least 10 digits, so a shorter run
// means the prefix or suffix width cut into the number.
const minFixedDigits = 10

// nanosPerUnit converts the epoch value found in a DataCore time envelope
// (milliseconds) to nanoseconds.
const nanosPerUnit = 1_000_000

// ErrEnvelope is returned when a time envelope cannot be decoded.
var ErrEnvelope = errors.New("malformed time envelope")

// TimeExtractor decodes a DataCore time envelope such as
// "/Date(1600000000123)/" into a Unix timestamp in nanoseconds.
type TimeExtractor interface {
	Extract(envelope string) (int64, error)
}

// FixedEnvelope strips Prefix characters from the front and Suffix
// characters from the back and reads the rest as an integer.
// Prefix 6 and Suffix 2 match "/Date(…)/"; Suffix 7 matches
// "/Date(…+0000)/".
type FixedEnvelope struct {
	Prefix int
	Suffix int
}

func (f FixedEnvelope) Extract(envelope string) (int64, error) {
	if f.Prefix < 0 || f.Suffix < 0 || len(envelope) <= f.Prefix+f.Suffix {
		return 0, fmt.Errorf("%w: %q too short for prefix %d and suffix %d",
			ErrEnvelope, envelope, f.Prefix, f.Suffix)
	}
	digits := envelope[f.Prefix : len(envelope)-f.Suffix]
	if len(digits) < minFixedDigits || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q: prefix %d and suffix %d leave %q",
			ErrEnvelope, envelope, f.Prefix, f.Suffix, digits)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrEnvelope, envelope, err)
	}
	return toNanos(n, envelope)
}

var dateEnvelope = regexp.MustCompile(`^/Date\((-?\d+)(?:[+-]\d{4})?\)/$`)

// DateEnvelope parses "/Date(ms)/" with or without a "+zzzz" offset. The
// offset does not change the instant and is ignored.
type DateEnvelope struct{}

func (DateEnvelope) Extract(envelope string) (int64, error) {
	m := dateEnvelope.FindStringSubmatch(envelope)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrEnvelope, envelope)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrEnvelope, envelope, err)
	}
	return toNanos(n, envelope)
}

func toNanos(n int64, envelope string) (int64, error) {
	if n > math.MaxInt64/nanosPerUnit || n < math.MinInt64/nanosPerUnit {
		return 0, fmt.Errorf("%w: %q out of range", ErrEnvelope, envelope)
	}
	return n * nanosPerUnit, nil
}

// NewTimeExtractor returns the extractor for a collection_time mode:
// "auto" or "fixed".
func NewTimeExtractor(mode string, prefix, suffix int) (TimeExtractor, error) {
	switch mode {
	case "", "auto":
		return DateEnvelope{}, nil
	case "fixed":
		if prefix < 0 || suffix < 0 {
			return nil, fmt.Errorf("render: negative envelope width %d/%d", prefix, suffix)
		}
		return FixedEnvelope{Prefix: prefix, Suffix: suffix}, nil
	}
	return nil, fmt.Errorf("render: unknown collection time mode %q", mode)
}
