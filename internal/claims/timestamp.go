package claims

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/riff/internal/shared"
)

// millisThreshold separates epoch seconds from epoch milliseconds.
const millisThreshold = 1_000_000_000_000

// ParseTimestamp interprets a claim as an instant.
//
// Instants are used as is. Integers at or above 10^12 are epoch milliseconds,
// smaller ones epoch seconds. Text is trimmed and parsed as RFC 3339, falling
// back to a base-10 integer under the same rule. Everything else fails with
// [shared.ErrUnparseableTimestamp].
func ParseTimestamp(v Value) (time.Time, error) {
	switch v.kind {
	case Time:
		return v.at, nil
	case Number:
		return fromEpoch(v.num), nil
	case String:
		s := strings.TrimSpace(v.str)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", shared.ErrUnparseableTimestamp, v.str)
		}
		return fromEpoch(n), nil
	default:
		return time.Time{}, fmt.Errorf("%w: null", shared.ErrUnparseableTimestamp)
	}
}

func fromEpoch(n int64) time.Time {
	if n >= millisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// UpdatedAt parses the updated_at claim.
func (c Claims) UpdatedAt() (time.Time, error) {
	v, ok := c.Get(UpdatedAt)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s claim absent", shared.ErrUnparseableTimestamp, UpdatedAt)
	}
	return ParseTimestamp(v)
}
