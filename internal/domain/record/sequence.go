package record

import (
	"fmt"
	"strconv"
	"time"
)

// Sequence allocates human-readable ids from a counter kept per collection and period.
// Stores call it while holding the collection lock.
type Sequence interface {
	Period(now time.Time) string
	Format(period string, n int64) (string, error)
}

const yearlyMax = 999999

// YearlySequence yields <Prefix><year><6-digit counter>, e.g. AMP2025004821.
type YearlySequence struct {
	Prefix string
}

func (s YearlySequence) Period(now time.Time) string {
	return strconv.Itoa(now.UTC().Year())
}

func (s YearlySequence) Format(period string, n int64) (string, error) {
	if n < 1 || n > yearlyMax {
		return "", fmt.Errorf("%w: %s%s counter %d", ErrSequenceExhausted, s.Prefix, period, n)
	}
	return fmt.Sprintf("%s%s%06d", s.Prefix, period, n), nil
}

// NextFree advances from last+1 until Format yields an id not in taken.
func NextFree(seq Sequence, period string, last int64, taken func(string) bool) (string, int64, error) {
	for n := last + 1; ; n++ {
		id, err := seq.Format(period, n)
		if err != nil {
			return "", 0, err
		}
		if !taken(id) {
			return id, n, nil
		}
	}
}
