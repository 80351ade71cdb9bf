package record

import (
	"time"
)

// Collection is the in-memory form of one collection while its lock is held.
type Collection struct {
	Sequences map[string]int64 `json:"sequences"`
	Records   []Record         `json:"records"`

	ids map[string]struct{}
}

func (c *Collection) Has(id string) bool {
	if c.ids == nil {
		c.ids = make(map[string]struct{}, len(c.Records))
		for _, r := range c.Records {
			c.ids[r.ID()] = struct{}{}
		}
	}
	_, ok := c.ids[id]
	return ok
}

// Add stamps rec with id and now and appends it.
func (c *Collection) Add(rec Record, id string, now time.Time) Record {
	stamped := Stamp(rec, id, now)
	c.Has(id)
	c.ids[stamped.ID()] = struct{}{}
	c.Records = append(c.Records, stamped)
	return stamped
}

// Allocate reserves the next free sequenced id for now's period.
func (c *Collection) Allocate(seq Sequence, now time.Time) (string, error) {
	period := seq.Period(now)
	if c.Sequences == nil {
		c.Sequences = make(map[string]int64)
	}
	id, n, err := NextFree(seq, period, c.Sequences[period], c.Has)
	if err != nil {
		return "", err
	}
	c.Sequences[period] = n
	return id, nil
}

// Apply runs mutate over copies of the matching records and only keeps the
// result when every mutation succeeds.
func (c *Collection) Apply(match func(Record) bool, mutate func(Record) error) (bool, error) {
	updated := make(map[int]Record)
	for i, r := range c.Records {
		if !match(r) {
			continue
		}
		cp := r.Clone()
		if err := mutate(cp); err != nil {
			return false, err
		}
		updated[i] = cp
	}
	if len(updated) == 0 {
		return false, nil
	}
	for i, r := range updated {
		c.Records[i] = r
	}
	c.ids = nil
	return true, nil
}

// Snapshot returns copies of the records so callers cannot alter stored state.
func (c *Collection) Snapshot() []Record {
	out := make([]Record, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.Clone()
	}
	return out
}
