package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
)

// Well-known collections.
const (
	CollectionOrders       = "orders"
	CollectionContacts     = "contacts"
	CollectionDistributors = "distributor_applications"
)

// Record is a schema-less document. The store only interprets FieldID and FieldCreatedAt.
type Record map[string]any

func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Decode unmarshals the record into dst through its JSON form.
func (r Record) Decode(dst any) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return json.Unmarshal(raw, dst)
}

// FromValue converts any JSON-serialisable value into a Record.
func FromValue(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var rec Record
	if err := Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Unmarshal decodes JSON keeping numbers as json.Number so int64 amounts survive.
func Unmarshal(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

var collectionName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

func ValidateCollection(name string) error {
	if !collectionName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// Stamp fills id and created_at when the caller left them empty.
func Stamp(rec Record, id string, now time.Time) Record {
	out := rec.Clone()
	if out.ID() == "" {
		out[FieldID] = id
	}
	if _, ok := out[FieldCreatedAt]; !ok {
		out[FieldCreatedAt] = now.UTC().Format(time.RFC3339Nano)
	}
	return out
}
