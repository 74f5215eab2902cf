package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Timestamp is a time that decodes leniently. Missing or malformed input
// yields the zero value instead of an error, so a single bad tracking
// event never breaks decoding of a whole order.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MarshalJSON writes null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

// UnmarshalJSON accepts RFC 3339 strings and unix milliseconds.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		t.Time = parseTimestamp(s)
		return nil
	}
	if ms, err := strconv.ParseFloat(string(data), 64); err == nil {
		t.Time = time.UnixMilli(int64(ms)).UTC()
	}
	return nil
}

// MarshalBSONValue stores the zero time as null.
func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if t.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(t.Time)
}

// UnmarshalBSONValue accepts BSON datetimes and strings.
func (t *Timestamp) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	t.Time = time.Time{}
	raw := bson.RawValue{Type: bt, Value: data}
	switch bt {
	case bson.TypeDateTime:
		if v, ok := raw.TimeOK(); ok {
			t.Time = v.UTC()
		}
	case bson.TypeString:
		if s, ok := raw.StringValueOK(); ok {
			t.Time = parseTimestamp(s)
		}
	}
	return nil
}
