package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ValueKind tags the semantic type carried by a Value.
type ValueKind string

const (
	KindNull   ValueKind = "null"
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindBool   ValueKind = "bool"
	KindTime   ValueKind = "time"
	KindUUID   ValueKind = "uuid"
)

// Value is a typed field value captured for auditing. The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  int64
	flag bool
	at   time.Time
	id   uuid.UUID
}

func NullValue() Value { return Value{kind: KindNull} }

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func IntValue(n int64) Value { return Value{kind: KindInt, num: n} }

func BoolValue(b bool) Value { return Value{kind: KindBool, flag: b} }

// TimeValue normalizes t to UTC so that equal instants compare and serialize identically.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, at: t.UTC()} }

func UUIDValue(id uuid.UUID) Value { return Value{kind: KindUUID, id: id} }

// OptionalString returns a string Value, or null when s is nil.
func OptionalString(s *string) Value {
	if s == nil {
		return NullValue()
	}
	return StringValue(*s)
}

// OptionalTime returns a time Value, or null when t is nil.
func OptionalTime(t *time.Time) Value {
	if t == nil {
		return NullValue()
	}
	return TimeValue(*t)
}

// OptionalUUID returns a uuid Value, or null when id is nil.
func OptionalUUID(id *uuid.UUID) Value {
	if id == nil {
		return NullValue()
	}
	return UUIDValue(*id)
}

// Kind returns the value's tag. The zero Value reports KindNull.
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return KindNull
	}
	return v.kind
}

func (v Value) IsNull() bool { return v.Kind() == KindNull }

// String renders the value for logs and text matching.
func (v Value) String() string {
	switch v.Kind() {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindTime:
		return v.at.Format(time.RFC3339Nano)
	case KindUUID:
		return v.id.String()
	default:
		return "null"
	}
}

// Equal reports value equality: same kind and same payload.
func (v Value) Equal(o Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	case KindTime:
		return v.at.Equal(o.at)
	case KindUUID:
		return v.id == o.id
	default:
		return true
	}
}

type valueJSON struct {
	Type  ValueKind       `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes the value as {"type": kind, "value": payload}.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.Kind() {
	case KindString:
		payload = v.str
	case KindInt:
		payload = v.num
	case KindBool:
		payload = v.flag
	case KindTime:
		payload = v.at.Format(time.RFC3339Nano)
	case KindUUID:
		payload = v.id.String()
	default:
		return json.Marshal(valueJSON{Type: KindNull})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{Type: v.Kind(), Value: raw})
}

// UnmarshalJSON decodes the tagged form produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("value: %w", err)
	}

	switch in.Type {
	case KindNull, "":
		*v = NullValue()
	case KindString:
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return fmt.Errorf("value %s: %w", in.Type, err)
		}
		*v = StringValue(s)
	case KindInt:
		var n int64
		if err := json.Unmarshal(in.Value, &n); err != nil {
			return fmt.Errorf("value %s: %w", in.Type, err)
		}
		*v = IntValue(n)
	case KindBool:
		var b bool
		if err := json.Unmarshal(in.Value, &b); err != nil {
			return fmt.Errorf("value %s: %w", in.Type, err)
		}
		*v = BoolValue(b)
	case KindTime:
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return fmt.Errorf("value %s: %w", in.Type, err)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("value %s: %w", in.Type, err)
		}
		*v = TimeValue(t)
	case KindUUID:
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return fmt.Errorf("value %s: %w", in.Type, err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("value %s: %w", in.Type, err)
		}
		*v = UUIDValue(id)
	default:
		return fmt.Errorf("value: unknown type %q", in.Type)
	}
	return nil
}

// FieldSet maps field names to their current values.
type FieldSet map[string]Value
