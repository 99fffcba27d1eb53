package cborwire

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/roach88/vantage/internal/types"
)

// String stores text strings (major type 3).
var String Type[string] = types.Func(VariantString,
	func(s string) Value { return mustEncode(s) },
	func(v Value) (string, bool) {
		if len(v) == 0 || v[0]>>5 != 3 {
			return "", false
		}
		var s string
		return s, Decode(v, &s) == nil
	})

// Int64 stores integers (major types 0 and 1).
var Int64 Type[int64] = types.Func(VariantInt,
	func(n int64) Value { return mustEncode(n) },
	func(v Value) (int64, bool) {
		if len(v) == 0 || v[0]>>5 > 1 {
			return 0, false
		}
		var n int64
		return n, Decode(v, &n) == nil
	})

// Float64 stores floats as 64-bit IEEE 754 items.
var Float64 Type[float64] = types.Func(VariantFloat,
	func(f float64) Value { return mustEncode(f) },
	func(v Value) (float64, bool) {
		if len(v) == 0 || (v[0] != 0xf9 && v[0] != 0xfa && v[0] != 0xfb) {
			return 0, false
		}
		var f float64
		return f, Decode(v, &f) == nil
	})

// Bool stores booleans.
var Bool Type[bool] = types.Func(VariantBool,
	func(b bool) Value { return mustEncode(b) },
	func(v Value) (bool, bool) {
		if len(v) != 1 || (v[0] != 0xf4 && v[0] != 0xf5) {
			return false, false
		}
		return v[0] == 0xf5, true
	})

// Bytes stores byte strings (major type 2).
var Bytes Type[[]byte] = types.Func(VariantBytes,
	func(b []byte) Value { return mustEncode(b) },
	func(v Value) ([]byte, bool) {
		if len(v) == 0 || v[0]>>5 != 2 {
			return nil, false
		}
		var b []byte
		return b, Decode(v, &b) == nil
	})

// Decimal stores decimals as tag 10 wrapping the exact text.
var Decimal Type[*apd.Decimal] = types.Func(VariantDecimal,
	func(d *apd.Decimal) Value {
		return mustEncode(cbor.Tag{Number: TagDecimal, Content: d.String()})
	},
	func(v Value) (*apd.Decimal, bool) {
		text, ok := tagText(v, TagDecimal)
		if !ok {
			return nil, false
		}
		d, _, err := apd.NewFromString(text)
		if err != nil {
			return nil, false
		}
		return d, true
	})

// DateTime stores instants as tag 0 wrapping RFC 3339 text.
var DateTime Type[time.Time] = types.Func(VariantDateTime,
	func(t time.Time) Value {
		return mustEncode(cbor.Tag{Number: TagDateTime, Content: t.Format(time.RFC3339Nano)})
	},
	func(v Value) (time.Time, bool) {
		text, ok := tagText(v, TagDateTime)
		if !ok {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339Nano, text)
		return t, err == nil
	})

// UUID stores UUIDs as tag 37 wrapping the 16 raw bytes.
var UUID Type[uuid.UUID] = types.Func(VariantUUID,
	func(u uuid.UUID) Value {
		return mustEncode(cbor.Tag{Number: TagUUID, Content: u[:]})
	},
	func(v Value) (uuid.UUID, bool) {
		rt, ok := decodeTag(v, TagUUID)
		if !ok {
			return uuid.Nil, false
		}
		var b []byte
		if err := cbor.Unmarshal(rt.Content, &b); err != nil {
			return uuid.Nil, false
		}
		u, err := uuid.FromBytes(b)
		return u, err == nil
	})

// Thing is a record identifier: a table name and an id within it.
type Thing struct {
	Table string
	ID    string
}

// String renders "table:id".
func (t Thing) String() string {
	return t.Table + ":" + t.ID
}

// ParseThing splits "table:id" at the first colon.
func ParseThing(s string) (Thing, error) {
	table, id, ok := strings.Cut(s, ":")
	if !ok || table == "" || id == "" {
		return Thing{}, fmt.Errorf("invalid record id %q: want table:id", s)
	}
	return Thing{Table: table, ID: id}, nil
}

// ThingType stores record identifiers as tag 8 wrapping "table:id".
// Decoding splits at the first colon and needs both halves non-empty, so
// the zero Thing and any Thing whose Table contains ':' do not come back.
// Colons in ID are kept.
var ThingType Type[Thing] = types.Func(VariantThing,
	func(t Thing) Value {
		return mustEncode(cbor.Tag{Number: TagThing, Content: t.String()})
	},
	func(v Value) (Thing, bool) {
		text, ok := tagText(v, TagThing)
		if !ok {
			return Thing{}, false
		}
		t, err := ParseThing(text)
		return t, err == nil
	})

// tagText decodes a tag whose content is a text string.
func tagText(v Value, number uint64) (string, bool) {
	rt, ok := decodeTag(v, number)
	if !ok {
		return "", false
	}
	var s string
	if err := cbor.Unmarshal(rt.Content, &s); err != nil {
		return "", false
	}
	return s, true
}
