package cborwire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Value is one encoded CBOR data item.
//
// It marshals verbatim like cbor.RawMessage and renders in CBOR
// diagnostic notation, e.g. 10("1.50") or 6(null).
type Value []byte

// String renders the value in diagnostic notation.
func (v Value) String() string {
	if len(v) == 0 {
		return "<empty>"
	}
	s, err := cbor.Diagnose(v)
	if err != nil {
		return fmt.Sprintf("<invalid cbor: %x>", []byte(v))
	}
	return s
}

// MarshalCBOR returns v unchanged.
func (v Value) MarshalCBOR() ([]byte, error) {
	if len(v) == 0 {
		return nil, errors.New("cborwire: empty value")
	}
	return v, nil
}

// UnmarshalCBOR stores a copy of data.
func (v *Value) UnmarshalCBOR(data []byte) error {
	if v == nil {
		return errors.New("cborwire: UnmarshalCBOR on nil pointer")
	}
	*v = bytes.Clone(data)
	return nil
}

// Encode marshals a Go value (including cbor.Tag) into a Value.
func Encode(x any) (Value, error) {
	b, err := cbor.Marshal(x)
	if err != nil {
		return nil, err
	}
	return Value(b), nil
}

// mustEncode is Encode for values the codecs build themselves, all of
// which are encodable.
func mustEncode(x any) Value {
	v, err := Encode(x)
	if err != nil {
		panic(fmt.Sprintf("cborwire: encode %T: %v", x, err))
	}
	return v
}

// Decode unmarshals v into dst.
func Decode(v Value, dst any) error {
	return cbor.Unmarshal(v, dst)
}

// decodeTag unmarshals a tagged item, reporting false unless v carries
// exactly the given tag number.
func decodeTag(v Value, number uint64) (cbor.RawTag, bool) {
	var rt cbor.RawTag
	if n, ok := tagNumber(v); !ok || n != number {
		return rt, false
	}
	if err := cbor.Unmarshal(v, &rt); err != nil {
		return rt, false
	}
	return rt, true
}

// tagNumber reads the tag number from the head of a major type 6 item.
func tagNumber(v Value) (uint64, bool) {
	major, n, _, ok := readHead(v)
	if !ok || major != 6 {
		return 0, false
	}
	return n, true
}

// readHead decodes the initial byte and argument of a data item.
// Indefinite lengths are reported as not ok.
func readHead(v Value) (major byte, arg uint64, size int, ok bool) {
	if len(v) == 0 {
		return 0, 0, 0, false
	}
	major = v[0] >> 5
	info := v[0] & 0x1f
	switch {
	case info < 24:
		return major, uint64(info), 1, true
	case info <= 27:
		width := 1 << (info - 24)
		if len(v) < 1+width {
			return 0, 0, 0, false
		}
		for _, b := range v[1 : 1+width] {
			arg = arg<<8 | uint64(b)
		}
		return major, arg, 1 + width, true
	}
	return 0, 0, 0, false
}

// appendHead encodes a data item head with the shortest argument.
func appendHead(dst []byte, major byte, arg uint64) []byte {
	m := major << 5
	switch {
	case arg < 24:
		return append(dst, m|byte(arg))
	case arg <= 0xff:
		return append(dst, m|24, byte(arg))
	case arg <= 0xffff:
		return append(dst, m|25, byte(arg>>8), byte(arg))
	case arg <= 0xffffffff:
		return append(dst, m|26, byte(arg>>24), byte(arg>>16), byte(arg>>8), byte(arg))
	}
	return append(dst, m|27,
		byte(arg>>56), byte(arg>>48), byte(arg>>40), byte(arg>>32),
		byte(arg>>24), byte(arg>>16), byte(arg>>8), byte(arg))
}
