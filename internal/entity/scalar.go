package entity

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

type ScalarKind uint8

const (
	ScalarNull ScalarKind = iota
	ScalarNumber
	ScalarString
	ScalarBool
)

// Scalar holds a JSON number, string, bool or null. The zero value is null.
type Scalar struct {
	kind ScalarKind
	num  float64
	str  string
	b    bool
}

func Number(f float64) Scalar { return Scalar{kind: ScalarNumber, num: f} }
func String(s string) Scalar  { return Scalar{kind: ScalarString, str: s} }
func Bool(b bool) Scalar      { return Scalar{kind: ScalarBool, b: b} }

func (s Scalar) Kind() ScalarKind { return s.kind }
func (s Scalar) IsNull() bool     { return s.kind == ScalarNull }

// Float returns the numeric value. Strings are parsed; anything else reports false.
func (s Scalar) Float() (float64, bool) {
	switch s.kind {
	case ScalarNumber:
		return s.num, true
	case ScalarString:
		f, err := strconv.ParseFloat(strings.TrimSpace(s.str), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String renders the value the way it appears in a report cell.
func (s Scalar) String() string {
	switch s.kind {
	case ScalarNumber:
		return formatNumber(s.num)
	case ScalarString:
		return s.str
	case ScalarBool:
		return strconv.FormatBool(s.b)
	}
	return "null"
}

// Or returns fallback when s is null.
func (s Scalar) Or(fallback Scalar) Scalar {
	if s.IsNull() {
		return fallback
	}
	return s
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case ScalarNumber:
		if math.IsNaN(s.num) || math.IsInf(s.num, 0) {
			return []byte("null"), nil
		}
		return []byte(formatNumber(s.num)), nil
	case ScalarString:
		return jsoniter.Marshal(s.str)
	case ScalarBool:
		return []byte(strconv.FormatBool(s.b)), nil
	}
	return []byte("null"), nil
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowIterator(data)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnIterator(iter)

	*s = readScalar(iter)
	return valueErr(iter)
}

// valueErr reports the iterator error for a single borrowed value. A number
// that ends the buffer makes jsoniter look for more input and record io.EOF,
// which is not a failure once the value has been read.
func valueErr(iter *jsoniter.Iterator) error {
	if errors.Is(iter.Error, io.EOF) {
		return nil
	}
	return iter.Error
}

func readScalar(iter *jsoniter.Iterator) Scalar {
	switch iter.WhatIsNext() {
	case jsoniter.NumberValue:
		return Number(iter.ReadFloat64())
	case jsoniter.StringValue:
		return String(iter.ReadString())
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.NilValue:
		iter.ReadNil()
		return Scalar{}
	default:
		iter.Skip()
		if iter.Error == nil {
			iter.ReportError("scalar", "expected number, string, bool or null")
		}
		return Scalar{}
	}
}

func writeScalar(stream *jsoniter.Stream, s Scalar) {
	b, _ := s.MarshalJSON()
	stream.WriteRaw(string(b))
}

func formatNumber(f float64) string {
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ImageName is an opaque image identifier. The bias service sometimes emits
// names as JSON numbers; the literal text is kept so "0012" and 12 stay distinct.
type ImageName string

func (n ImageName) String() string { return string(n) }

func (n ImageName) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(string(n))
}

func (n *ImageName) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowIterator(data)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnIterator(iter)

	name, err := readImageName(iter)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	*n = name
	return nil
}

func readImageName(iter *jsoniter.Iterator) (ImageName, error) {
	switch iter.WhatIsNext() {
	case jsoniter.StringValue:
		return ImageName(iter.ReadString()), iter.Error
	case jsoniter.NumberValue:
		return ImageName(iter.ReadNumber().String()), iter.Error
	case jsoniter.NilValue:
		iter.ReadNil()
		return "", iter.Error
	default:
		iter.Skip()
		return "", errors.New("image_name must be a string or a number")
	}
}
