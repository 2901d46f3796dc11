package entity

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

type BiasCell struct {
	Occupation string
	Value      Scalar
}

// BiasMatrixRow is one {"image_name": ..., "<occupation>": score} row, cells in payload order.
type BiasMatrixRow struct {
	ImageName ImageName
	Cells     []BiasCell
}

func (r BiasMatrixRow) Value(occupation string) (Scalar, bool) {
	for _, c := range r.Cells {
		if c.Occupation == occupation {
			return c.Value, true
		}
	}
	return Scalar{}, false
}

func (r BiasMatrixRow) MarshalJSON() ([]byte, error) {
	stream := jsoniter.ConfigDefault.BorrowStream(nil)
	defer jsoniter.ConfigDefault.ReturnStream(stream)

	stream.WriteObjectStart()
	stream.WriteObjectField("image_name")
	stream.WriteString(string(r.ImageName))
	for _, c := range r.Cells {
		stream.WriteMore()
		stream.WriteObjectField(c.Occupation)
		writeScalar(stream, c.Value)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (r *BiasMatrixRow) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ConfigDefault.BorrowIterator(data)
	defer jsoniter.ConfigDefault.ReturnIterator(iter)

	row := BiasMatrixRow{}
	var nameErr error
	iter.ReadMapCB(func(it *jsoniter.Iterator, field string) bool {
		if field == "image_name" {
			row.ImageName, nameErr = readImageName(it)
			return nameErr == nil
		}
		row.Cells = append(row.Cells, BiasCell{Occupation: field, Value: readScalar(it)})
		return it.Error == nil
	})
	if nameErr != nil {
		return nameErr
	}
	if iter.Error != nil {
		return iter.Error
	}

	*r = row
	return nil
}

type OccupationMetrics struct {
	Occupation string
	Entries    []MetricEntry
}

// MetricsByOccupation is the "metrics" object of the bias payload with its key order kept.
type MetricsByOccupation []OccupationMetrics

func (m MetricsByOccupation) Entries(occupation string) []MetricEntry {
	for _, om := range m {
		if om.Occupation == occupation {
			return om.Entries
		}
	}
	return nil
}

func (m MetricsByOccupation) MarshalJSON() ([]byte, error) {
	stream := jsoniter.ConfigDefault.BorrowStream(nil)
	defer jsoniter.ConfigDefault.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, om := range m {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(om.Occupation)
		entries := om.Entries
		if entries == nil {
			entries = []MetricEntry{}
		}
		stream.WriteVal(entries)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (m *MetricsByOccupation) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ConfigDefault.BorrowIterator(data)
	defer jsoniter.ConfigDefault.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return errors.New("metrics must be an object keyed by occupation")
	}

	out := MetricsByOccupation{}
	iter.ReadMapCB(func(it *jsoniter.Iterator, occupation string) bool {
		var entries []MetricEntry
		it.ReadVal(&entries)
		out = append(out, OccupationMetrics{Occupation: occupation, Entries: entries})
		return it.Error == nil
	})
	if iter.Error != nil {
		return iter.Error
	}

	*m = out
	return nil
}
