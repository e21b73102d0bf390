package grpcproto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var ErrBadMessage = errors.New("bad message")

// Field numbers of the messages carried inside a BytesValue. They follow
// skipstash.proto:
//
//	message PutRequest    { bytes key = 1; bytes value = 2; }
//	message GetRequest    { bytes key = 1; }
//	message RemoveRequest { bytes key = 1; }
//	message ScanRequest   { bytes lower = 1; bytes upper = 2; bytes filter = 3; }
//	message Row           { bytes key = 1; bytes value = 2; }
const (
	fieldKey    protowire.Number = 1
	fieldValue  protowire.Number = 2
	fieldLower  protowire.Number = 1
	fieldUpper  protowire.Number = 2
	fieldFilter protowire.Number = 3
)

// PutRequest stores Value under Key
type PutRequest struct {
	Key   []byte
	Value []byte
}

// GetRequest reads the row stored under Key
type GetRequest struct {
	Key []byte
}

// RemoveRequest deletes Key
type RemoveRequest struct {
	Key []byte
}

// ScanRequest scans [Lower, Upper) through an encoded skip scan filter.
// An empty Filter returns every row of the range.
type ScanRequest struct {
	Lower  []byte
	Upper  []byte
	Filter []byte
}

// Row is one streamed scan result
type Row struct {
	Key   []byte
	Value []byte
}

func (r *PutRequest) Wrap() *wrapperspb.BytesValue {
	return wrap(bytesField{fieldKey, r.Key}, bytesField{fieldValue, r.Value})
}

func UnwrapPutRequest(v *wrapperspb.BytesValue) (*PutRequest, error) {
	r := &PutRequest{}
	if err := unwrap(v, map[protowire.Number]*[]byte{fieldKey: &r.Key, fieldValue: &r.Value}); err != nil {
		return nil, fmt.Errorf("put request: %w", err)
	}
	return r, nil
}

func (r *GetRequest) Wrap() *wrapperspb.BytesValue {
	return wrap(bytesField{fieldKey, r.Key})
}

func UnwrapGetRequest(v *wrapperspb.BytesValue) (*GetRequest, error) {
	r := &GetRequest{}
	if err := unwrap(v, map[protowire.Number]*[]byte{fieldKey: &r.Key}); err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

func (r *RemoveRequest) Wrap() *wrapperspb.BytesValue {
	return wrap(bytesField{fieldKey, r.Key})
}

func UnwrapRemoveRequest(v *wrapperspb.BytesValue) (*RemoveRequest, error) {
	r := &RemoveRequest{}
	if err := unwrap(v, map[protowire.Number]*[]byte{fieldKey: &r.Key}); err != nil {
		return nil, fmt.Errorf("remove request: %w", err)
	}
	return r, nil
}

func (r *ScanRequest) Wrap() *wrapperspb.BytesValue {
	return wrap(bytesField{fieldLower, r.Lower}, bytesField{fieldUpper, r.Upper}, bytesField{fieldFilter, r.Filter})
}

func UnwrapScanRequest(v *wrapperspb.BytesValue) (*ScanRequest, error) {
	r := &ScanRequest{}
	err := unwrap(v, map[protowire.Number]*[]byte{fieldLower: &r.Lower, fieldUpper: &r.Upper, fieldFilter: &r.Filter})
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	return r, nil
}

func (r *Row) Wrap() *wrapperspb.BytesValue {
	return wrap(bytesField{fieldKey, r.Key}, bytesField{fieldValue, r.Value})
}

func UnwrapRow(v *wrapperspb.BytesValue) (*Row, error) {
	r := &Row{}
	if err := unwrap(v, map[protowire.Number]*[]byte{fieldKey: &r.Key, fieldValue: &r.Value}); err != nil {
		return nil, fmt.Errorf("row: %w", err)
	}
	return r, nil
}

type bytesField struct {
	num   protowire.Number
	value []byte
}

// wrap encodes fields as length-delimited protobuf fields.
// Empty values are left out, as proto3 does for bytes fields.
func wrap(fields ...bytesField) *wrapperspb.BytesValue {
	var buf []byte
	for _, f := range fields {
		if len(f.value) == 0 {
			continue
		}
		buf = protowire.AppendTag(buf, f.num, protowire.BytesType)
		buf = protowire.AppendBytes(buf, f.value)
	}
	return wrapperspb.Bytes(buf)
}

// unwrap decodes the protobuf fields of v into dst. Unknown fields are
// skipped, a repeated field keeps its last value.
func unwrap(v *wrapperspb.BytesValue, dst map[protowire.Number]*[]byte) error {
	if v == nil {
		return fmt.Errorf("%w: nil message", ErrBadMessage)
	}
	buf := v.GetValue()
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("%w: tag: %v", ErrBadMessage, protowire.ParseError(n))
		}
		buf = buf[n:]

		field, known := dst[num]
		if !known {
			n = protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrBadMessage, num, protowire.ParseError(n))
			}
			buf = buf[n:]
			continue
		}
		if typ != protowire.BytesType {
			return fmt.Errorf("%w: field %d has wire type %d", ErrBadMessage, num, typ)
		}
		value, n := protowire.ConsumeBytes(buf)
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrBadMessage, num, protowire.ParseError(n))
		}
		*field = value[:len(value):len(value)]
		buf = buf[n:]
	}
	return nil
}
