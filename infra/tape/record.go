package tape

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrCorruptRecord = errors.New("tape: corrupt record")

// Record is one executed trade as written to the tape.
type Record struct {
	Seq      uint64
	Time     int64 // unix nanos
	BidOrder uint64
	AskOrder uint64
	Price    int64
	Quantity int64
}

// Field numbers on the wire. The body is plain protobuf wire format so any
// proto-aware tool can decode a frame without a schema compile step.
const (
	fieldSeq      = 1
	fieldTime     = 2
	fieldBidOrder = 3
	fieldAskOrder = 4
	fieldPrice    = 5
	fieldQuantity = 6
)

// Encode frames a record as [len:4][crc:4][body] with the CRC covering the
// body, matching the tape reader's expectations.
func Encode(r *Record) []byte {
	var body []byte
	body = protowire.AppendTag(body, fieldSeq, protowire.VarintType)
	body = protowire.AppendVarint(body, r.Seq)
	body = protowire.AppendTag(body, fieldTime, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(r.Time))
	body = protowire.AppendTag(body, fieldBidOrder, protowire.VarintType)
	body = protowire.AppendVarint(body, r.BidOrder)
	body = protowire.AppendTag(body, fieldAskOrder, protowire.VarintType)
	body = protowire.AppendVarint(body, r.AskOrder)
	body = protowire.AppendTag(body, fieldPrice, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(r.Price))
	body = protowire.AppendTag(body, fieldQuantity, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(r.Quantity))

	frame := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(body)))
	binary.BigEndian.PutUint32(frame[4:8], crc32.ChecksumIEEE(body))
	return append(frame, body...)
}

// Decode parses a frame body (the CRC must already have been validated).
func Decode(body []byte) (*Record, error) {
	rec := &Record{}
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, ErrCorruptRecord
		}
		body = body[n:]
		if typ != protowire.VarintType {
			return nil, ErrCorruptRecord
		}
		v, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return nil, ErrCorruptRecord
		}
		body = body[n:]

		switch num {
		case fieldSeq:
			rec.Seq = v
		case fieldTime:
			rec.Time = protowire.DecodeZigZag(v)
		case fieldBidOrder:
			rec.BidOrder = v
		case fieldAskOrder:
			rec.AskOrder = v
		case fieldPrice:
			rec.Price = protowire.DecodeZigZag(v)
		case fieldQuantity:
			rec.Quantity = protowire.DecodeZigZag(v)
		}
	}
	return rec, nil
}
