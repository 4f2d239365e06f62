package kv

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/coredb/coredb/internal/model"
)

// encodeNode/decodeNode and encodeEdge/decodeEdge exist as named seams
// between the physical store and model.Node/model.Edge's own JSON codec,
// so a future on-disk format change only touches this file.
//
// Every stored record is prefixed with a 4-byte big-endian CRC32 of the
// JSON payload that follows, checked before decoding — spec.md's
// "readers must validate record bytes before decoding and reject
// malformed records with a typed corruption error" requirement, applied
// to the same crc32.ChecksumIEEE scheme internal/wal uses for its log
// entries.

const checksumLen = 4

func encodeNode(n *model.Node) ([]byte, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return withChecksum(payload), nil
}

func decodeNode(data []byte) (*model.Node, error) {
	payload, err := stripChecksum(data)
	if err != nil {
		return nil, err
	}
	var n model.Node
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return &n, nil
}

func encodeEdge(e *model.Edge) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return withChecksum(payload), nil
}

func decodeEdge(data []byte) (*model.Edge, error) {
	payload, err := stripChecksum(data)
	if err != nil {
		return nil, err
	}
	var e model.Edge
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return &e, nil
}

func withChecksum(payload []byte) []byte {
	out := make([]byte, checksumLen+len(payload))
	binary.BigEndian.PutUint32(out, crc32.ChecksumIEEE(payload))
	copy(out[checksumLen:], payload)
	return out
}

func stripChecksum(data []byte) ([]byte, error) {
	if len(data) < checksumLen {
		return nil, fmt.Errorf("%w: record shorter than checksum prefix", ErrCorrupted)
	}
	want := binary.BigEndian.Uint32(data[:checksumLen])
	payload := data[checksumLen:]
	if crc32.ChecksumIEEE(payload) != want {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupted)
	}
	return payload, nil
}
