package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/keepaway/internal/ir"
)

// encodeTrace serializes a round trace as canonical JSON and compresses it
// with zstd. Rows are written as JSON arrays of handling counts.
func encodeTrace(trace [][]uint64) ([]byte, error) {
	rows := make([]any, len(trace))
	for i, row := range trace {
		if row == nil {
			row = []uint64{}
		}
		rows[i] = row
	}

	data, err := ir.MarshalCanonical(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("compress trace: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compress trace: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compress trace: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeTrace reverses encodeTrace.
func decodeTrace(encoding string, blob []byte) ([][]uint64, error) {
	if encoding != ir.TraceEncoding {
		return nil, fmt.Errorf("unsupported trace encoding %q", encoding)
	}

	dec, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("decompress trace: %w", err)
	}
	defer dec.Close()

	var trace [][]uint64
	if err := json.NewDecoder(dec).Decode(&trace); err != nil {
		return nil, fmt.Errorf("unmarshal trace: %w", err)
	}
	if trace == nil {
		trace = [][]uint64{}
	}
	return trace, nil
}
