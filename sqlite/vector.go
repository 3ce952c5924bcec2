package sqlite

import (
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// encodeVector serializes an embedding using the pgvector binary layout.
func encodeVector(v []float32) ([]byte, error) {
	return pgvector.NewVector(v).EncodeBinary(nil)
}

// decodeVector parses an embedding written by encodeVector.
func decodeVector(buf []byte) ([]float32, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("embedding blob too short: %d bytes", len(buf))
	}
	dims := int(buf[0])<<8 | int(buf[1])
	if len(buf) != 4+4*dims {
		return nil, fmt.Errorf("embedding blob has %d bytes, expected %d", len(buf), 4+4*dims)
	}
	var v pgvector.Vector
	if err := v.DecodeBinary(buf); err != nil {
		return nil, err
	}
	return v.Slice(), nil
}
