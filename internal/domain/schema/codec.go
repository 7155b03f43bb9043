package schema

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// EncodeVector packs v as little-endian IEEE 754 elements of the given datatype.
func EncodeVector(v []float32, dt Datatype) []byte {
	if dt == Float64 {
		buf := make([]byte, len(v)*8)
		for i, f := range v {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(float64(f)))
		}
		return buf
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(b []byte, dt Datatype) ([]float32, error) {
	size := dt.Size()
	if len(b)%size != 0 {
		return nil, fmt.Errorf("%w: vector blob of %d bytes is not a multiple of %d",
			domain.ErrValidation, len(b), size)
	}
	out := make([]float32, len(b)/size)
	for i := range out {
		if dt == Float64 {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:])))
		} else {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
	}
	return out, nil
}
