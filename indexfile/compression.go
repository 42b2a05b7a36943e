package indexfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	encoders = sync.Pool{New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	}}
	decoders = sync.Pool{New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	}}
)

// Every body is framed as [raw length uint32][stored length uint32][bytes].
// A stored length of 0 marks bytes kept as they were.
const blockHeaderSize = 8

// minSavings is the fraction a codec must shave off before its output is kept.
const minSavings = 0.1

func frame(raw int, payload []byte, stored bool) []byte {
	out := make([]byte, blockHeaderSize, blockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(raw))
	if stored {
		binary.LittleEndian.PutUint32(out[4:], uint32(len(payload)))
	}
	return append(out, payload...)
}

// compressBlock frames data, running it through c when that pays off.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("indexfile: body of %d bytes too large", len(data))
	}

	var packed []byte
	switch c {
	case CompressionNone:
		return frame(len(data), data, false), nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("indexfile: lz4: %w", err)
		}
		packed = buf[:n]
	case CompressionZSTD:
		enc := encoders.Get().(*zstd.Encoder)
		packed = enc.EncodeAll(data, nil)
		encoders.Put(enc)
	default:
		return nil, fmt.Errorf("indexfile: unknown compression %s", c)
	}

	// lz4 reports 0 for input it cannot shrink.
	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*(1-minSavings) {
		return frame(len(data), data, false), nil
	}
	return frame(len(data), packed, true), nil
}

// decompressBlock reverses compressBlock. A frame claiming more than maxSize
// raw bytes is rejected before anything is allocated.
func decompressBlock(block []byte, c Compression, maxSize uint32) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: body shorter than its frame", ErrCorrupt)
	}

	raw := binary.LittleEndian.Uint32(block)
	stored := binary.LittleEndian.Uint32(block[4:])
	payload := block[blockHeaderSize:]

	switch {
	case stored == 0 && uint64(len(payload)) != uint64(raw):
		return nil, fmt.Errorf("%w: frame says %d bytes, found %d", ErrCorrupt, raw, len(payload))
	case stored == 0:
		return payload, nil
	case uint64(len(payload)) != uint64(stored):
		return nil, fmt.Errorf("%w: frame says %d packed bytes, found %d", ErrCorrupt, stored, len(payload))
	case raw > maxSize:
		return nil, fmt.Errorf("%w: frame claims %d bytes", ErrCorrupt, raw)
	}

	var (
		out []byte
		err error
	)
	switch c {
	case CompressionLZ4:
		out = make([]byte, raw)
		var n int
		n, err = lz4.UncompressBlock(payload, out)
		out = out[:max(n, 0)]
	case CompressionZSTD:
		dec := decoders.Get().(*zstd.Decoder)
		out, err = dec.DecodeAll(payload, make([]byte, 0, raw))
		decoders.Put(dec)
	default:
		return nil, fmt.Errorf("%w: packed body under compression %s", ErrCorrupt, c)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if uint32(len(out)) != raw {
		return nil, fmt.Errorf("%w: unpacked %d bytes, frame says %d", ErrCorrupt, len(out), raw)
	}
	return out, nil
}
