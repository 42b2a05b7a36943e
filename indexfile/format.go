package indexfile

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gridex/codec"
)

const (
	// MagicNumber identifies gridex index files (bytes on disk: "GDX1").
	MagicNumber = 0x31584447
	// Version is the current file format version.
	Version = 1

	// Extension is the file name extension of published index files.
	Extension = ".gdx"

	headerSize = 24
)

var (
	ErrInvalidMagic   = errors.New("indexfile: invalid magic number")
	ErrInvalidVersion = errors.New("indexfile: unsupported version")
	ErrChecksum       = errors.New("indexfile: checksum mismatch")
	ErrUnknownCodec   = errors.New("indexfile: unknown codec")
	ErrCorrupt        = errors.New("indexfile: corrupt body")
)

// fileHeader is the fixed-size header at the start of every index file.
type fileHeader struct {
	Magic       uint32 // 0x31584447 ("GDX1")
	Version     uint16 // File format version
	Compression uint8  // Compression of the body block
	CodecLen    uint8  // Length of the codec name following the header
	BodyLen     uint64 // Stored body length, block header included
	Checksum    uint32 // CRC32 of the stored body
	Reserved    uint32 // Future use
}

// Compression selects the body compression.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio, good for cold storage).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression returns the compression named s.
func ParseCompression(s string) (Compression, bool) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// Options configures encoding.
type Options struct {
	// Compression of the body. Default: CompressionNone.
	Compression Compression

	// Codec encodes payloads. If nil, codec.Default is used.
	//
	// When decoding, a non-nil Codec is used for files written with a codec
	// of the same name; this is how unregistered custom codecs are read.
	Codec codec.Codec
}

func (o Options) codec() codec.Codec {
	if o.Codec == nil {
		return codec.Default
	}
	return o.Codec
}

// Info describes an index file without decoding its body.
type Info struct {
	Version     uint16
	Compression Compression
	Codec       string
	BodyLen     uint64
	Checksum    uint32
}
