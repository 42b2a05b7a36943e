package indexfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/gridex/codec"
	"github.com/hupe1980/gridex/coord"
	"github.com/hupe1980/gridex/grid"
	"github.com/hupe1980/gridex/sparse"
)

// maxBodySize bounds the stored and uncompressed body sizes a file may
// claim.
const maxBodySize = 1 << 31

// minValueSize is the smallest encoding of one axis value: two one-byte
// varints, two float64 and the layer flag.
const minValueSize = 1 + 1 + 8 + 8 + 1

// ReadInfo reads and validates the header of an index file.
func ReadInfo(r io.Reader) (Info, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return Info{}, truncated("header", err)
	}
	if header.Magic != MagicNumber {
		return Info{}, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return Info{}, fmt.Errorf("%w: got %d", ErrInvalidVersion, header.Version)
	}
	if header.BodyLen > maxBodySize {
		return Info{}, fmt.Errorf("%w: body length %d", ErrCorrupt, header.BodyLen)
	}

	name := make([]byte, header.CodecLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return Info{}, truncated("codec name", err)
	}

	return Info{
		Version:     header.Version,
		Compression: Compression(header.Compression),
		Codec:       string(name),
		BodyLen:     header.BodyLen,
		Checksum:    header.Checksum,
	}, nil
}

// Decode reads an index file from r.
func Decode[T any](r io.Reader, opts Options) (*grid.ND[T], error) {
	info, err := ReadInfo(r)
	if err != nil {
		return nil, err
	}

	c, err := resolveCodec(info.Codec, opts)
	if err != nil {
		return nil, err
	}

	block, err := io.ReadAll(io.LimitReader(r, int64(info.BodyLen)))
	if err != nil {
		return nil, err
	}
	if uint64(len(block)) != info.BodyLen {
		return nil, fmt.Errorf("%w: truncated body", ErrCorrupt)
	}
	if err := verifyChecksum(block, info.Checksum); err != nil {
		return nil, err
	}

	body, err := decompressBlock(block, info.Compression, maxBodySize)
	if err != nil {
		return nil, err
	}

	return decodeBody[T](body, c)
}

func truncated(what string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: truncated %s", ErrCorrupt, what)
	}
	return err
}

// Unmarshal decodes an index file held in memory.
func Unmarshal[T any](data []byte, opts Options) (*grid.ND[T], error) {
	return Decode[T](bytes.NewReader(data), opts)
}

func resolveCodec(name string, opts Options) (codec.Codec, error) {
	if opts.Codec != nil && opts.Codec.Name() == name {
		return opts.Codec, nil
	}
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

func decodeBody[T any](body []byte, c codec.Codec) (*grid.ND[T], error) {
	r := &bodyReader{data: body}

	rank := r.count("rank", 1)
	axes := make([]*coord.Axis, 0, rank)
	for range rank {
		kind := coord.Kind(r.u8("axis kind"))
		name := r.str("axis name")
		unit := r.str("axis unit")
		n := r.count("axis size", minValueSize)
		values := make([]coord.Value, n)
		for i := range values {
			values[i] = coord.FromRaw(coord.Raw{
				Kind:  kind,
				I1:    r.varint("value"),
				I2:    r.varint("value"),
				F1:    r.f64("value"),
				F2:    r.f64("value"),
				Layer: r.u8("value") != 0,
			})
		}
		if err := r.err(); err != nil {
			return nil, err
		}
		if _, ok := coord.ParseKind(kind.String()); !ok {
			return nil, fmt.Errorf("%w: axis %q has unknown kind %d", ErrCorrupt, name, uint8(kind))
		}
		a, err := coord.NewAxis(kind, name, unit, values)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		axes = append(axes, a)
	}

	sizes := make([]int, rank)
	for i := range sizes {
		sizes[i] = int(r.uvarint("size"))
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	for i, a := range axes {
		if sizes[i] != a.Size() {
			return nil, fmt.Errorf("%w: axis %q has %d values, size says %d", ErrCorrupt, a.Name(), a.Size(), sizes[i])
		}
	}

	array, err := sparse.New[T](sizes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	occupied := roaring.New()
	bm := r.blob("occupancy")
	if err := r.err(); err != nil {
		return nil, err
	}
	if err := occupied.UnmarshalBinary(bm); err != nil {
		return nil, fmt.Errorf("%w: occupancy: %w", ErrCorrupt, err)
	}

	populated := r.count("populated", 1)
	if err := r.err(); err != nil {
		return nil, err
	}
	if uint64(populated) != occupied.GetCardinality() {
		return nil, fmt.Errorf("%w: %d locators for %d occupied cells", ErrCorrupt, populated, occupied.GetCardinality())
	}
	if populated > 0 && int(occupied.Maximum()) >= array.TotalSize() {
		return nil, fmt.Errorf("%w: occupied cell %d outside %d cells", ErrCorrupt, occupied.Maximum(), array.TotalSize())
	}

	track := make([]int, array.TotalSize())
	it := occupied.Iterator()
	for it.HasNext() {
		flat := it.Next()
		loc := r.varint("locator")
		if r.err() == nil && loc == 0 {
			return nil, fmt.Errorf("%w: zero locator at cell %d", ErrCorrupt, flat)
		}
		track[flat] = int(loc)
	}

	raw := r.blob("content")
	if err := r.err(); err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.remaining())
	}

	var content []T
	if err := c.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("%w: content: %w", ErrCorrupt, err)
	}

	if err := array.SetTrack(track); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := array.SetContent(content); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return grid.New(axes, array)
}
