package indexfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/gridex/grid"
)

// Encode writes g as an index file to w.
func Encode[T any](w io.Writer, g *grid.ND[T], opts Options) error {
	c := opts.codec()
	name := c.Name()
	if len(name) == 0 || len(name) > math.MaxUint8 {
		return fmt.Errorf("indexfile: codec name %q must be 1 to 255 bytes", name)
	}

	body, err := encodeBody(g, opts)
	if err != nil {
		return err
	}

	block, err := compressBlock(body, opts.Compression)
	if err != nil {
		return err
	}

	header := fileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: uint8(opts.Compression),
		CodecLen:    uint8(len(name)),
		BodyLen:     uint64(len(block)),
		Checksum:    checksum(block),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// Marshal returns the index file encoding of g.
func Marshal[T any](g *grid.ND[T], opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, g, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeBody[T any](g *grid.ND[T], opts Options) ([]byte, error) {
	var w bodyWriter

	axes := g.Axes()
	w.uvarint(uint64(len(axes)))
	for _, a := range axes {
		w.u8(uint8(a.Kind()))
		w.str(a.Name())
		w.str(a.Unit())
		w.uvarint(uint64(a.Size()))
		for _, v := range a.Values() {
			r := v.Raw()
			w.varint(r.I1)
			w.varint(r.I2)
			w.f64(r.F1)
			w.f64(r.F2)
			w.u8(boolByte(r.Layer))
		}
	}

	for _, s := range g.Sizes() {
		w.uvarint(uint64(s))
	}

	occupied := g.Array().Occupied()
	bm, err := occupied.ToBytes()
	if err != nil {
		return nil, err
	}
	w.blob(bm)

	w.uvarint(occupied.GetCardinality())
	g.Array().Each(func(_, locator int, _ T) bool {
		w.varint(int64(locator))
		return true
	})

	content, err := opts.codec().Marshal(g.Content())
	if err != nil {
		return nil, fmt.Errorf("indexfile: encode content: %w", err)
	}
	w.blob(content)

	return w.buf.Bytes(), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
