package indexfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// bodyWriter appends the primitives of the body layout to a buffer.
type bodyWriter struct {
	buf bytes.Buffer
	tmp [binary.MaxVarintLen64]byte
}

func (w *bodyWriter) uvarint(v uint64) {
	n := binary.PutUvarint(w.tmp[:], v)
	w.buf.Write(w.tmp[:n])
}

func (w *bodyWriter) varint(v int64) {
	n := binary.PutVarint(w.tmp[:], v)
	w.buf.Write(w.tmp[:n])
}

func (w *bodyWriter) u8(b byte) {
	w.buf.WriteByte(b)
}

func (w *bodyWriter) f64(f float64) {
	binary.LittleEndian.PutUint64(w.tmp[:8], math.Float64bits(f))
	w.buf.Write(w.tmp[:8])
}

func (w *bodyWriter) blob(b []byte) {
	w.uvarint(uint64(len(b)))
	w.buf.Write(b)
}

func (w *bodyWriter) str(s string) {
	w.uvarint(uint64(len(s)))
	w.buf.WriteString(s)
}

// bodyReader reads the body layout from memory. Every read is bounds
// checked; the first failure sticks and is reported by err.
type bodyReader struct {
	data []byte
	pos  int
	fail error
}

func (r *bodyReader) corrupt(what string) {
	if r.fail == nil {
		r.fail = fmt.Errorf("%w: truncated or invalid %s at offset %d", ErrCorrupt, what, r.pos)
	}
}

func (r *bodyReader) err() error { return r.fail }

func (r *bodyReader) remaining() int { return len(r.data) - r.pos }

func (r *bodyReader) uvarint(what string) uint64 {
	if r.fail != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		r.corrupt(what)
		return 0
	}
	r.pos += n
	return v
}

func (r *bodyReader) varint(what string) int64 {
	if r.fail != nil {
		return 0
	}
	v, n := binary.Varint(r.data[r.pos:])
	if n <= 0 {
		r.corrupt(what)
		return 0
	}
	r.pos += n
	return v
}

// count reads a length and checks that at least minSize bytes per element
// are left, so a corrupt length cannot force a huge allocation.
func (r *bodyReader) count(what string, minSize int) int {
	v := r.uvarint(what)
	if r.fail != nil {
		return 0
	}
	if v > uint64(r.remaining()/max(minSize, 1)) {
		r.corrupt(what)
		return 0
	}
	return int(v)
}

func (r *bodyReader) u8(what string) byte {
	if r.fail != nil {
		return 0
	}
	if r.remaining() < 1 {
		r.corrupt(what)
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *bodyReader) f64(what string) float64 {
	if r.fail != nil {
		return 0
	}
	if r.remaining() < 8 {
		r.corrupt(what)
		return 0
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v
}

func (r *bodyReader) blob(what string) []byte {
	n := r.count(what, 1)
	if r.fail != nil {
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *bodyReader) str(what string) string {
	return string(r.blob(what))
}
