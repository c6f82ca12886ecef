// Package codec provides the sticky-error binary writer/reader that
// every component's Marshal/Unmarshal method is built on, so that
// internal/snapshot can serialise the whole emulation core as one flat
// sequence of primitive writes without every call site checking an
// error return (the pattern errWriter documents in the standard
// library's own image/png encoder).
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Writer accumulates a component's serialised bytes.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) U8(v uint8)   { w.buf.WriteByte(v) }
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}
func (w *Writer) U16(v uint16) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) U32(v uint32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) U64(v uint64) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) I8(v int8)    { w.U8(uint8(v)) }
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

// Raw writes b as-is, with no length prefix; the reader must know the
// length ahead of time (fixed-size arrays like OAM or VRAM).
func (w *Writer) Raw(b []byte) { w.buf.Write(b) }

// VarBytes writes a uint32 length prefix followed by b, for
// variable-length data such as PRG ROM.
func (w *Writer) VarBytes(b []byte) {
	w.U32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }
func (w *Writer) F64(v float64) { w.U64(math.Float64bits(v)) }

// Bytes returns the accumulated serialised data.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Reader consumes a component's serialised bytes in the same order
// Writer produced them. Every read method is sticky: once one read
// fails, subsequent reads return zero values and Err reports the first
// failure.
type Reader struct {
	buf *bytes.Reader
	err error
}

func NewReader(data []byte) *Reader { return &Reader{buf: bytes.NewReader(data)} }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) U8() uint8 {
	if r.err != nil {
		return 0
	}
	b, err := r.buf.ReadByte()
	if err != nil {
		r.fail(err)
		return 0
	}
	return b
}

func (r *Reader) Bool() bool { return r.U8() != 0 }
func (r *Reader) I8() int8   { return int8(r.U8()) }

func (r *Reader) U16() uint16 {
	if r.err != nil {
		return 0
	}
	var v uint16
	if err := binary.Read(r.buf, binary.LittleEndian, &v); err != nil {
		r.fail(err)
		return 0
	}
	return v
}

func (r *Reader) U32() uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	if err := binary.Read(r.buf, binary.LittleEndian, &v); err != nil {
		r.fail(err)
		return 0
	}
	return v
}

func (r *Reader) I32() int32 { return int32(r.U32()) }

func (r *Reader) U64() uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	if err := binary.Read(r.buf, binary.LittleEndian, &v); err != nil {
		r.fail(err)
		return 0
	}
	return v
}

// Raw reads exactly n bytes.
func (r *Reader) Raw(n int) []byte {
	if r.err != nil {
		return make([]byte, n)
	}
	out := make([]byte, n)
	if _, err := r.buf.Read(out); err != nil {
		r.fail(err)
	}
	return out
}

// VarBytes reads a length-prefixed byte slice written by Writer.VarBytes.
func (r *Reader) VarBytes() []byte {
	n := r.U32()
	if r.err != nil {
		return nil
	}
	return r.Raw(int(n))
}

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }
func (r *Reader) F64() float64 { return math.Float64frombits(r.U64()) }

// Err returns the first error encountered, or nil if every read so far
// consumed enough bytes.
func (r *Reader) Err() error {
	if r.err != nil {
		return fmt.Errorf("snapshot codec: %w", r.err)
	}
	return nil
}
