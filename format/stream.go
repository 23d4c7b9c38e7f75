package format

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	ErrTypeTruncated          = "truncated_stream"
	ErrTypeUnsupportedVersion = "unsupported_version"
	ErrTypeCorrupted          = "corrupted_stream"
)

// maxStringLength guards allocations when a damaged length prefix is read.
const maxStringLength = 1 << 24

// Reader decodes little endian values. The first error is kept and every
// later read returns a zero value, so callers check Err once per record.
type Reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an error was already recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	b := r.buf[:n]
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.err = errors.New("reading stream failed").
			WithType(ErrTypeTruncated).
			WithTag("size", n).
			Wrap(err)
		return nil
	}
	return b
}

// Marker reads a single section marker byte. It returns false without
// recording an error when the stream ends cleanly.
func (r *Reader) Marker() (byte, bool) {
	if r.err != nil {
		return 0, false
	}
	b := r.buf[:1]
	n, err := io.ReadFull(r.r, b)
	if n == 0 && err == io.EOF {
		return 0, false
	}
	if err != nil {
		r.Fail(errors.New("reading section marker failed").
			WithType(ErrTypeTruncated).
			Wrap(err))
		return 0, false
	}
	return b[0], true
}

func (r *Reader) Byte() byte {
	b := r.read(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Bool() bool {
	return r.Byte() != 0
}

func (r *Reader) Int16() int16 {
	b := r.read(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *Reader) Int32() int32 {
	b := r.read(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// Int reads a 32 bit integer.
func (r *Reader) Int() int {
	return int(r.Int32())
}

func (r *Reader) Uint32() uint32 {
	b := r.read(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) Int64() int64 {
	b := r.read(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

func (r *Reader) Uint64() uint64 {
	return uint64(r.Int64())
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

func (r *Reader) Float64() float64 {
	b := r.read(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// Count reads a 32 bit element count and rejects negative or absurd values.
func (r *Reader) Count() int {
	n := r.Int32()
	if n < 0 || n > maxStringLength {
		r.Fail(errors.New("invalid element count").
			WithType(ErrTypeCorrupted).
			WithTag("count", n))
		return 0
	}
	return int(n)
}

// Length reads an unsigned 32 bit vector length and rejects absurd values.
func (r *Reader) Length() int {
	n := r.Uint32()
	if r.err != nil {
		return 0
	}
	if n > maxStringLength {
		r.Fail(errors.New("invalid vector length").
			WithType(ErrTypeCorrupted).
			WithTag("length", n))
		return 0
	}
	return int(n)
}

// String reads a string prefixed by its unsigned 32 bit length.
func (r *Reader) String() string {
	n := r.Uint32()
	if r.err != nil {
		return ""
	}
	if n > maxStringLength {
		r.Fail(errors.New("invalid string length").
			WithType(ErrTypeCorrupted).
			WithTag("length", n))
		return ""
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.Fail(errors.New("reading string failed").
			WithType(ErrTypeTruncated).
			WithTag("length", n).
			Wrap(err))
		return ""
	}
	return string(b)
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > maxStringLength {
		r.Fail(errors.New("invalid block size").
			WithType(ErrTypeCorrupted).
			WithTag("size", n))
		return nil
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.Fail(errors.New("reading block failed").
			WithType(ErrTypeTruncated).
			WithTag("size", n).
			Wrap(err))
		return nil
	}
	return b
}

// Float32s reads a float slice prefixed by its unsigned 32 bit length.
func (r *Reader) Float32s() []float32 {
	n := r.Length()
	if r.err != nil {
		return nil
	}

	v := make([]float32, n)
	for i := range v {
		v[i] = r.Float32()
	}
	return v
}

// Ints reads an int slice prefixed by its unsigned 32 bit length.
func (r *Reader) Ints() []int {
	n := r.Length()
	if r.err != nil {
		return nil
	}

	v := make([]int, n)
	for i := range v {
		v[i] = r.Int()
	}
	return v
}

// Writer encodes little endian values. Like Reader it keeps the first error.
type Writer struct {
	w   io.Writer
	buf [8]byte
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(b); err != nil {
		w.err = errors.New("writing stream failed").Wrap(err)
	}
}

// Raw writes b as is.
func (w *Writer) Raw(b []byte) {
	w.write(b)
}

func (w *Writer) Byte(v byte) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func (w *Writer) Int16(v int16) {
	binary.LittleEndian.PutUint16(w.buf[:2], uint16(v))
	w.write(w.buf[:2])
}

func (w *Writer) Int32(v int32) {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v))
	w.write(w.buf[:4])
}

// Int writes a 32 bit integer.
func (w *Writer) Int(v int) {
	w.Int32(int32(v))
}

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *Writer) Int64(v int64) {
	binary.LittleEndian.PutUint64(w.buf[:8], uint64(v))
	w.write(w.buf[:8])
}

func (w *Writer) Uint64(v uint64) {
	w.Int64(int64(v))
}

func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

func (w *Writer) Float64(v float64) {
	binary.LittleEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	w.write(w.buf[:8])
}

func (w *Writer) String(s string) {
	w.Uint32(uint32(len(s)))
	w.write([]byte(s))
}

func (w *Writer) Float32s(v []float32) {
	w.Uint32(uint32(len(v)))
	for _, f := range v {
		w.Float32(f)
	}
}

func (w *Writer) Ints(v []int) {
	w.Uint32(uint32(len(v)))
	for _, i := range v {
		w.Int(i)
	}
}
