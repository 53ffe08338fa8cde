// Package bytecode defines the boundary between the parsing engine
// and the external grammar compiler toolchain. The compiler itself,
// and the exact bytes it emits, are both out of scope for this
// module (spec.md §1); what lives here is the Reader interface the
// loader is built against, plus one concrete decoder for the binary
// block format documented in spec.md §6, built on top of
// github.com/dekarrin/rezi for its primitive integer and string
// encodings.
package bytecode

import (
	"io"

	"github.com/dekarrin/rezi"
)

// Reader is the primitive, sequential-access view of a grammar file
// that Load is built against. It mirrors the C interpreter's
// "bc_read_stream" — a thin cursor over an already-fetched byte
// buffer, not a general io.Reader, because the binary format's
// records are read in a fixed, self-describing sequence and never
// need to be re-read once consumed.
type Reader interface {
	// ReadByte reads and returns a single byte, e.g. a block-kind tag
	// or a boolean flag.
	ReadByte() (byte, error)

	// ReadInt reads one REZI-encoded integer.
	ReadInt() (int, error)

	// ReadString reads one REZI-encoded, length-prefixed UTF-8
	// string.
	ReadString() (string, error)

	// Done reports whether the stream has been fully consumed.
	Done() bool
}

// sliceReader is the concrete Reader used by Load when decoding an
// in-memory grammar file. It keeps a cursor into a byte slice and
// delegates primitive decoding to rezi, which reports how many bytes
// each value consumed so the cursor can advance past it.
type sliceReader struct {
	buf []byte
	pos int
}

// NewReader wraps a fully-read grammar file's bytes in a Reader.
func NewReader(data []byte) Reader {
	return &sliceReader{buf: data}
}

func (r *sliceReader) Done() bool {
	return r.pos >= len(r.buf)
}

func (r *sliceReader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *sliceReader) ReadInt() (int, error) {
	var v int
	n, err := rezi.Dec(r.buf[r.pos:], &v)
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

func (r *sliceReader) ReadString() (string, error) {
	var v string
	n, err := rezi.Dec(r.buf[r.pos:], &v)
	if err != nil {
		return "", err
	}
	r.pos += n
	return v, nil
}
