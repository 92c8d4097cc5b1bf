package netplay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrRecordTooLarge is returned when a record grows past the reader's limit
// without a terminating newline.
var ErrRecordTooLarge = errors.New("netplay: record exceeds maximum size")

// DefaultMaxRecordBytes bounds a single record when no limit is configured.
const DefaultMaxRecordBytes = 4096

// LineReader reassembles newline-delimited records from a byte stream.
// A partial record stays buffered across Fill calls until its newline arrives.
//
// Not safe for concurrent use.
type LineReader struct {
	r       io.Reader
	max     int
	buf     []byte
	scratch []byte
}

// NewLineReader wraps r. max <= 0 selects DefaultMaxRecordBytes.
func NewLineReader(r io.Reader, max int) *LineReader {
	if max <= 0 {
		max = DefaultMaxRecordBytes
	}
	return &LineReader{r: r, max: max, scratch: make([]byte, max)}
}

// Fill performs one Read from the underlying stream and appends the bytes
// to the buffer.
//
// Postcondition: returns ErrRecordTooLarge when the unterminated tail of the
// buffer exceeds the limit; otherwise returns the Read error, if any.
func (l *LineReader) Fill() error {
	n, err := l.r.Read(l.scratch)
	if n > 0 {
		l.buf = append(l.buf, l.scratch[:n]...)
		tail := l.buf
		if i := bytes.LastIndexByte(tail, '\n'); i >= 0 {
			tail = tail[i+1:]
		}
		if len(tail) > l.max {
			return fmt.Errorf("%w: %d bytes without newline", ErrRecordTooLarge, len(tail))
		}
	}
	return err
}

// Next pops the next complete record from the buffer, without its newline
// or a trailing '\r'. Empty lines are skipped.
//
// Postcondition: ok is false when no complete record is buffered; a partial
// record is left in place.
func (l *LineReader) Next() (record []byte, ok bool) {
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			return nil, false
		}
		line := bytes.TrimSuffix(l.buf[:i], []byte{'\r'})
		rec := make([]byte, len(line))
		copy(rec, line)
		l.buf = l.buf[i+1:]
		if len(rec) > 0 {
			return rec, true
		}
	}
}

// Buffered returns the number of bytes held, including any partial record.
func (l *LineReader) Buffered() int { return len(l.buf) }
