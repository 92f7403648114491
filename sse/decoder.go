package sse

import (
	"bytes"
	"strings"
)

// Decoder splits a byte stream into frames delimited by a blank line.
//
// Bytes are buffered until a delimiter arrives and only complete frames are
// converted to strings, so a multi-byte UTF-8 sequence split across chunks
// is reassembled before decoding. The delimiter is ASCII and never occurs
// inside a multi-byte sequence.
type Decoder struct {
	buf []byte
}

// Feed appends chunk to the buffer and returns every frame completed by it,
// trimmed of surrounding whitespace. Empty frames are dropped. Bytes after
// the last delimiter are kept for the next call.
func (d *Decoder) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	// Bytes already buffered hold no delimiter, except possibly one that
	// straddles the old tail and the new chunk.
	from := max(0, len(d.buf)-(len(delimiter)-1))
	d.buf = append(d.buf, chunk...)

	var records []string
	for {
		i := bytes.Index(d.buf[from:], []byte(delimiter))
		if i < 0 {
			break
		}
		i += from
		from = 0
		record := strings.TrimSpace(string(d.buf[:i]))
		d.buf = d.buf[i+len(delimiter):]
		if record != "" {
			records = append(records, record)
		}
	}
	// Reclaim the consumed prefix once the buffer drains.
	if len(d.buf) == 0 {
		d.buf = d.buf[:0:0]
	}
	return records
}

// Buffered returns the number of bytes waiting for a delimiter.
func (d *Decoder) Buffered() int { return len(d.buf) }

// Reset discards any buffered bytes.
func (d *Decoder) Reset() { d.buf = nil }
