// Package wire implements the newline-delimited JSON TCP transport: framing
// quotes onto the wire, decoding them back out tolerant of empty lines and
// malformed messages, and fanning a quote out to many subscribers without
// letting a slow one block the publisher.
package wire

import (
	"bufio"
	"encoding/json"
	"io"

	"quotefeed/internal/quote"
)

// EncodeLine marshals q as a single JSON object followed by '\n', the wire
// format every subscriber reads with bufio.Reader.ReadString('\n').
func EncodeLine(q quote.MarketQuote) ([]byte, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Reader decodes a stream of newline-delimited JSON quotes. Blank lines are
// skipped silently; a line that fails to decode is reported as a
// *MalformedError but does not end the stream, matching the source's
// skip-and-count behavior for a malformed frame.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r for line-delimited quote decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next reads and decodes the next quote. It returns io.EOF when the
// underlying stream ends cleanly, and a *MalformedError (wrapping the
// decode error) when a non-blank line fails to parse; the caller may keep calling
// Next to continue past a malformed line.
func (r *Reader) Next() (quote.MarketQuote, error) {
	for {
		line, err := r.br.ReadString('\n')
		if len(line) == 0 && err != nil {
			return quote.MarketQuote{}, err
		}

		trimmed := trimNewline(line)
		if len(trimmed) == 0 {
			if err != nil {
				return quote.MarketQuote{}, err
			}
			continue
		}

		var q quote.MarketQuote
		if decErr := json.Unmarshal(trimmed, &q); decErr != nil {
			if err != nil {
				// The stream ended mid-line; report the malformed tail, not EOF,
				// so the caller sees exactly one terminal error.
				return quote.MarketQuote{}, &MalformedError{Line: string(trimmed), Err: decErr}
			}
			return quote.MarketQuote{}, &MalformedError{Line: string(trimmed), Err: decErr}
		}
		return q, nil
	}
}

func trimNewline(line string) []byte {
	n := len(line)
	for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
		n--
	}
	return []byte(line[:n])
}

// MalformedError reports a line that could not be decoded as a quote. The
// connection should stay open; the caller is expected to count the
// failure and call Reader.Next again.
type MalformedError struct {
	Line string
	Err  error
}

func (e *MalformedError) Error() string {
	return "wire: malformed line: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
