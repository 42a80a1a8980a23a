package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"quotefeed/internal/quote"
)

func TestEncodeLineEndsWithNewline(t *testing.T) {
	q := quote.New("AAPL", 1, 2, 3)
	line, err := EncodeLine(q)
	if err != nil {
		t.Fatalf("EncodeLine: %v", err)
	}
	if line[len(line)-1] != '\n' {
		t.Fatalf("EncodeLine did not end with newline: %q", line)
	}
}

func TestReaderRoundTrip(t *testing.T) {
	q := quote.New("AAPL", 150.0, 150.05, 42)
	line, err := EncodeLine(q)
	if err != nil {
		t.Fatalf("EncodeLine: %v", err)
	}

	r := NewReader(bytes.NewReader(line))
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Instrument() != "AAPL" || got.Bid != 150.0 || got.Ask != 150.05 || got.TimestampNS != 42 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestReaderSkipsBlankLines(t *testing.T) {
	q := quote.New("AAPL", 1, 2, 3)
	line, _ := EncodeLine(q)
	stream := "\n\n" + string(line)

	r := NewReader(strings.NewReader(stream))
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Instrument() != "AAPL" {
		t.Fatalf("Instrument() = %q, want AAPL", got.Instrument())
	}
}

func TestReaderReturnsMalformedButStaysUsable(t *testing.T) {
	q := quote.New("AAPL", 1, 2, 3)
	goodLine, _ := EncodeLine(q)
	stream := "{ not json }\n" + string(goodLine)

	r := NewReader(strings.NewReader(stream))

	_, err := r.Next()
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("first Next() error = %v, want *MalformedError", err)
	}

	got, err := r.Next()
	if err != nil {
		t.Fatalf("second Next() after malformed line: %v", err)
	}
	if got.Instrument() != "AAPL" {
		t.Fatalf("Instrument() = %q, want AAPL", got.Instrument())
	}
}

func TestReaderReturnsEOFAtStreamEnd(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("Next() on empty stream = %v, want io.EOF", err)
	}
}

func TestReaderHandlesMultipleMessagesInOneChunk(t *testing.T) {
	var buf bytes.Buffer
	for i := int64(0); i < 5; i++ {
		line, _ := EncodeLine(quote.New("X", 0, 0, i))
		buf.Write(line)
	}

	r := NewReader(&buf)
	for i := int64(0); i < 5; i++ {
		q, err := r.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if q.TimestampNS != i {
			t.Fatalf("message %d: TimestampNS = %d, want %d", i, q.TimestampNS, i)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("final Next() = %v, want io.EOF", err)
	}
}
