package quote

import (
	"encoding/json"
	"testing"
	"unsafe"
)

func TestMarketQuoteSize(t *testing.T) {
	if got := unsafe.Sizeof(MarketQuote{}); got != 64 {
		t.Fatalf("MarketQuote size = %d, want 64", got)
	}
}

func TestMarketQuoteZeroValueIsAllZero(t *testing.T) {
	var q MarketQuote
	b := q.Bytes()
	for i, v := range b {
		if v != 0 {
			t.Fatalf("zero-value MarketQuote has non-zero byte at offset %d: %x", i, v)
		}
	}
}

func TestNewTruncatesAndTerminatesInstrument(t *testing.T) {
	q := New("SUPERLONGINSTRUMENT", 1.0, 1.1, 42)
	if len(q.Instrument()) != InstrumentLen-1 {
		t.Fatalf("Instrument() = %q, want length %d", q.Instrument(), InstrumentLen-1)
	}
	if q.instrument[InstrumentLen-1] != 0 {
		t.Fatalf("instrument field not zero-terminated")
	}
}

func TestNewShortInstrumentRoundTrips(t *testing.T) {
	q := New("AAPL", 150.25, 150.27, 1_000_000)
	if q.Instrument() != "AAPL" {
		t.Fatalf("Instrument() = %q, want AAPL", q.Instrument())
	}
	if q.Bid != 150.25 || q.Ask != 150.27 || q.TimestampNS != 1_000_000 {
		t.Fatalf("field mismatch: %+v", q)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := New("RELIANCE", 2850.25, 2850.75, 1234567890123)
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded MarketQuote
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Instrument() != orig.Instrument() || decoded.Bid != orig.Bid ||
		decoded.Ask != orig.Ask || decoded.TimestampNS != orig.TimestampNS {
		t.Fatalf("round-trip mismatch: got %+v want %+v", decoded, orig)
	}
}

func TestJSONRoundTripTruncatesLongInstrument(t *testing.T) {
	orig := New("SUPERLONGINSTRUMENT", 1, 1.1, 1)
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded MarketQuote
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Instrument() != orig.Instrument() {
		t.Fatalf("Instrument() = %q, want %q", decoded.Instrument(), orig.Instrument())
	}
}

func TestJSONSchemaHasExactlyFourKeys(t *testing.T) {
	data, err := json.Marshal(New("AAPL", 1, 2, 3))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"instrument", "bid", "ask", "timestamp_ns"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	if len(raw) != 4 {
		t.Fatalf("expected exactly 4 keys, got %d: %s", len(raw), data)
	}
}

func TestDecodeMissingKeyFails(t *testing.T) {
	cases := []string{
		`{"bid":1.0,"ask":1.1,"timestamp_ns":10}`,
		`{"instrument":"A","ask":1.1,"timestamp_ns":10}`,
		`{"instrument":"A","bid":1.0,"timestamp_ns":10}`,
		`{"instrument":"A","bid":1.0,"ask":1.1}`,
	}
	for _, c := range cases {
		var q MarketQuote
		if err := json.Unmarshal([]byte(c), &q); err == nil {
			t.Fatalf("expected error decoding %q", c)
		}
		if q.Instrument() != "" || q.Bid != 0 || q.Ask != 0 || q.TimestampNS != 0 {
			t.Fatalf("output must be left unmodified on error, got %+v", q)
		}
	}
}

func TestDecodeWrongTypeFails(t *testing.T) {
	cases := []string{
		`{"instrument":1,"bid":1.0,"ask":1.1,"timestamp_ns":10}`,
		`{"instrument":"A","bid":"not a number","ask":1.1,"timestamp_ns":10}`,
		`{"instrument":"A","bid":1.0,"ask":1.1,"timestamp_ns":"not an int"}`,
	}
	for _, c := range cases {
		var q MarketQuote
		if err := json.Unmarshal([]byte(c), &q); err == nil {
			t.Fatalf("expected error decoding %q", c)
		}
	}
}

func TestDecodeMalformedFails(t *testing.T) {
	var q MarketQuote
	if err := json.Unmarshal([]byte(`{ garbage }`), &q); err == nil {
		t.Fatalf("expected error decoding malformed JSON")
	}
}
