package quote

import (
	"encoding/json"

	"quotefeed/internal/exception"
)

// wireQuote is the on-wire JSON shape: exactly instrument, bid, ask,
// timestamp_ns, matching the schema in spec section 6.
type wireQuote struct {
	Instrument  string  `json:"instrument"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	TimestampNS int64   `json:"timestamp_ns"`
}

// MarshalJSON encodes q as a single JSON object with exactly the keys
// instrument, bid, ask and timestamp_ns.
func (q MarketQuote) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireQuote{
		Instrument:  q.Instrument(),
		Bid:         q.Bid,
		Ask:         q.Ask,
		TimestampNS: q.TimestampNS,
	})
}

// UnmarshalJSON decodes a JSON object with keys instrument, bid, ask and
// timestamp_ns into q. It fails if any key is missing or holds a value of
// the wrong JSON type; an overlong instrument is truncated identically to
// the constructor. On failure q is left unmodified.
func (q *MarketQuote) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var w wireQuote
	instrumentRaw, ok := raw["instrument"]
	if !ok {
		return exception.NewMissingField("instrument")
	}
	if err := json.Unmarshal(instrumentRaw, &w.Instrument); err != nil {
		return err
	}

	bidRaw, ok := raw["bid"]
	if !ok {
		return exception.NewMissingField("bid")
	}
	if err := json.Unmarshal(bidRaw, &w.Bid); err != nil {
		return err
	}

	askRaw, ok := raw["ask"]
	if !ok {
		return exception.NewMissingField("ask")
	}
	if err := json.Unmarshal(askRaw, &w.Ask); err != nil {
		return err
	}

	tsRaw, ok := raw["timestamp_ns"]
	if !ok {
		return exception.NewMissingField("timestamp_ns")
	}
	if err := json.Unmarshal(tsRaw, &w.TimestampNS); err != nil {
		return err
	}

	q.SetInstrument(w.Instrument)
	q.Bid = w.Bid
	q.Ask = w.Ask
	q.TimestampNS = w.TimestampNS
	return nil
}
