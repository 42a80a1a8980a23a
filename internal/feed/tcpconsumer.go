package feed

import (
	stderrors "errors"
	"net"
	"time"

	"github.com/yanun0323/errors"

	"quotefeed/internal/clock"
	"quotefeed/internal/config"
	"quotefeed/internal/obs"
	"quotefeed/internal/quote"
	"quotefeed/internal/wire"
)

// TcpConsumer connects to a Publisher's listening endpoint and decodes the
// newline-delimited JSON quote stream. Unlike ShmConsumer it shares no
// memory with the publisher: every record crosses the wire.
type TcpConsumer struct {
	conn    net.Conn
	reader  *wire.Reader
	clock   *clock.Cached
	metrics *obs.Metrics
}

// DialTcpConsumer connects to addr and prepares to read the quote stream.
// The connection starts delivering records from whatever point the
// publisher is at; there is no replay of earlier records.
func DialTcpConsumer(addr string, cfg config.Loaded, metrics *obs.Metrics) (*TcpConsumer, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "dial publisher")
	}
	return &TcpConsumer{
		conn:    conn,
		reader:  wire.NewReader(conn),
		clock:   clock.New(cfg.ClockInterval),
		metrics: metrics,
	}, nil
}

// Run reads records until stop is closed or the connection ends, calling
// handle for each successfully decoded record. A malformed line is
// counted and skipped without tearing down the connection; a terminal
// read error (peer closed, reset) ends the loop.
func (c *TcpConsumer) Run(stop <-chan struct{}, handle Handler) error {
	type result struct {
		q   quote.MarketQuote
		err error
	}
	next := make(chan result, 1)

	go func() {
		for {
			q, err := c.reader.Next()
			next <- result{q, err}
			if err != nil {
				var malformed *wire.MalformedError
				if stderrors.As(err, &malformed) {
					continue
				}
				return
			}
		}
	}()

	for {
		select {
		case <-stop:
			return nil
		case r := <-next:
			if r.err != nil {
				var malformed *wire.MalformedError
				if stderrors.As(r.err, &malformed) {
					c.metrics.IncMalformed()
					continue
				}
				return r.err
			}
			latency := time.Duration(c.clock.Now() - r.q.TimestampNS)
			c.metrics.ObserveTcpLatency(latency)
			if handle != nil {
				handle(r.q, latency)
			}
		}
	}
}

// Close releases the clock worker and closes the underlying connection.
func (c *TcpConsumer) Close() error {
	c.clock.Close()
	return c.conn.Close()
}
