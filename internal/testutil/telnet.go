package testutil

import (
	"bufio"
	"fmt"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"
)

// DefaultReadTimeout bounds Expect.
const DefaultReadTimeout = 3 * time.Second

// ansiPattern matches color sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// TelnetClient is a line-oriented client for driving a Telnet session in tests.
type TelnetClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      *testing.T
	// seen accumulates cleaned output not yet consumed by Expect.
	seen strings.Builder
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{conn: conn, reader: bufio.NewReader(conn), t: t}
}

// ReadUntil reads until the cleaned output contains substr. Color sequences
// and Telnet negotiation are removed from the returned text.
//
// Postcondition: Returns everything read up to and including substr, or fails on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	var (
		raw  []byte
		skip int
	)
	for {
		cleaned := c.seen.String() + ansiPattern.ReplaceAllString(string(raw), "")
		if i := strings.Index(cleaned, substr); i >= 0 {
			end := i + len(substr)
			c.seen.Reset()
			c.seen.WriteString(cleaned[end:])
			return cleaned[:end]
		}
		b, err := c.reader.ReadByte()
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, cleaned, err)
		}
		// Drop Telnet IAC WILL/WONT/DO/DONT triples.
		switch {
		case skip > 0:
			skip--
		case b == 0xff:
			skip = 2
		default:
			raw = append(raw, b)
		}
	}
}

// Expect is ReadUntil with DefaultReadTimeout.
func (c *TelnetClient) Expect(substr string) string {
	c.t.Helper()
	return c.ReadUntil(substr, DefaultReadTimeout)
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
