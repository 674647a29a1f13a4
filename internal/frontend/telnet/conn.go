package telnet

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, RFC 857, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
)

// MaxLineLength caps a single input line; longer input is truncated.
const MaxLineLength = 512

// Conn is a line-oriented Telnet connection. Option negotiation from the
// client is consumed and ignored.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection with Telnet protocol handling.
//
// Precondition: raw must be a valid, open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 1024),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate announces that the server suppresses go-ahead.
func (c *Conn) Negotiate() error {
	return c.write(func(w io.Writer) error {
		_, err := w.Write([]byte{IAC, WILL, OptSuppressGoAhead})
		return err
	})
}

// ReadLine reads one line of printable input. Telnet commands and control
// characters other than tab are dropped; CR, LF and CRLF all end a line.
//
// Postcondition: Returns the line without its terminator, or an error (including io.EOF).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line strings.Builder
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b < 32 && b != '\t', b == 127:
		default:
			if line.Len() < MaxLineLength {
				line.WriteByte(b)
			}
		}
	}
}

// skipCommand consumes the remainder of a command whose IAC byte was read.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		var prev byte
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

// ReadPassword reads a line while the client's local echo is switched off.
//
// Postcondition: Echo is restored whether or not the read succeeded.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.echo(WILL); err != nil {
		return "", err
	}
	line, err := c.ReadLine()
	_ = c.echo(WONT)
	_ = c.WriteLine("")
	return line, err
}

// echo sends IAC cmd ECHO. WILL hides client input, WONT shows it again.
func (c *Conn) echo(cmd byte) error {
	return c.write(func(w io.Writer) error {
		_, err := w.Write([]byte{IAC, cmd, OptEcho})
		return err
	})
}

// WriteLine sends text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.write(func(w io.Writer) error {
		_, err := io.WriteString(w, text+"\r\n")
		return err
	})
}

// Writef formats and sends a line.
func (c *Conn) Writef(format string, args ...any) error {
	return c.WriteLine(fmt.Sprintf(format, args...))
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write(func(w io.Writer) error {
		_, err := io.WriteString(w, prompt)
		return err
	})
}

// write serializes writers and applies the write deadline.
func (c *Conn) write(fn func(io.Writer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return fn(c.raw)
}

// Close closes the underlying TCP connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
