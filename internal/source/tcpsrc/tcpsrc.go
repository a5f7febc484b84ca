// Package tcpsrc implements the TCP source connector: one accepted
// connection, read in newline-delimited records by a per-connection read
// loop. Batching is done by the source worker (source.Worker), not here.
package tcpsrc

import (
	"bufio"
	"context"
	"net"

	"github.com/sirupsen/logrus"

	"wparse/internal/source"
)

// Connector reads newline-delimited records from one accepted TCP
// connection.
type Connector struct {
	conn    net.Conn
	scanner *bufio.Scanner
	logger  *logrus.Entry
}

// Listener accepts connections and hands each one a new Connector via New.
type Listener struct {
	ln net.Listener
}

func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln}, nil
}

// Accept blocks for the next connection and wraps it as a Connector.
func (l *Listener) Accept() (*Connector, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

func (l *Listener) Close() error { return l.ln.Close() }

// New wraps an already-accepted connection.
func New(conn net.Conn) *Connector {
	return &Connector{
		conn:    conn,
		scanner: bufio.NewScanner(conn),
		logger:  logrus.WithFields(logrus.Fields{"component": "source.tcpsrc", "remote": conn.RemoteAddr().String()}),
	}
}

// Pull implements source.Connector.
func (c *Connector) Pull(ctx context.Context) (source.RawRecord, bool, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return source.RawRecord{}, false, err
		}
		return source.RawRecord{}, false, nil
	}
	line := c.scanner.Text()
	return source.RawRecord{Str: line}, true, nil
}

func (c *Connector) Close() error {
	return c.conn.Close()
}
