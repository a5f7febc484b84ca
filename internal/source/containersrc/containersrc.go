// Package containersrc implements the container log source connector,
// streaming stdout/stderr from a running container via the Docker API.
package containersrc

import (
	"bufio"
	"context"
	"io"

	dockerTypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/sirupsen/logrus"

	"wparse/internal/source"
)

// Connector streams logs for one container id.
type Connector struct {
	containerID string
	cli         *client.Client
	reader      io.ReadCloser
	scanner     *bufio.Scanner
	logger      *logrus.Entry
}

// New attaches to containerID's combined stdout/stderr log stream, starting
// from "now" (historical backfill is out of scope).
func New(containerID string) (*Connector, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	rc, err := cli.ContainerLogs(ctx, containerID, dockerTypes.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       "0",
	})
	if err != nil {
		cli.Close()
		return nil, err
	}
	return &Connector{
		containerID: containerID,
		cli:         cli,
		reader:      rc,
		scanner:     bufio.NewScanner(rc),
		logger:      logrus.WithFields(logrus.Fields{"component": "source.containersrc", "container": containerID}),
	}, nil
}

// Pull implements source.Connector. Docker multiplexes stdout/stderr with an
// 8-byte frame header; this strips it when present.
func (c *Connector) Pull(ctx context.Context) (source.RawRecord, bool, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return source.RawRecord{}, false, err
		}
		return source.RawRecord{}, false, nil
	}
	line := c.scanner.Bytes()
	if len(line) >= 8 && line[0] <= 2 && line[1] == 0 && line[2] == 0 && line[3] == 0 {
		line = line[8:]
	}
	out := make([]byte, len(line))
	copy(out, line)
	return source.RawRecord{Bytes: out}, true, nil
}

func (c *Connector) Close() error {
	err := c.reader.Close()
	c.cli.Close()
	return err
}
