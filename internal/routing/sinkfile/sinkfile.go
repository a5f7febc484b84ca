// Package sinkfile implements the file-backed sink backend used for the
// business, miss, residue and error infra groups when no other connector is
// configured.
package sinkfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"wparse/internal/wpl"
)

// Sink appends every record/string as one line to an append-only file.
type Sink struct {
	path   string
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	logger *logrus.Entry
}

// New opens (creating if absent) the file at path for appending.
func New(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sinkfile: open %s: %w", path, err)
	}
	return &Sink{
		path:   path,
		file:   f,
		writer: bufio.NewWriter(f),
		logger: logrus.WithFields(logrus.Fields{"component": "routing.sinkfile", "path": path}),
	}, nil
}

func (s *Sink) SinkRecord(ctx context.Context, r *wpl.DataRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value.String()
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = s.writer.Write(b)
	return err
}

func (s *Sink) SinkRecords(ctx context.Context, rs []*wpl.DataRecord) error {
	for _, r := range rs {
		if err := s.SinkRecord(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) SinkStr(ctx context.Context, str string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.WriteString(str + "\n")
	return err
}

func (s *Sink) SinkBytes(ctx context.Context, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.Write(append(b, '\n'))
	return err
}

func (s *Sink) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		s.logger.WithError(err).Warn("flush on stop failed")
	}
	return s.file.Close()
}

func (s *Sink) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.file.Close()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	s.file = f
	s.writer = bufio.NewWriter(f)
	return nil
}
