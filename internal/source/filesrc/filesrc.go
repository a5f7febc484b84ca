// Package filesrc implements the file source connector: tailing one or more
// log files, picking up new/rotated files via a directory watch.
package filesrc

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/nxadm/tail"
	"github.com/sirupsen/logrus"

	"wparse/internal/source"
)

// Connector tails Path (and, if Watch is set, any new file created in its
// directory matching Glob) and surfaces each line as a RawRecord.
type Connector struct {
	path    string
	glob    string
	watch   bool
	lines   chan string
	tails   []*tail.Tail
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	logger  *logrus.Entry
}

// New builds a file connector tailing path from the start of the file and
// following lines appended after that.
func New(path string, watchDir bool, glob string) (*Connector, error) {
	c := &Connector{
		path:   path,
		glob:   glob,
		watch:  watchDir,
		lines:  make(chan string, source.TCPReaderBatchCapacity),
		logger: logrus.WithFields(logrus.Fields{"component": "source.filesrc", "path": path}),
	}
	if err := c.addFile(path); err != nil {
		return nil, err
	}
	if watchDir {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		if err := w.Add(filepath.Dir(path)); err != nil {
			w.Close()
			return nil, err
		}
		c.watcher = w
		go c.watchLoop()
	}
	return c, nil
}

func (c *Connector) addFile(path string) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      true,
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.tails = append(c.tails, t)
	c.mu.Unlock()
	go func() {
		for line := range t.Lines {
			if line.Err != nil {
				c.logger.WithError(line.Err).Warn("tail line error")
				continue
			}
			c.lines <- line.Text
		}
	}()
	return nil
}

func (c *Connector) watchLoop() {
	for ev := range c.watcher.Events {
		if ev.Op&fsnotify.Create != 0 {
			matched, _ := filepath.Match(c.glob, filepath.Base(ev.Name))
			if matched {
				if err := c.addFile(ev.Name); err != nil {
					c.logger.WithError(err).Warn("failed to tail new file")
				}
			}
		}
	}
}

// Pull implements source.Connector.
func (c *Connector) Pull(ctx context.Context) (source.RawRecord, bool, error) {
	select {
	case line, ok := <-c.lines:
		if !ok {
			return source.RawRecord{}, false, nil
		}
		return source.RawRecord{Str: line}, true, nil
	default:
		return source.RawRecord{}, false, nil
	}
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tails {
		_ = t.Stop()
	}
	if c.watcher != nil {
		_ = c.watcher.Close()
	}
	return nil
}
