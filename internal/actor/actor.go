// Package actor implements the shared runtime scaffolding for sources,
// parsers and sinks: a broadcast command channel, ordered teardown, and the
// Ready/Freezing status recorded by sink instance tasks.
package actor

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Timing constants shared by every actor's control loop.
const (
	IdleTickMS      = 50
	CmdPollTimeoutMS = 10
)

func IdleTick() time.Duration      { return IdleTickMS * time.Millisecond }
func CmdPollTimeout() time.Duration { return CmdPollTimeoutMS * time.Millisecond }

// Command is a lifecycle directive broadcast to every actor in a group.
type Command int

const (
	Start Command = iota
	Drain
	Stop
	Reconnect
)

func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case Drain:
		return "drain"
	case Stop:
		return "stop"
	case Reconnect:
		return "reconnect"
	default:
		return "unknown"
	}
}

// Status is a sink instance task's state: Ready while it runs normally,
// Freezing once it has received Drain. Enqueueing onto a sink instance does
// not consult it, so a Freezing instance still accepts and delivers records.
type Status int32

const (
	Ready Status = iota
	Freezing
)

func (s Status) IsReady() bool    { return s == Ready }
func (s Status) IsFreezing() bool { return s == Freezing }

// Task is anything a TaskGroup can supervise: it must observe its command
// channel between units of work and return once Stop is processed.
type Task interface {
	Run(cmds <-chan Command)
}

// TaskGroup holds a set of spawned tasks sharing one broadcast command
// channel. Each subscriber gets its own bounded queue so a slow task is
// dropped from the broadcast rather than stalling the broadcaster.
type TaskGroup struct {
	name        string
	mu          sync.Mutex
	subscribers []chan Command
	wg          sync.WaitGroup
}

func NewTaskGroup(name string) *TaskGroup {
	return &TaskGroup{name: name}
}

// Spawn starts task in its own goroutine with a dedicated command channel.
func (g *TaskGroup) Spawn(task Task) {
	ch := make(chan Command, 4)
	g.mu.Lock()
	g.subscribers = append(g.subscribers, ch)
	g.mu.Unlock()
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		task.Run(ch)
	}()
}

// Broadcast sends cmd to every subscriber; a full subscriber queue is
// skipped and logged rather than blocking the broadcaster.
func (g *TaskGroup) Broadcast(cmd Command) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ch := range g.subscribers {
		select {
		case ch <- cmd:
		default:
			logrus.WithFields(logrus.Fields{"component": "actor.group", "group": g.name, "command": cmd.String()}).
				Warn("subscriber command queue full; command dropped")
		}
	}
}

// Wait blocks until every spawned task has returned.
func (g *TaskGroup) Wait() { g.wg.Wait() }

// TaskManager supervises the ordered groups of a running pipeline and
// performs ordered teardown: stop sources, drain parsers, drain sinks, stop
// sinks.
type TaskManager struct {
	Sources *TaskGroup
	Parsers *TaskGroup
	Sinks   *TaskGroup
}

func NewTaskManager() *TaskManager {
	return &TaskManager{
		Sources: NewTaskGroup("sources"),
		Parsers: NewTaskGroup("parsers"),
		Sinks:   NewTaskGroup("sinks"),
	}
}

func (m *TaskManager) StartAll() {
	m.Sources.Broadcast(Start)
	m.Parsers.Broadcast(Start)
	m.Sinks.Broadcast(Start)
}

// Shutdown performs the ordered teardown: sources stop first so no new
// records enter the pipeline, then parsers and sinks drain in turn.
func (m *TaskManager) Shutdown() {
	m.Sources.Broadcast(Stop)
	m.Sources.Wait()
	m.Parsers.Broadcast(Drain)
	m.Parsers.Wait()
	m.Sinks.Broadcast(Drain)
	m.Sinks.Broadcast(Stop)
	m.Sinks.Wait()
}
