package actor

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

type stubTask struct {
	seen chan Command
}

func (s *stubTask) Run(cmds <-chan Command) {
	for cmd := range cmds {
		s.seen <- cmd
		if cmd == Stop {
			return
		}
	}
}

func TestTaskGroupBroadcastDeliversToAllSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("github.com/sirupsen/logrus.(*Entry).log"),
	)

	tg := NewTaskGroup("workers")
	a := &stubTask{seen: make(chan Command, 4)}
	b := &stubTask{seen: make(chan Command, 4)}
	tg.Spawn(a)
	tg.Spawn(b)

	tg.Broadcast(Start)
	tg.Broadcast(Stop)
	tg.Wait()

	if got := <-a.seen; got != Start {
		t.Fatalf("task a: expected Start, got %v", got)
	}
	if got := <-a.seen; got != Stop {
		t.Fatalf("task a: expected Stop, got %v", got)
	}
	if got := <-b.seen; got != Start {
		t.Fatalf("task b: expected Start, got %v", got)
	}
	if got := <-b.seen; got != Stop {
		t.Fatalf("task b: expected Stop, got %v", got)
	}
}

func TestTaskManagerShutdownOrdersSourcesParsersSinks(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("github.com/sirupsen/logrus.(*Entry).log"),
	)

	m := NewTaskManager()
	order := make(chan string, 3)

	m.Sources.Spawn(orderTrackingTask{name: "source", order: order, stopOn: Stop})
	m.Parsers.Spawn(orderTrackingTask{name: "parser", order: order, stopOn: Drain})
	m.Sinks.Spawn(orderTrackingTask{name: "sink", order: order, stopOn: Drain})

	m.Shutdown()

	first := <-order
	if first != "source" {
		t.Fatalf("expected sources to stop first, got %q", first)
	}
	if second := <-order; second != "parser" {
		t.Fatalf("expected parsers to drain second, got %q", second)
	}
	if third := <-order; third != "sink" {
		t.Fatalf("expected sinks to drain last, got %q", third)
	}
}

type orderTrackingTask struct {
	name   string
	order  chan string
	stopOn Command
}

func (o orderTrackingTask) Run(cmds <-chan Command) {
	for cmd := range cmds {
		if cmd == o.stopOn {
			o.order <- o.name
			return
		}
	}
}

func TestIdleTickAndCmdPollTimeoutConstants(t *testing.T) {
	if IdleTick() != 50*time.Millisecond {
		t.Fatalf("expected IdleTick=50ms, got %v", IdleTick())
	}
	if CmdPollTimeout() != 10*time.Millisecond {
		t.Fatalf("expected CmdPollTimeout=10ms, got %v", CmdPollTimeout())
	}
}
