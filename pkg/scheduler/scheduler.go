// Package scheduler implements the single-threaded cooperative event loop
// of §4.8 (component C8): a 100ms tick drained at high priority,
// and a low-priority queue multiplexing packet RX, link events, and IPC,
// serviced up to 5 callbacks per cycle under a 50ms soft budget.
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/publish"
	"github.com/vswcore/pvstd/pkg/stp"
)

// RxEvent is a received frame awaiting STP/PVST+ dispatch.
type RxEvent struct {
	Port  ids.PortId
	Vlan  ids.VlanId
	Frame []byte
}

// lowPriorityBudget bounds how much of a single dispatch cycle the low
// queue may consume before yielding back to the next tick check
// (§4.8's "50ms soft budget").
const lowPriorityBudget = 50 * time.Millisecond

// maxLowPriorityPerCycle caps how many low-priority callbacks run per
// cycle even if the time budget hasn't been exhausted.
const maxLowPriorityPerCycle = 5

// Scheduler owns the event loop. Every channel here is fed by its own
// non-blocking producer (pkg/rawsock, pkg/netwatch, the IPC listener);
// the loop itself never blocks on a socket read directly.
type Scheduler struct {
	Machine *stp.Machine
	Sync    *publish.Syncer

	RxCh   chan RxEvent
	LinkCh chan func()
	IPCCh  chan func()

	OnTick func(tickCounter uint64, secondsElapsed bool)

	tickInterval time.Duration
	log          *logrus.Entry
}

// New builds a Scheduler. Channels are created with a modest buffer so a
// burst on one source doesn't block its producer goroutine; the 50ms
// budget below is what keeps the consumer side fair.
func New(m *stp.Machine, log *logrus.Entry) *Scheduler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{
		Machine:      m,
		RxCh:         make(chan RxEvent, 256),
		LinkCh:       make(chan func(), 64),
		IPCCh:        make(chan func(), 64),
		tickInterval: 100 * time.Millisecond,
		log:          log,
	}
}

// Run drives the loop until ctx is canceled. It is the only goroutine
// that ever touches Machine/Global/the interface table, per §5.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	var tickCounter uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.runTick(tickCounter, now)
			tickCounter++
			s.drainLowPriority()
		default:
			s.drainLowPriorityOnce()
		}
	}
}

func (s *Scheduler) runTick(tickCounter uint64, now time.Time) {
	secondsElapsed := tickCounter%10 == 0
	if s.Machine != nil {
		s.Machine.Tick(tickCounter, secondsElapsed)
		if s.Sync != nil {
			if err := s.Sync.Sync(s.Machine.Global); err != nil {
				s.log.WithError(err).Warn("publish sync failed, dirty bits retained for retry")
			}
		}
	}
	if s.OnTick != nil {
		s.OnTick(tickCounter, secondsElapsed)
	}
}

// drainLowPriority services up to maxLowPriorityPerCycle callbacks
// across RxCh/LinkCh/IPCCh, stopping early once lowPriorityBudget has
// elapsed (§4.8).
func (s *Scheduler) drainLowPriority() {
	deadline := time.Now().Add(lowPriorityBudget)
	for i := 0; i < maxLowPriorityPerCycle; i++ {
		if time.Now().After(deadline) {
			return
		}
		if !s.drainOne() {
			return
		}
	}
}

// drainLowPriorityOnce runs a single low-priority callback if one is
// pending, so idle periods between ticks still make forward progress
// instead of busy-spinning on the default case.
func (s *Scheduler) drainLowPriorityOnce() {
	if !s.drainOne() {
		time.Sleep(time.Millisecond)
	}
}

func (s *Scheduler) drainOne() bool {
	select {
	case ev := <-s.RxCh:
		if s.Machine != nil {
			s.Machine.HandleFrame(ev.Vlan, ev.Port, ev.Frame)
		}
		return true
	case fn := <-s.LinkCh:
		fn()
		return true
	case fn := <-s.IPCCh:
		fn()
		return true
	default:
		return false
	}
}
