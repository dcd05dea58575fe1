// Package netwatch produces the link-event stream §6.3 feeds into
// pkg/iface, translating netlink.LinkUpdate notifications into
// iface.LinkEvent values via the standard vishvananda/netlink
// subscription style.
package netwatch

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
	"github.com/vswcore/pvstd/pkg/iface"
	"golang.org/x/sys/unix"
)

// Watcher subscribes to kernel link notifications and hands translated
// events to a callback. It owns no STP state of its own.
type Watcher struct {
	BondMaster func(masterIndex int) (isBond bool, ok bool)

	updates chan netlink.LinkUpdate
	done    chan struct{}
}

// New builds a Watcher. bondMaster resolves a link's master ifindex to
// whether that master is a bonding (LAG) device, so member-join/leave
// events can be distinguished from ordinary Ethernet updates.
func New(bondMaster func(masterIndex int) (isBond bool, ok bool)) *Watcher {
	return &Watcher{BondMaster: bondMaster, done: make(chan struct{})}
}

// Run subscribes to netlink link updates and calls handle for each one
// until Close is called or the subscription errors out. It blocks, so
// callers run it in its own goroutine and feed iface.Table.OnLinkEvent
// from the scheduler's single event-loop goroutine via a channel rather
// than calling handle directly from here.
func (w *Watcher) Run(handle func(ev iface.LinkEvent, isAdd bool)) error {
	w.updates = make(chan netlink.LinkUpdate)
	if err := netlink.LinkSubscribe(w.updates, w.done); err != nil {
		return fmt.Errorf("subscribe to link updates: %w", err)
	}
	for {
		select {
		case <-w.done:
			return nil
		case upd, ok := <-w.updates:
			if !ok {
				return nil
			}
			ev, isAdd := w.translate(upd)
			handle(ev, isAdd)
		}
	}
}

// Close stops the subscription.
func (w *Watcher) Close() {
	close(w.done)
}

func (w *Watcher) translate(upd netlink.LinkUpdate) (iface.LinkEvent, bool) {
	attrs := upd.Link.Attrs()
	ev := iface.LinkEvent{
		Name:        attrs.Name,
		KernelIndex: attrs.Index,
		Speed:       iface.SpeedUnknown,
		OperState:   operState(attrs.Flags),
	}
	if mac := attrs.HardwareAddr; len(mac) == 6 {
		copy(ev.MAC[:], mac)
	}

	_, isBond := upd.Link.(*netlink.Bond)
	ev.IsBond = isBond

	if attrs.MasterIndex != 0 {
		if isBondMaster, ok := w.BondMaster(attrs.MasterIndex); ok && isBondMaster {
			ev.IsMember = true
			ev.MasterIfindex = attrs.MasterIndex
		}
	}

	isAdd := upd.Header.Type != unix.RTM_DELLINK
	return ev, isAdd
}

func operState(flags net.Flags) iface.OperState {
	if flags&net.FlagUp != 0 {
		return iface.OperUp
	}
	return iface.OperDown
}
