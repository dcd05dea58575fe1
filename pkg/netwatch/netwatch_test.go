package netwatch

import (
	"net"
	"testing"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/vswcore/pvstd/pkg/iface"
)

func newLinkUpdate(name string, index int, masterIndex int, flags net.Flags, msgType uint16) netlink.LinkUpdate {
	attrs := netlink.NewLinkAttrs()
	attrs.Name = name
	attrs.Index = index
	attrs.MasterIndex = masterIndex
	attrs.Flags = flags
	attrs.HardwareAddr = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

	upd := netlink.LinkUpdate{Link: &netlink.Device{LinkAttrs: attrs}}
	upd.Header.Type = msgType
	return upd
}

func TestTranslateReportsUpState(t *testing.T) {
	w := New(func(int) (bool, bool) { return false, false })
	upd := newLinkUpdate("Ethernet4", 4, 0, net.FlagUp, unix.RTM_NEWLINK)

	ev, isAdd := w.translate(upd)
	if !isAdd {
		t.Fatal("expected a NEWLINK update to be reported as an add")
	}
	if ev.OperState != iface.OperUp {
		t.Fatalf("got %v, want OperUp", ev.OperState)
	}
	if ev.Name != "Ethernet4" || ev.KernelIndex != 4 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestTranslateReportsDelAsRemoval(t *testing.T) {
	w := New(func(int) (bool, bool) { return false, false })
	upd := newLinkUpdate("Ethernet4", 4, 0, 0, unix.RTM_DELLINK)

	_, isAdd := w.translate(upd)
	if isAdd {
		t.Fatal("expected a DELLINK update to be reported as a removal")
	}
}

func TestTranslateResolvesLAGMembership(t *testing.T) {
	w := New(func(masterIndex int) (bool, bool) {
		return masterIndex == 7, true
	})
	upd := newLinkUpdate("Ethernet4", 4, 7, net.FlagUp, unix.RTM_NEWLINK)

	ev, _ := w.translate(upd)
	if !ev.IsMember || ev.MasterIfindex != 7 {
		t.Fatalf("expected LAG membership resolved, got %+v", ev)
	}
}

func TestTranslateIgnoresUnresolvedMaster(t *testing.T) {
	w := New(func(int) (bool, bool) { return false, false })
	upd := newLinkUpdate("Ethernet4", 4, 7, net.FlagUp, unix.RTM_NEWLINK)

	ev, _ := w.translate(upd)
	if ev.IsMember {
		t.Fatal("expected no membership when the master can't be resolved")
	}
}
