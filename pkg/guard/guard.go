// Package guard implements the protection overlays (§4.7,
// component C7): Root Guard, BPDU Guard with optional do-disable, PortFast
// (Fast Span), and Fast Uplink. These are pure predicates and mask
// mutators over pkg/stpmodel's Global/Instance/PortVector; the state
// machine (pkg/stp) calls them at the points §4.6 names and is
// responsible for any external side effect (admin-down, publish).
package guard

import (
	"github.com/vswcore/pvstd/pkg/bitmap"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

func testBit(m *bitmap.Bitmap, i int) bool {
	v, err := m.Test(i)
	return err == nil && v
}

// IsPortFastConfigured reports whether port has PortFast/Fast Span
// configured.
func IsPortFastConfigured(g *stpmodel.Global, port ids.PortId) bool {
	return testBit(g.FastspanConfigMask, int(port))
}

// IsPortFastActive reports whether PortFast's shortcut is currently in
// effect on port (cleared on first BPDU received, re-armed on link flap).
func IsPortFastActive(g *stpmodel.Global, port ids.PortId) bool {
	return testBit(g.FastspanMask, int(port))
}

// ArmPortFast sets the active bit; called on link-up for a configured
// port.
func ArmPortFast(g *stpmodel.Global, port ids.PortId) {
	if IsPortFastConfigured(g, port) {
		g.FastspanMask.Set(int(port))
	}
}

// DisarmPortFast clears the active bit, leaving the configured bit
// untouched (§4.7: "the configured bit remains, so link flap
// re-arms it"). Reports whether the bit was actually cleared, so the
// caller only republishes state on an actual transition.
func DisarmPortFast(g *stpmodel.Global, port ids.PortId) bool {
	if !testBit(g.FastspanMask, int(port)) {
		return false
	}
	g.FastspanMask.Clear(int(port))
	return true
}

// IsFastUplinkConfigured reports whether port has Fast Uplink configured.
func IsFastUplinkConfigured(g *stpmodel.Global, port ids.PortId) bool {
	return testBit(g.FastuplinkMask, int(port))
}

// IsFastUplinkOK reports whether port is eligible for the Fast Uplink
// shortcut: no other fastuplink-configured port on the same instance is
// in a non-blocking/non-disabled state (§4.6.5, is_fastuplink_ok).
func IsFastUplinkOK(g *stpmodel.Global, inst *stpmodel.Instance, port ids.PortId) bool {
	if !IsFastUplinkConfigured(g, port) {
		return false
	}
	for _, pv := range inst.Ports() {
		if pv.PortID == port {
			continue
		}
		if !IsFastUplinkConfigured(g, pv.PortID) {
			continue
		}
		if pv.State != stpmodel.Blocking && pv.State != stpmodel.Disabled {
			return false
		}
	}
	return true
}

// IsRootGuardConfigured reports whether port has Root Guard configured.
func IsRootGuardConfigured(g *stpmodel.Global, port ids.PortId) bool {
	return testBit(g.RootProtectMask, int(port))
}

// TripRootGuard applies §4.6.6 step 2 / §4.7: move the port to
// Blocking and (re)start its root-protect timer at 0. The caller is
// responsible for publishing the "root-inc" state.
func TripRootGuard(pv *stpmodel.PortVector) {
	pv.SetState(stpmodel.Blocking)
	pv.RootProtectTimer.Start(0)
}

// RootProtectExpired reports whether port's root-protect timer has now
// reached the global rootProtectTimeout (§9(c): the timeout is
// global, not per-port) and, if so, stops it — mirroring sttimer.Expired's
// contract. Restoring the port to Forwarding on expiry is the state
// machine's job (it must also re-run configuration update).
func RootProtectExpired(g *stpmodel.Global, pv *stpmodel.PortVector) bool {
	return pv.RootProtectTimer.Expired(g.RootProtectTimeout * 10)
}

// IsBPDUGuardConfigured reports whether port has BPDU Guard configured.
func IsBPDUGuardConfigured(g *stpmodel.Global, port ids.PortId) bool {
	return testBit(g.ProtectMask, int(port))
}

// IsBPDUGuardDoDisable reports whether port's BPDU Guard has the
// do-disable sibling bit set.
func IsBPDUGuardDoDisable(g *stpmodel.Global, port ids.PortId) bool {
	return testBit(g.ProtectDoDisableMask, int(port))
}

// IsAdminDisabledByGuard reports whether BPDU Guard has already shut the
// port down.
func IsAdminDisabledByGuard(g *stpmodel.Global, port ids.PortId) bool {
	return testBit(g.ProtectDisabledMask, int(port))
}

// TripBPDUGuard marks port in protectDisabledMask (§4.6.12). The
// caller still owns invoking adminDownPort and incrementing the drop
// counter.
func TripBPDUGuard(g *stpmodel.Global, port ids.PortId) {
	g.ProtectDisabledMask.Set(int(port))
}

// ClearBPDUGuardShutdown clears the shutdown-state bit, e.g. on an
// explicit administrative re-enable.
func ClearBPDUGuardShutdown(g *stpmodel.Global, port ids.PortId) {
	g.ProtectDisabledMask.Clear(int(port))
}
