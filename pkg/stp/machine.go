package stp

import (
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// TxFunc is the outbound capability the scheduler's packet plumbing
// provides (§6.2's tx): transmit an already-encoded frame.
type TxFunc func(port ids.PortId, vlan ids.VlanId, frame []byte, tagged bool)

// AdminDownFunc is the downstream capability for BPDU-Guard do-disable
// (§6.4's adminDownPort).
type AdminDownFunc func(portName string, physical bool)

// RootIncFunc is invoked whenever root-guard blocks a port, so the
// scheduler can publish the "root-inc" consistency state (§4.6.6).
type RootIncFunc func(inst *stpmodel.Instance, port ids.PortId)

// PortNameFunc resolves a port id to its interface-table name, needed for
// the adminDown/tagged-vs-untagged transmit decisions.
type PortNameFunc func(port ids.PortId) (name string, tagged bool, ok bool)

// Machine is the state machine's runtime handle: the Global it mutates
// plus the external capabilities §6 names. It holds no threading
// primitives — §5 makes it an invariant that only the event-loop
// goroutine ever calls into it.
type Machine struct {
	Global *stpmodel.Global

	Tx         TxFunc
	AdminDown  AdminDownFunc
	OnRootInc  RootIncFunc
	PortName   PortNameFunc

	// Seconds is the wall-clock second counter, advanced by the
	// scheduler once every ten ticks (802.1D uses now_seconds() for
	// rx-delay diagnostics and topology-change bookkeeping, not for
	// timer expiry itself).
	Seconds uint32
}

// NewMachine builds a Machine over an already-allocated Global.
func NewMachine(g *stpmodel.Global, tx TxFunc, adminDown AdminDownFunc, onRootInc RootIncFunc, portName PortNameFunc) *Machine {
	return &Machine{Global: g, Tx: tx, AdminDown: adminDown, OnRootInc: onRootInc, PortName: portName}
}
