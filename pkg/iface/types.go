package iface

import "github.com/vswcore/pvstd/pkg/ids"

// OperState mirrors the kernel's notion of link carrier state.
type OperState int

const (
	OperDown OperState = iota
	OperUp
)

// Kind distinguishes a physical Ethernet port from a link-aggregation
// group (LAG) port id.
type Kind int

const (
	KindEthernet Kind = iota
	KindLAG
)

// Record is one entry of the interface table (§3's PortRecord).
// RXSocket/event registration (the packet-socket handle) are represented
// here only as an opaque slot (RXHandle) — the concrete socket lives in
// pkg/rawsock and is plugged in by the scheduler at registration time, so
// this package stays free of any syscall dependency.
type Record struct {
	Name            string
	Kind            Kind
	KernelIndex     int
	LocalPortID     ids.PortId
	MAC             [6]byte
	Speed           Speed
	OperState       OperState
	Valid           bool
	MemberPortCount int    // LAGs only
	MasterIfindex   int    // Ethernet members only; 0 if not a member
	Priority        uint8  // STP port priority, top nibble
	PathCost        int    // STP path cost, 0 means "not yet derived"
	PriorityOverridden bool
	PathCostOverridden bool
	RXHandle        interface{} // opaque; owned by the raw-socket layer
}

// LinkEvent is the payload of the link-event capability (§6.3).
type LinkEvent struct {
	Name          string
	KernelIndex   int
	MAC           [6]byte
	Speed         Speed
	OperState     OperState
	MasterIfindex int
	IsBond        bool
	IsMember      bool
}
