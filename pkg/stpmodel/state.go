// Package stpmodel holds the per-instance data model (§3/§4.5,
// component C5): BridgeInfo, PortVector, Instance, and the process-wide
// Global the scheduler and state machine share. Every mutator that
// changes an observable field sets the matching dirty bit; the downstream
// sync pass (pkg/publish) clears bits only after a successful publish.
package stpmodel

import "github.com/vswcore/pvstd/pkg/ids"

// PortState is one of the 802.1D forwarding states.
type PortState int

const (
	Disabled PortState = iota
	Blocking
	Listening
	Learning
	Forwarding
)

func (s PortState) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Blocking:
		return "blocking"
	case Listening:
		return "listening"
	case Learning:
		return "learning"
	case Forwarding:
		return "forwarding"
	default:
		return "unknown"
	}
}

// KernelState collapses the five protocol states into the two states the
// downstream kernel bridge cares about (§4.10).
type KernelState int

const (
	KernelBlocking KernelState = iota
	KernelForward
)

// InstanceState is the lifecycle state of a per-VLAN instance.
type InstanceState int

const (
	Free InstanceState = iota
	Config
	Active
)

func (s InstanceState) String() string {
	switch s {
	case Free:
		return "free"
	case Config:
		return "config"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// ProtoMode selects whether the bridge tags outbound frames PVST+ or runs
// a single plain 802.1D instance.
type ProtoMode int

const (
	ProtoNone ProtoMode = iota
	ProtoPVST
)

// InvalidPort is the rootPort sentinel meaning "this bridge is the root".
const InvalidPort = ids.BadPortId
