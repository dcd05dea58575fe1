package stpmodel

import (
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/sttimer"
)

// PortVector is the per-instance, per-port state (§3).
type PortVector struct {
	PortID   ids.PortId
	State    PortState
	PathCost uint32
	// Priority is this port's own configured port-priority (top nibble
	// significant, §6.1's VlanPortConfig/PortConfig "priority"),
	// used to build this port's half of a PortIdentifier when it becomes
	// designated. Defaults to 0x80.
	Priority uint8

	DesignatedRoot   ids.BridgeIdentifier
	DesignatedCost   uint32
	DesignatedBridge ids.BridgeIdentifier
	DesignatedPort   ids.PortIdentifier

	// MsgMaxAge/MsgHelloTime/MsgForwardDelay cache the timer fields of
	// the last Config BPDU this port's stored info came from, so
	// configuration update can propagate them to BridgeInfo without
	// re-touching the original message (§4.6.4's "copy the
	// root's maxAge/helloTime/forwardDelay").
	MsgMaxAge       uint8
	MsgHelloTime    uint8
	MsgForwardDelay uint8

	MessageAgeTimer  sttimer.Timer
	ForwardDelayTimer sttimer.Timer
	HoldTimer        sttimer.Timer
	RootProtectTimer sttimer.Timer

	ForwardTransitions uint32

	RxConfigBpdu uint32
	TxConfigBpdu uint32
	RxTcnBpdu    uint32
	TxTcnBpdu    uint32
	RxDelayedBpdu uint32
	RxDropBpdu   uint32

	TopologyChangeAcknowledge bool
	ConfigPending             bool
	ChangeDetectionEnabled    bool
	SelfLoop                  bool
	AutoConfig                bool
	OperEdge                  bool

	KernelState KernelState

	PriorityOverridden bool
	PathCostOverridden bool

	ModifiedFields PortVectorField
}

func (p *PortVector) mark(f PortVectorField) { p.ModifiedFields |= f }

// SetState transitions the port's forwarding state, updating the derived
// kernel state and forward-transition counter, and marks dirty only on an
// actual change.
func (p *PortVector) SetState(s PortState) {
	if p.State == s {
		return
	}
	p.State = s
	if s == Forwarding {
		p.ForwardTransitions++
		p.mark(PVForwardTransitions)
	}
	ks := KernelBlocking
	if s == Forwarding {
		ks = KernelForward
	}
	if p.KernelState != ks {
		p.KernelState = ks
		p.mark(PVKernelState)
	}
	p.mark(PVState)
}

// BecomeDesignated implements 802.1D §4.6.2: set designatedRoot/Cost/
// Bridge/Port from the instance's current bridge info.
func (p *PortVector) BecomeDesignated(rootID ids.BridgeIdentifier, rootPathCost uint32, bridgeID ids.BridgeIdentifier) {
	p.DesignatedRoot = rootID
	p.DesignatedCost = rootPathCost
	p.DesignatedBridge = bridgeID
	p.DesignatedPort = ids.PortIdentifier{Priority: p.Priority >> 4, Number: uint16(p.PortID)}
	p.mark(PVDesignatedRoot | PVDesignatedCost | PVDesignatedBridge | PVDesignatedPort)
}

// DesignatedTuple is the comparison key used by Supersedes (802.1D
// §4.6.3): (designatedRoot, designatedCost, designatedBridge,
// designatedPort), all under the bridge/port orderings of §3.
type DesignatedTuple struct {
	Root   ids.BridgeIdentifier
	Cost   uint32
	Bridge ids.BridgeIdentifier
	Port   ids.PortIdentifier
}

// Tuple returns the port's current stored designated-info key.
func (p *PortVector) Tuple() DesignatedTuple {
	return DesignatedTuple{p.DesignatedRoot, p.DesignatedCost, p.DesignatedBridge, p.DesignatedPort}
}

// Supersedes reports whether message m is strictly better than the stored
// designated info on this port, under lexicographic order
// (root, cost, bridge, port) (§4.6.3, supercedes_port_info).
func (p *PortVector) Supersedes(m DesignatedTuple, extend bool) bool {
	stored := p.Tuple()
	if !m.Root.Equal(stored.Root, extend) {
		return m.Root.Less(stored.Root, extend)
	}
	if m.Cost != stored.Cost {
		return m.Cost < stored.Cost
	}
	if !m.Bridge.Equal(stored.Bridge, extend) {
		return m.Bridge.Less(stored.Bridge, extend)
	}
	return m.Port.Less(stored.Port)
}

// SetTopologyChangeAcknowledge sets the TCA flag, marking dirty on change.
func (p *PortVector) SetTopologyChangeAcknowledge(v bool) {
	if p.TopologyChangeAcknowledge == v {
		return
	}
	p.TopologyChangeAcknowledge = v
	p.mark(PVTopologyChangeAck)
}

// SetConfigPending sets whether a Config BPDU is deferred behind the hold
// timer on this port.
func (p *PortVector) SetConfigPending(v bool) {
	if p.ConfigPending == v {
		return
	}
	p.ConfigPending = v
	p.mark(PVConfigPending)
}
