package stpmodel

import (
	"github.com/vswcore/pvstd/pkg/bitmap"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/sttimer"
)

// Instance is one per-VLAN STP instance (§3).
type Instance struct {
	VlanID ids.VlanId
	State  InstanceState

	FastAging bool

	Bridge BridgeInfo

	EnableMask  *bitmap.Bitmap // enabled ports for this instance
	ControlMask *bitmap.Bitmap // configured (member) ports
	UntagMask   *bitmap.Bitmap // ports carrying this VLAN untagged

	HelloTimer           sttimer.Timer
	TcnTimer             sttimer.Timer
	TopologyChangeTimer  sttimer.Timer

	LastExpiryTime uint32 // seconds
	LastBpduRxTime uint32 // seconds

	RxDropBpdu uint32

	ModifiedFields InstanceField

	// ports is keyed by port id; §9 prefers this over the
	// original's flat pool-array indexing.
	ports map[ids.PortId]*PortVector
}

func (i *Instance) mark(f InstanceField) { i.ModifiedFields |= f }

// NewInstance allocates an instance in state Free, with empty masks sized
// for maxPorts.
func NewInstance(vlan ids.VlanId, maxPorts int) *Instance {
	return &Instance{
		VlanID:      vlan,
		State:       Free,
		EnableMask:  bitmap.New(maxPorts),
		ControlMask: bitmap.New(maxPorts),
		UntagMask:   bitmap.New(maxPorts),
		ports:       make(map[ids.PortId]*PortVector),
	}
}

// Port returns the port vector for id, creating one in Blocking state with
// all timers stopped if it doesn't exist yet.
func (i *Instance) Port(id ids.PortId) *PortVector {
	pv, ok := i.ports[id]
	if !ok {
		pv = &PortVector{PortID: id, State: Blocking, Priority: 0x80, ChangeDetectionEnabled: true, AutoConfig: true}
		i.ports[id] = pv
	}
	return pv
}

// Ports returns every port vector ever created on this instance, in
// ascending port-id order — the ordering §4.6.11 requires for
// per-tick fairness.
func (i *Instance) Ports() []*PortVector {
	out := make([]*PortVector, 0, len(i.ports))
	for _, pv := range i.ports {
		out = append(out, pv)
	}
	sortPortVectors(out)
	return out
}

func sortPortVectors(pvs []*PortVector) {
	for a := 1; a < len(pvs); a++ {
		for b := a; b > 0 && pvs[b-1].PortID > pvs[b].PortID; b-- {
			pvs[b-1], pvs[b] = pvs[b], pvs[b-1]
		}
	}
}

// DeletePort drops a port vector entirely (used when a LAG's port id is
// released back to the pool, or an Ethernet port is removed).
func (i *Instance) DeletePort(id ids.PortId) { delete(i.ports, id) }

// RefreshLifecycle applies §3's lifecycle rule: Active iff
// enableMask is non-empty, else Config (never touches Free).
func (i *Instance) RefreshLifecycle() {
	if i.State == Free {
		return
	}
	wasActive := i.State == Active
	nowActive := !i.EnableMask.IsZero()
	if nowActive {
		i.State = Active
	} else {
		i.State = Config
	}
	if wasActive != nowActive {
		i.mark(IState)
	}
}

// SetFastAging toggles the fast-age publish flag, marking dirty on change.
func (i *Instance) SetFastAging(v bool) {
	if i.FastAging == v {
		return
	}
	i.FastAging = v
	i.mark(IFastAging)
}
