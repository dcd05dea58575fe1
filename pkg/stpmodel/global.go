package stpmodel

import (
	"github.com/vswcore/pvstd/pkg/bitmap"
	"github.com/vswcore/pvstd/pkg/bpdu"
	"github.com/vswcore/pvstd/pkg/ids"
)

// Global is the process-wide state the scheduler and state machine share
// (§3's "Global"). It is an explicit handle passed to every
// operation rather than a package-level singleton, per §9: only
// the event-loop goroutine ever touches it, so no synchronization is
// needed, but nothing here is a hidden global.
type Global struct {
	MaxInstances    int
	ActiveInstances int

	instances    []*Instance          // dense by InstanceIndex
	byVlan       map[ids.VlanId]ids.InstanceIndex
	freeList     []ids.InstanceIndex

	MaxPorts int

	EnableMask          *bitmap.Bitmap // ports enabled somewhere, union across instances
	EnableConfigMask    *bitmap.Bitmap // ports administratively enabled (config, independent of link)
	FastspanMask        *bitmap.Bitmap // PortFast active bit
	FastspanConfigMask  *bitmap.Bitmap // PortFast configured bit
	FastuplinkMask      *bitmap.Bitmap
	ProtectMask         *bitmap.Bitmap // bpdu-guard configured
	ProtectDoDisableMask *bitmap.Bitmap // bpdu-guard do-disable configured
	ProtectDisabledMask *bitmap.Bitmap // bpdu-guard has shut the port down
	RootProtectMask     *bitmap.Bitmap // root-guard configured (per-port)

	RootProtectTimeout uint32 // seconds, global (§9(c))

	ProtoMode      ProtoMode
	BaseMacAddress [6]byte
	ExtendMode     bool

	Templates BPDUTemplates

	DropSTP  uint64
	DropTCN  uint64
	DropPVST uint64
}

// BPDUTemplates holds preformed frame skeletons. The state machine does
// not read them: each transmitted BPDU is built from the instance's
// BridgeInfo at send time.
type BPDUTemplates struct {
	STPConfig  bpdu.ConfigBPDU
	PVSTConfig bpdu.ConfigBPDU
}

// NewGlobal allocates a Global with maxInstances instance slots (all
// Free/unallocated) and maxPorts-wide masks (§5's "allocated once
// at init; runtime growth not supported").
func NewGlobal(maxInstances, maxPorts int) *Global {
	g := &Global{
		MaxInstances:         maxInstances,
		MaxPorts:             maxPorts,
		instances:            make([]*Instance, maxInstances),
		byVlan:               make(map[ids.VlanId]ids.InstanceIndex),
		EnableMask:           bitmap.New(maxPorts),
		EnableConfigMask:     bitmap.New(maxPorts),
		FastspanMask:         bitmap.New(maxPorts),
		FastspanConfigMask:   bitmap.New(maxPorts),
		FastuplinkMask:       bitmap.New(maxPorts),
		ProtectMask:          bitmap.New(maxPorts),
		ProtectDoDisableMask: bitmap.New(maxPorts),
		ProtectDisabledMask:  bitmap.New(maxPorts),
		RootProtectMask:      bitmap.New(maxPorts),
		RootProtectTimeout:   30,
	}
	for i := maxInstances - 1; i >= 0; i-- {
		g.freeList = append(g.freeList, ids.InstanceIndex(i))
	}
	return g
}

// AllocateInstance creates a Free instance for vlan and returns its dense
// index, or ErrInstanceArrayFull if the instance array is full, or the
// existing index if the VLAN already has one (§8 idempotence:
// "applying the same VlanConfig twice is a no-op").
func (g *Global) AllocateInstance(vlan ids.VlanId) (ids.InstanceIndex, error) {
	if idx, ok := g.byVlan[vlan]; ok {
		return idx, nil
	}
	if len(g.freeList) == 0 {
		return ids.InvalidInstance, ErrInstanceArrayFull
	}
	idx := g.freeList[len(g.freeList)-1]
	g.freeList = g.freeList[:len(g.freeList)-1]
	g.instances[idx] = NewInstance(vlan, g.MaxPorts)
	g.byVlan[vlan] = idx
	return idx, nil
}

// Instance returns the instance at idx, or nil if the slot is free.
func (g *Global) Instance(idx ids.InstanceIndex) *Instance {
	if int(idx) < 0 || int(idx) >= len(g.instances) {
		return nil
	}
	return g.instances[idx]
}

// InstanceByVlan resolves a VLAN to its instance index.
func (g *Global) InstanceByVlan(vlan ids.VlanId) (ids.InstanceIndex, bool) {
	idx, ok := g.byVlan[vlan]
	return idx, ok
}

// FreeInstance destroys the instance's slot, returning it to the free
// list (§3's instance lifecycle: "destroyed on VLAN config delete").
func (g *Global) FreeInstance(idx ids.InstanceIndex) {
	if int(idx) < 0 || int(idx) >= len(g.instances) || g.instances[idx] == nil {
		return
	}
	vlan := g.instances[idx].VlanID
	delete(g.byVlan, vlan)
	g.instances[idx] = nil
	g.freeList = append(g.freeList, idx)
	g.ActiveInstances--
	if g.ActiveInstances < 0 {
		g.ActiveInstances = 0
	}
}

// InstanceEntry pairs a dense index with its instance, for iteration in
// index order.
type InstanceEntry struct {
	Index ids.InstanceIndex
	Inst  *Instance
}

// Instances returns every allocated instance, in ascending index order —
// the order §4.6.11's round-robin groups are computed over.
func (g *Global) Instances() []InstanceEntry {
	out := make([]InstanceEntry, 0, len(g.instances))
	for i, inst := range g.instances {
		if inst != nil {
			out = append(out, InstanceEntry{ids.InstanceIndex(i), inst})
		}
	}
	return out
}
