package stp

import (
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// InitInstance applies §4.6.1 on instance enable: establish the
// bridge identity, bridge-default timer values, and make this bridge its
// own root. Called by EnableInstance each time the instance becomes Active.
// A port vector is created for every port in the instance's enable mask.
func (m *Machine) InitInstance(inst *stpmodel.Instance) {
	b := &inst.Bridge
	b.BridgeID.Priority = 0x8
	if m.Global.ExtendMode {
		b.BridgeID.SystemID = uint16(inst.VlanID)
	} else {
		b.BridgeID.SystemID = 0
	}
	b.BridgeID.MAC = m.Global.BaseMacAddress

	b.BridgeMaxAge = 20
	b.BridgeHelloTime = 2
	b.BridgeForwardDelay = 15
	b.HoldTime = 1

	b.SetRoot()

	inst.HelloTimer.Start(0)
	inst.TcnTimer.Stop()
	inst.TopologyChangeTimer.Stop()

	for p := inst.EnableMask.FirstSet(); p >= 0; p = inst.EnableMask.NextSet(p) {
		inst.Port(ids.PortId(p))
	}
	for _, pv := range inst.Ports() {
		m.InitPort(inst, pv)
	}
	b.ModifiedFields = stpmodel.BIAll
}

// InitPort applies the per-port half of §4.6.1: become designated,
// Blocking, all timers stopped, change detection armed.
func (m *Machine) InitPort(inst *stpmodel.Instance, pv *stpmodel.PortVector) {
	m.becomeDesignated(inst, pv)
	pv.State = stpmodel.Blocking
	pv.MessageAgeTimer.Stop()
	pv.ForwardDelayTimer.Stop()
	pv.HoldTimer.Stop()
	pv.RootProtectTimer.Stop()
	pv.ChangeDetectionEnabled = true
	pv.SelfLoop = false
	pv.AutoConfig = true
	pv.ModifiedFields = stpmodel.PVAll
}

// becomeDesignated implements 802.1D §4.6.2.
func (m *Machine) becomeDesignated(inst *stpmodel.Instance, pv *stpmodel.PortVector) {
	pv.BecomeDesignated(inst.Bridge.RootID, inst.Bridge.RootPathCost, inst.Bridge.BridgeID)
}

// pathCostOf returns a port's configured STP path cost, or 1 when none has
// been configured over IPC (PortVector.PathCost is not seeded from the
// interface table's default).
func pathCostOf(pv *stpmodel.PortVector) uint32 {
	if pv.PathCost == 0 {
		return 1
	}
	return pv.PathCost
}
