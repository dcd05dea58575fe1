package stp

import (
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// isDesignated reports whether pv currently advertises this bridge as the
// designated bridge for its segment — i.e. it hasn't received a better
// message from a neighbor.
func isDesignated(inst *stpmodel.Instance, pv *stpmodel.PortVector, extend bool) bool {
	return pv.DesignatedBridge.Equal(inst.Bridge.BridgeID, extend)
}

// ConfigurationUpdate recomputes rootPort and rootPathCost (802.1D
// §4.6.4): the best candidate among enabled, non-designated ports wins;
// if none exists, this bridge is the root.
func (m *Machine) ConfigurationUpdate(inst *stpmodel.Instance) {
	extend := m.Global.ExtendMode
	var best *stpmodel.PortVector
	var bestCost uint32

	for _, pv := range inst.Ports() {
		en, _ := inst.EnableMask.Test(int(pv.PortID))
		if !en {
			continue
		}
		if isDesignated(inst, pv, extend) {
			continue
		}
		cost := pv.DesignatedCost + pathCostOf(pv)
		if best == nil || betterCandidate(pv, cost, best, bestCost, extend) {
			best = pv
			bestCost = cost
		}
	}

	if best == nil {
		inst.Bridge.SetRoot()
		for _, pv := range inst.Ports() {
			en, _ := inst.EnableMask.Test(int(pv.PortID))
			if en {
				m.becomeDesignated(inst, pv)
			}
		}
		return
	}

	inst.Bridge.SetRootVia(best.DesignatedRoot, bestCost, best.PortID,
		best.MsgMaxAge, best.MsgHelloTime, best.MsgForwardDelay)
}

// betterCandidate compares two root-port candidates by
// (designatedRoot, cost, designatedBridge, designatedPort, portId), the
// tie-break chain §4.6.4 specifies.
func betterCandidate(cand *stpmodel.PortVector, candCost uint32, cur *stpmodel.PortVector, curCost uint32, extend bool) bool {
	if !cand.DesignatedRoot.Equal(cur.DesignatedRoot, extend) {
		return cand.DesignatedRoot.Less(cur.DesignatedRoot, extend)
	}
	if candCost != curCost {
		return candCost < curCost
	}
	if !cand.DesignatedBridge.Equal(cur.DesignatedBridge, extend) {
		return cand.DesignatedBridge.Less(cur.DesignatedBridge, extend)
	}
	if !cand.DesignatedPort.Equal(cur.DesignatedPort) {
		return cand.DesignatedPort.Less(cur.DesignatedPort)
	}
	return cand.PortID < cur.PortID
}

var _ = ids.BadPortId
