package stp

import (
	"github.com/vswcore/pvstd/pkg/guard"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

type portRole int

const (
	roleOther portRole = iota
	roleRoot
	roleDesignated
)

func roleOf(inst *stpmodel.Instance, pv *stpmodel.PortVector, extend bool) portRole {
	if inst.Bridge.RootPort != stpmodel.InvalidPort && pv.PortID == inst.Bridge.RootPort {
		return roleRoot
	}
	if isDesignated(inst, pv, extend) {
		return roleDesignated
	}
	return roleOther
}

// PortStateSelection implements 802.1D §4.6.5: the root port and
// designated ports advance toward Forwarding via the forward-delay timer
// (with PortFast/Fast Uplink shortcuts); everything else sits in
// Blocking. Topology-change detection (4.6.9) fires on the transitions
// 802.1D calls out.
func (m *Machine) PortStateSelection(inst *stpmodel.Instance) {
	extend := m.Global.ExtendMode
	for _, pv := range inst.Ports() {
		en, _ := inst.EnableMask.Test(int(pv.PortID))
		if !en {
			continue
		}
		role := roleOf(inst, pv, extend)
		prev := pv.State

		switch role {
		case roleRoot, roleDesignated:
			if pv.State == stpmodel.Blocking {
				pv.SetState(stpmodel.Listening)
				pv.ForwardDelayTimer.Start(0)
			}
		default:
			if pv.State != stpmodel.Blocking && pv.State != stpmodel.Disabled {
				pv.SetState(stpmodel.Blocking)
				pv.ForwardDelayTimer.Stop()
			}
		}

		m.maybeDetectTopologyChange(inst, prev, pv.State)
	}
}

// maybeDetectTopologyChange implements the trigger condition 802.1D
// §4.6.5 names: "any port changes to Forwarding, or any port in
// Learning/Forwarding goes to Blocking/Disabled".
func (m *Machine) maybeDetectTopologyChange(inst *stpmodel.Instance, prev, cur stpmodel.PortState) {
	if cur == stpmodel.Forwarding && prev != stpmodel.Forwarding {
		m.DetectTopologyChange(inst)
		return
	}
	wasLive := prev == stpmodel.Learning || prev == stpmodel.Forwarding
	nowDown := cur == stpmodel.Blocking || cur == stpmodel.Disabled
	if wasLive && nowDown {
		m.DetectTopologyChange(inst)
	}
}

// forwardDelayLimitTicks picks the per-stage duration for a port's next
// Listening->Learning or Learning->Forwarding step (§4.6.5):
// PortFast -> 1s/stage (2s total); Fast Uplink (when eligible) -> 1s then
// 0s; otherwise the instance's configured forwardDelay.
func (m *Machine) forwardDelayLimitTicks(inst *stpmodel.Instance, pv *stpmodel.PortVector, enteringLearning bool) uint32 {
	if guard.IsPortFastActive(m.Global, pv.PortID) {
		// Two 1s stages make the "effective forward delay = 2s" total
		// §4.6.5 specifies for PortFast/Fast Span ports.
		return secondsToTicks(1)
	}
	if guard.IsFastUplinkOK(m.Global, inst, pv.PortID) {
		if enteringLearning {
			return secondsToTicks(1)
		}
		return 0
	}
	return secondsToTicks(int(inst.Bridge.ForwardDelay))
}

func secondsToTicks(s int) uint32 {
	if s < 0 {
		return 0
	}
	return uint32(s) * 10
}
