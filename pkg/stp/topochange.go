package stp

import "github.com/vswcore/pvstd/pkg/stpmodel"

// DetectTopologyChange implements 802.1D §4.6.9. Non-root bridges start
// the TCN timer and notify upstream; the root bridge sets the sticky
// topology-change flag, arms the expiry timer at forwardDelay+maxAge, and
// enables fast-aging via the dirty-field publish path.
func (m *Machine) DetectTopologyChange(inst *stpmodel.Instance) {
	inst.Bridge.SetTopologyChangeDetected(true)

	if !inst.Bridge.IsRoot() {
		inst.TcnTimer.Start(0)
		m.sendTCN(inst)
		return
	}

	wasSet := inst.Bridge.TopologyChange
	inst.Bridge.SetTopologyChange(true)
	limit := secondsToTicks(int(inst.Bridge.ForwardDelay) + int(inst.Bridge.MaxAge))
	inst.TopologyChangeTimer.Start(0)
	_ = limit // the limit is applied by the scheduler's tick call to Expired
	if !wasSet {
		inst.Bridge.BumpTopologyChangeCount(m.Seconds)
		inst.SetFastAging(true)
	}
}

// topologyChangeTimerLimit is the tick count DetectTopologyChange's timer
// runs for: forwardDelay + maxAge seconds (§4.6.9).
func topologyChangeTimerLimit(inst *stpmodel.Instance) uint32 {
	return secondsToTicks(int(inst.Bridge.ForwardDelay) + int(inst.Bridge.MaxAge))
}

// ExpireTopologyChange implements the topologyChangeTimer row of 802.1D
// §4.6.10: clear the detected/sticky flags and disable fast-aging.
func (m *Machine) ExpireTopologyChange(inst *stpmodel.Instance) {
	inst.Bridge.SetTopologyChangeDetected(false)
	inst.Bridge.SetTopologyChange(false)
	inst.SetFastAging(false)
}
