package stp

import (
	"github.com/vswcore/pvstd/pkg/guard"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// groupCount is the number of round-robin instance groups §4.6.11
// partitions instances into: index mod 5, one group serviced per 100ms
// tick, so every instance is visited every 500ms.
const groupCount = 5

// Tick drives one scheduler tick (§4.6.10/§4.6.11): service the
// instances in tickCounter%groupCount, in ascending index order, each
// instance's three timers then its ports' timers in ascending port order.
// secondsElapsed reports whether this tick also crossed a whole-second
// boundary, for diagnostics that key off wall-clock seconds.
func (m *Machine) Tick(tickCounter uint64, secondsElapsed bool) {
	if secondsElapsed {
		m.Seconds++
	}
	group := ids.InstanceIndex(tickCounter % groupCount)
	for _, entry := range m.Global.Instances() {
		if ids.InstanceIndex(int(entry.Index)%groupCount) != group {
			continue
		}
		m.tickInstance(entry.Inst)
	}
}

func (m *Machine) tickInstance(inst *stpmodel.Instance) {
	if inst.State != stpmodel.Active {
		return
	}
	b := &inst.Bridge

	if inst.HelloTimer.Expired(secondsToTicks(int(b.HelloTime))) {
		m.GenerateConfigBPDUs(inst)
		inst.HelloTimer.Start(0)
	}
	if inst.TcnTimer.Expired(secondsToTicks(int(b.HelloTime))) {
		m.sendTCN(inst)
		inst.TcnTimer.Start(0)
	}
	if inst.TopologyChangeTimer.Expired(topologyChangeTimerLimit(inst)) {
		m.ExpireTopologyChange(inst)
	}

	for _, pv := range inst.Ports() {
		m.tickPort(inst, pv)
	}
}

func (m *Machine) tickPort(inst *stpmodel.Instance, pv *stpmodel.PortVector) {
	b := &inst.Bridge

	if pv.MessageAgeTimer.Expired(secondsToTicks(int(b.MaxAge))) {
		m.becomeDesignated(inst, pv)
		m.ConfigurationUpdate(inst)
		m.PortStateSelection(inst)
		pv.ModifiedFields = stpmodel.PVAll
	}

	if pv.State == stpmodel.Listening || pv.State == stpmodel.Learning {
		enteringLearning := pv.State == stpmodel.Listening
		if pv.ForwardDelayTimer.Expired(m.forwardDelayLimitTicks(inst, pv, enteringLearning)) {
			prev := pv.State
			switch pv.State {
			case stpmodel.Listening:
				pv.SetState(stpmodel.Learning)
			case stpmodel.Learning:
				pv.SetState(stpmodel.Forwarding)
			}
			if pv.State != stpmodel.Forwarding {
				pv.ForwardDelayTimer.Start(0)
			} else {
				m.maybeDetectTopologyChange(inst, prev, pv.State)
			}
		}
	}

	if pv.HoldTimer.Expired(secondsToTicks(int(b.HoldTime))) {
		if pv.ConfigPending {
			pv.SetConfigPending(false)
			m.sendConfigBPDU(inst, pv)
		}
	}

	if pv.RootProtectTimer.Active() && guard.RootProtectExpired(m.Global, pv) {
		if up, _ := inst.EnableMask.Test(int(pv.PortID)); up {
			// Port came back up consistent with this bridge's view: mark
			// the port dirty so the root-protect-timer flag is republished,
			// mirroring the original's "consistent" syslog.
			pv.ModifiedFields |= stpmodel.PVFlags
		}
		m.ConfigurationUpdate(inst)
		m.PortStateSelection(inst)
	}
}
