package stp

import (
	"github.com/vswcore/pvstd/pkg/bpdu"
	"github.com/vswcore/pvstd/pkg/guard"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// ReceiveConfigBPDU implements 802.1D §4.6.6. msg.PortID/msg.BridgeID are
// the sender's identifiers, carried inside the decoded BPDU.
func (m *Machine) ReceiveConfigBPDU(inst *stpmodel.Instance, port ids.PortId, msg bpdu.ConfigBPDU) {
	pv := inst.Port(port)
	extend := m.Global.ExtendMode

	if guard.IsPortFastActive(m.Global, port) {
		guard.DisarmPortFast(m.Global, port)
	}

	candidate := designatedTupleOf(msg)
	supersedes := pv.Supersedes(candidate, extend)

	if guard.IsRootGuardConfigured(m.Global, port) && supersedes {
		guard.TripRootGuard(pv)
		if m.OnRootInc != nil {
			m.OnRootInc(inst, port)
		}
		return
	}

	prevRx := inst.LastBpduRxTime
	inst.LastBpduRxTime = m.Seconds
	if prevRx != 0 && m.Seconds > prevRx && m.Seconds-prevRx > uint32(inst.Bridge.HelloTime)+1 {
		pv.RxDelayedBpdu++
	}

	if msg.MessageAge >= msg.MaxAge {
		pv.RxDropBpdu++
		inst.RxDropBpdu++
		return
	}

	pv.RxConfigBpdu++

	if supersedes {
		wasRoot := inst.Bridge.IsRoot()

		pv.DesignatedRoot = msg.RootID
		pv.DesignatedCost = msg.RootPathCost
		pv.DesignatedBridge = msg.BridgeID
		pv.DesignatedPort = msg.PortID
		pv.MsgMaxAge = msg.MaxAge
		pv.MsgHelloTime = msg.HelloTime
		pv.MsgForwardDelay = msg.ForwardDelay
		pv.ModifiedFields |= stpmodel.PVDesignatedRoot | stpmodel.PVDesignatedCost |
			stpmodel.PVDesignatedBridge | stpmodel.PVDesignatedPort

		pv.MessageAgeTimer.Start(messageAgeTicks(msg.MessageAge))

		m.ConfigurationUpdate(inst)
		m.PortStateSelection(inst)

		nowRoot := inst.Bridge.IsRoot()
		if wasRoot != nowRoot {
			if nowRoot {
				inst.TcnTimer.Stop()
			} else {
				inst.TcnTimer.Start(0)
			}
		}

		if msg.TopologyChange() && port == inst.Bridge.RootPort {
			m.DetectTopologyChange(inst)
		}
		if msg.TopologyChangeAcknowledge() && port == inst.Bridge.RootPort {
			inst.TcnTimer.Stop()
		}
		return
	}

	if isDesignated(inst, pv, extend) {
		m.sendConfigReply(inst, pv)
	}
}

// ReceiveTCN implements 802.1D §4.6.7.
func (m *Machine) ReceiveTCN(inst *stpmodel.Instance, port ids.PortId) {
	pv := inst.Port(port)
	pv.RxTcnBpdu++
	if !isDesignated(inst, pv, m.Global.ExtendMode) {
		pv.RxDropBpdu++
		inst.RxDropBpdu++
		return
	}
	inst.Bridge.SetTopologyChangeDetected(true)
	inst.TopologyChangeTimer.Start(0)
	m.sendConfigReplyWithTCA(inst, pv)
}

func designatedTupleOf(msg bpdu.ConfigBPDU) stpmodel.DesignatedTuple {
	return stpmodel.DesignatedTuple{Root: msg.RootID, Cost: msg.RootPathCost, Bridge: msg.BridgeID, Port: msg.PortID}
}

func messageAgeTicks(messageAgeSeconds uint8) uint32 {
	return uint32(messageAgeSeconds) * 10
}
