package stp

import (
	"github.com/vswcore/pvstd/pkg/bpdu"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// buildConfigBPDU assembles a Config BPDU body from the instance's
// current bridge info and a specific designated port (§4.6.8).
func (m *Machine) buildConfigBPDU(inst *stpmodel.Instance, pv *stpmodel.PortVector) bpdu.ConfigBPDU {
	b := inst.Bridge
	var flags uint8
	if b.TopologyChange {
		flags |= bpdu.FlagTopologyChange
	}
	if pv.TopologyChangeAcknowledge {
		flags |= bpdu.FlagTopologyChangeAcknowledge
	}
	return bpdu.ConfigBPDU{
		Type:         bpdu.TypeConfig,
		Flags:        flags,
		RootID:       b.RootID,
		RootPathCost: b.RootPathCost,
		BridgeID:     b.BridgeID,
		PortID:       ids.PortIdentifier{Priority: pv.Priority >> 4, Number: uint16(pv.PortID)},
		MessageAge:   0,
		MaxAge:       b.MaxAge,
		HelloTime:    b.HelloTime,
		ForwardDelay: b.ForwardDelay,
	}
}

// sendConfigBPDU encodes and transmits a Config BPDU on pv, respecting the
// per-port hold timer (§4.6.8's rate limit to one BPDU per
// holdTime seconds) and the VLAN-1 dual STP+PVST+ emission rule.
func (m *Machine) sendConfigBPDU(inst *stpmodel.Instance, pv *stpmodel.PortVector) {
	if pv.HoldTimer.Active() {
		pv.SetConfigPending(true)
		return
	}
	msg := m.buildConfigBPDU(inst, pv)
	m.transmitConfig(inst, pv, msg)
	pv.SetTopologyChangeAcknowledge(false)
	pv.HoldTimer.Start(0)
	pv.TxConfigBpdu++
}

func (m *Machine) transmitConfig(inst *stpmodel.Instance, pv *stpmodel.PortVector, msg bpdu.ConfigBPDU) {
	name, tagged, ok := m.portName(pv.PortID)
	if !ok || m.Tx == nil {
		return
	}
	_ = name
	srcMAC := m.Global.BaseMacAddress

	if inst.VlanID == ids.MinVlan {
		if m.Global.ProtoMode == stpmodel.ProtoPVST && tagged {
			pvstFrame := bpdu.EncodePVSTConfig(srcMAC, msg, inst.VlanID, m.Global.ExtendMode)
			m.Tx(pv.PortID, inst.VlanID, pvstFrame, true)
		}
		untagged := bpdu.EncodeSTPConfig(srcMAC, msg, m.Global.ExtendMode)
		m.Tx(pv.PortID, inst.VlanID, untagged, false)
		return
	}

	if m.Global.ProtoMode == stpmodel.ProtoPVST && tagged {
		pvstFrame := bpdu.EncodePVSTConfig(srcMAC, msg, inst.VlanID, m.Global.ExtendMode)
		m.Tx(pv.PortID, inst.VlanID, pvstFrame, true)
		return
	}
	untagged := bpdu.EncodeSTPConfig(srcMAC, msg, m.Global.ExtendMode)
	m.Tx(pv.PortID, inst.VlanID, untagged, false)
}

func (m *Machine) portName(port ids.PortId) (string, bool, bool) {
	if m.PortName == nil {
		return "", false, false
	}
	return m.PortName(port)
}

// sendConfigReply implements the "configuration reply" path of 802.1D
// §4.6.6 (received a worse message on a designated port: reply at once).
func (m *Machine) sendConfigReply(inst *stpmodel.Instance, pv *stpmodel.PortVector) {
	m.sendConfigBPDU(inst, pv)
}

// sendConfigReplyWithTCA implements 802.1D §4.6.7's TCN reply.
func (m *Machine) sendConfigReplyWithTCA(inst *stpmodel.Instance, pv *stpmodel.PortVector) {
	pv.SetTopologyChangeAcknowledge(true)
	m.sendConfigBPDU(inst, pv)
}

// sendTCN transmits a TCN BPDU out the root port (§4.6.8's
// tcn_bpdu_generation), only meaningful for a non-root bridge.
func (m *Machine) sendTCN(inst *stpmodel.Instance) {
	if inst.Bridge.IsRoot() || m.Tx == nil {
		return
	}
	pv := inst.Port(inst.Bridge.RootPort)
	_, _, ok := m.portName(pv.PortID)
	if !ok {
		return
	}
	srcMAC := m.Global.BaseMacAddress
	if inst.VlanID == ids.MinVlan || m.Global.ProtoMode != stpmodel.ProtoPVST {
		frame := bpdu.EncodeSTPTCN(srcMAC)
		m.Tx(pv.PortID, inst.VlanID, frame, false)
	} else {
		frame := bpdu.EncodePVSTTCN(srcMAC)
		m.Tx(pv.PortID, inst.VlanID, frame, true)
	}
	pv.TxTcnBpdu++
}

// GenerateConfigBPDUs implements config_bpdu_generation (§4.6.8):
// send a Config BPDU from every designated port.
func (m *Machine) GenerateConfigBPDUs(inst *stpmodel.Instance) {
	extend := m.Global.ExtendMode
	for _, pv := range inst.Ports() {
		en, _ := inst.EnableMask.Test(int(pv.PortID))
		if !en {
			continue
		}
		if !isDesignated(inst, pv, extend) && pv.PortID != inst.Bridge.RootPort {
			continue
		}
		if isDesignated(inst, pv, extend) {
			m.sendConfigBPDU(inst, pv)
		}
	}
}
