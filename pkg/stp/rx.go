package stp

import (
	"github.com/vswcore/pvstd/pkg/bpdu"
	"github.com/vswcore/pvstd/pkg/guard"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// HandleFrame is the entry point the scheduler's rx(port, vlan, frame)
// capability (§6.2) calls after dest-MAC dispatch has already
// routed the frame to the STP or PVST+ path. It implements the failure
// semantics of §4.6.12 that apply before any per-kind handler
// runs: BPDU Guard do-disable, unknown instance, and disabled ports.
func (m *Machine) HandleFrame(vlan ids.VlanId, port ids.PortId, frame []byte) {
	if guard.IsBPDUGuardConfigured(m.Global, port) && guard.IsBPDUGuardDoDisable(m.Global, port) {
		if !guard.IsAdminDisabledByGuard(m.Global, port) {
			guard.TripBPDUGuard(m.Global, port)
			if m.AdminDown != nil {
				if name, _, ok := m.portName(port); ok {
					m.AdminDown(name, true)
				}
			}
		}
		m.bumpDrop(bpdu.KindSTPConfig)
		return
	}

	decoded, err := bpdu.Decode(frame, m.Global.ExtendMode)
	if err != nil {
		m.bumpDrop(bpdu.KindSTPConfig)
		return
	}

	instVlan := vlan
	if decoded.Kind == bpdu.KindPVSTConfig {
		instVlan = decoded.VlanID
	}
	idx, ok := m.Global.InstanceByVlan(instVlan)
	if !ok {
		m.bumpDrop(decoded.Kind)
		return
	}
	inst := m.Global.Instance(idx)
	if inst == nil || inst.State != stpmodel.Active {
		m.bumpDrop(decoded.Kind)
		return
	}

	enabled, _ := inst.EnableMask.Test(int(port))
	if !enabled {
		inst.RxDropBpdu++
		m.bumpDrop(decoded.Kind)
		return
	}

	switch decoded.Kind {
	case bpdu.KindSTPConfig, bpdu.KindPVSTConfig:
		m.ReceiveConfigBPDU(inst, port, decoded.Config)
	case bpdu.KindSTPTCN, bpdu.KindPVSTTCN:
		m.ReceiveTCN(inst, port)
	}
}

func (m *Machine) bumpDrop(k bpdu.Kind) {
	switch k {
	case bpdu.KindSTPConfig, bpdu.KindSTPTCN:
		m.Global.DropSTP++
	case bpdu.KindPVSTConfig, bpdu.KindPVSTTCN:
		m.Global.DropPVST++
	}
	if k == bpdu.KindSTPTCN || k == bpdu.KindPVSTTCN {
		m.Global.DropTCN++
	}
}
