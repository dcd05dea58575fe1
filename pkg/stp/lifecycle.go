package stp

import (
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// EnableInstance runs full bridge/port initialization (4.6.1) followed by
// an initial configuration update and port-state selection, the sequence
// the IPC decoder invokes when a VLAN config brings an instance's first
// port into enableMask.
func (m *Machine) EnableInstance(inst *stpmodel.Instance) {
	m.InitInstance(inst)
	m.ConfigurationUpdate(inst)
	m.PortStateSelection(inst)
}

// AddControlPort adds port to an instance's controlMask (and, if enabled,
// enableMask), creating its port vector in Blocking/designated state.
// Mirrors §8's "addControlPort followed by deleteControlPort
// restores masks and per-port state to pre-add values".
func (m *Machine) AddControlPort(inst *stpmodel.Instance, port ids.PortId, enabled bool) {
	inst.ControlMask.Set(int(port))
	pv := inst.Port(port)
	m.InitPort(inst, pv)
	if enabled {
		inst.EnableMask.Set(int(port))
	}
	inst.RefreshLifecycle()
	if inst.State == stpmodel.Active {
		m.ConfigurationUpdate(inst)
		m.PortStateSelection(inst)
	}
}

// DeleteControlPort removes port from controlMask/enableMask/untagMask
// and drops its port vector.
func (m *Machine) DeleteControlPort(inst *stpmodel.Instance, port ids.PortId) {
	wasRoot := inst.Bridge.RootPort == port
	inst.ControlMask.Clear(int(port))
	inst.EnableMask.Clear(int(port))
	inst.UntagMask.Clear(int(port))
	inst.DeletePort(port)
	inst.RefreshLifecycle()
	if inst.State == stpmodel.Active {
		if wasRoot {
			inst.Bridge.RootPort = stpmodel.InvalidPort
		}
		m.ConfigurationUpdate(inst)
		m.PortStateSelection(inst)
	}
}

// SetPortEnabled applies a link-up/down transition (stpmgr.port_event) to
// inst, if the port is in inst's controlMask; other instances are untouched.
func (m *Machine) SetPortEnabled(inst *stpmodel.Instance, port ids.PortId, up bool) {
	member, _ := inst.ControlMask.Test(int(port))
	if !member {
		return
	}
	if up {
		inst.EnableMask.Set(int(port))
	} else {
		inst.EnableMask.Clear(int(port))
		pv := inst.Port(port)
		pv.SetState(stpmodel.Disabled)
		pv.MessageAgeTimer.Stop()
		pv.ForwardDelayTimer.Stop()
		pv.HoldTimer.Stop()
	}
	inst.RefreshLifecycle()
	switch inst.State {
	case stpmodel.Active:
		if !up && inst.Bridge.RootPort == port {
			inst.Bridge.RootPort = stpmodel.InvalidPort
		}
		m.ConfigurationUpdate(inst)
		m.PortStateSelection(inst)
	case stpmodel.Config:
		// last enabled port just left; nothing left to elect.
	}
}
