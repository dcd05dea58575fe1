package ipc

import (
	"fmt"

	"github.com/vswcore/pvstd/pkg/bitmap"
	"github.com/vswcore/pvstd/pkg/guard"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/iface"
	"github.com/vswcore/pvstd/pkg/stp"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// ErrInvalidVlan / ErrInvalidPriority reject a config message before it
// mutates anything (§4.6.12: nothing is partially applied on error).
var (
	ErrInvalidVlan     = fmt.Errorf("ipc: vlan id out of range 1..4094")
	ErrInvalidPriority = fmt.Errorf("ipc: priority is not a multiple of the priority quantum")
)

func validVlanID(v int32) (ids.VlanId, bool) {
	if v < 0 || v > 0xFFFF {
		return 0, false
	}
	vlan := ids.VlanId(v)
	return vlan, vlan.Valid()
}

func validPriority(p int32) bool {
	return p >= 0 && p <= 0xFFFF && uint16(p)%ids.PriorityQuantum == 0
}

// Dispatcher applies decoded IPC messages to the interface table, the
// global/instance state, and the guard masks, driving the state machine
// through the same lifecycle entry points link events use.
type Dispatcher struct {
	Global  *stpmodel.Global
	Table   *iface.Table
	Machine *stp.Machine

	// OnInitReady fires once the InitReady handshake completes, so the
	// caller can kick off netlink discovery (§6.1).
	OnInitReady func(maxStpInstances uint16)
	// DumpText renders a dump command's reply payload (wired by the
	// caller, since a full dump needs knowledge this package doesn't
	// hold: version strings, socket counters, etc).
	DumpText func(cmd StpCtlMsg) string

	// Auth gates mutating StpCtl commands behind a bearer token when
	// non-nil (BridgeDefaults.StpCtlAuth.Enabled). Left nil, every
	// command is honored unauthenticated.
	Auth *StpCtlAuth
}

// Handle decodes one datagram and applies it, returning a reply payload
// (StpCtl only; nil for every other message type).
func (d *Dispatcher) Handle(datagram []byte) ([]byte, error) {
	hdr, data, err := Frame(datagram)
	if err != nil {
		return nil, err
	}
	switch hdr.Type {
	case MsgInitReady:
		msg, err := decodeInitReady(data)
		if err != nil {
			return nil, err
		}
		if d.OnInitReady != nil {
			d.OnInitReady(msg.MaxStpInstances)
		}
		return nil, nil
	case MsgBridgeConfig:
		msg, err := decodeBridgeConfig(data)
		if err != nil {
			return nil, err
		}
		d.applyBridgeConfig(msg)
		return nil, nil
	case MsgVlanConfig:
		msg, err := decodeVlanConfig(data)
		if err != nil {
			return nil, err
		}
		return nil, d.applyVlanConfig(msg)
	case MsgVlanPortConfig:
		msg, err := decodeVlanPortConfig(data)
		if err != nil {
			return nil, err
		}
		return nil, d.applyVlanPortConfig(msg)
	case MsgPortConfig:
		msg, err := decodePortConfig(data)
		if err != nil {
			return nil, err
		}
		return nil, d.applyPortConfig(msg)
	case MsgVlanMemConfig:
		msg, err := decodeVlanMemConfig(data)
		if err != nil {
			return nil, err
		}
		return nil, d.applyVlanMemConfig(msg)
	case MsgStpCtl:
		msg, err := decodeStpCtl(data)
		if err != nil {
			return nil, err
		}
		if msg.CmdType.Mutating() && d.Auth != nil {
			if err := d.Auth.Verify(msg.Token); err != nil {
				return nil, err
			}
		}
		text := ""
		if d.DumpText != nil {
			text = d.DumpText(msg)
		}
		return Encode(MsgStpCtl, []byte(text)), nil
	default:
		return nil, fmt.Errorf("ipc: unknown msgType %d", hdr.Type)
	}
}

func (d *Dispatcher) applyBridgeConfig(msg BridgeConfigMsg) {
	if msg.ProtoMode == 1 {
		d.Global.ProtoMode = stpmodel.ProtoPVST
	} else {
		d.Global.ProtoMode = stpmodel.ProtoNone
	}
	d.Global.RootProtectTimeout = uint32(msg.RootGuardTimeout)
	d.Global.BaseMacAddress = msg.BaseMAC
}

func (d *Dispatcher) applyVlanConfig(msg VlanConfigMsg) error {
	vlan, ok := validVlanID(msg.VlanID)
	if !ok {
		return fmt.Errorf("vlan config: %w: %d", ErrInvalidVlan, msg.VlanID)
	}
	if msg.Opcode == 0 {
		if idx, ok := d.Global.InstanceByVlan(vlan); ok {
			d.Global.FreeInstance(idx)
		}
		return nil
	}
	if !validPriority(msg.Priority) {
		return fmt.Errorf("vlan config vlan %d: %w: %d", vlan, ErrInvalidPriority, msg.Priority)
	}

	idx, err := d.Global.AllocateInstance(vlan)
	if err != nil {
		return fmt.Errorf("vlan config vlan %d: %w", vlan, err)
	}
	inst := d.Global.Instance(idx)
	if inst.State == stpmodel.Free {
		inst.State = stpmodel.Config
	}
	wasConfig := inst.State != stpmodel.Active
	inst.Bridge.BridgeForwardDelay = uint8(msg.ForwardDelay)
	inst.Bridge.BridgeHelloTime = uint8(msg.HelloTime)
	inst.Bridge.BridgeMaxAge = uint8(msg.MaxAge)
	inst.Bridge.BridgeID.Priority = uint8(uint16(msg.Priority) >> 12)

	for _, pa := range msg.Ports {
		rec, ok := d.Table.Get(pa.Name)
		if !ok {
			continue
		}
		inst.ControlMask.Set(int(rec.LocalPortID))
		if pa.Enabled {
			inst.EnableMask.Set(int(rec.LocalPortID))
		}
		if !pa.Tagged {
			inst.UntagMask.Set(int(rec.LocalPortID))
		}
		_ = inst.Port(rec.LocalPortID)
	}
	inst.RefreshLifecycle()

	if inst.State == stpmodel.Active {
		if wasConfig {
			d.Machine.EnableInstance(inst)
		} else {
			d.Machine.ConfigurationUpdate(inst)
			d.Machine.PortStateSelection(inst)
		}
	}
	return nil
}

func (d *Dispatcher) applyVlanPortConfig(msg VlanPortConfigMsg) error {
	idx, ok := d.Global.InstanceByVlan(ids.VlanId(msg.VlanID))
	if !ok {
		return stpmodel.ErrUnknownInstance
	}
	inst := d.Global.Instance(idx)
	rec, ok := d.Table.Get(msg.Name)
	if !ok {
		return iface.ErrUnknownInterface
	}
	pv := inst.Port(rec.LocalPortID)
	if msg.PathCost > 0 {
		pv.PathCost = uint32(iface.ClampPathCost(int(msg.PathCost), d.Global.ExtendMode))
		pv.PathCostOverridden = true
	}
	if msg.Priority >= 0 {
		pv.Priority = uint8(msg.Priority)
		pv.PriorityOverridden = true
	}
	if inst.State == stpmodel.Active {
		d.Machine.ConfigurationUpdate(inst)
		d.Machine.PortStateSelection(inst)
	}
	return nil
}

func (d *Dispatcher) applyPortConfig(msg PortConfigMsg) error {
	rec, ok := d.Table.Get(msg.Name)
	if !ok {
		return iface.ErrUnknownInterface
	}
	port := rec.LocalPortID

	setMask(d.Global.RootProtectMask, port, msg.RootGuard)
	setMask(d.Global.ProtectMask, port, msg.BPDUGuard)
	setMask(d.Global.ProtectDoDisableMask, port, msg.BPDUGuardDoDisable)
	setMask(d.Global.FastspanConfigMask, port, msg.PortFast)
	setMask(d.Global.FastuplinkMask, port, msg.UplinkFast)

	if msg.PortFast && rec.OperState == iface.OperUp {
		guard.ArmPortFast(d.Global, port)
	}
	if !msg.PortFast {
		guard.DisarmPortFast(d.Global, port)
	}
	if msg.Enabled {
		// Administrative re-enable clears a prior BPDU Guard shutdown.
		guard.ClearBPDUGuardShutdown(d.Global, port)
	}

	for _, va := range msg.Vlans {
		idx, ok := d.Global.InstanceByVlan(ids.VlanId(va.VlanID))
		if !ok {
			continue
		}
		inst := d.Global.Instance(idx)
		wasConfig := inst.State != stpmodel.Active
		inst.ControlMask.Set(int(port))
		if msg.Enabled {
			inst.EnableMask.Set(int(port))
		}
		if !va.Tagged {
			inst.UntagMask.Set(int(port))
		}
		pv := inst.Port(port)
		if msg.PathCost > 0 {
			pv.PathCost = uint32(iface.ClampPathCost(int(msg.PathCost), d.Global.ExtendMode))
		}
		if msg.Priority >= 0 {
			pv.Priority = uint8(msg.Priority)
		}
		inst.RefreshLifecycle()
		if inst.State == stpmodel.Active {
			if wasConfig {
				d.Machine.EnableInstance(inst)
			} else {
				d.Machine.ConfigurationUpdate(inst)
				d.Machine.PortStateSelection(inst)
			}
		}
	}
	return nil
}

func (d *Dispatcher) applyVlanMemConfig(msg VlanMemConfigMsg) error {
	idx, ok := d.Global.InstanceByVlan(ids.VlanId(msg.VlanID))
	if !ok {
		return stpmodel.ErrUnknownInstance
	}
	inst := d.Global.Instance(idx)
	rec, ok := d.Table.Get(msg.Name)
	if !ok {
		return iface.ErrUnknownInterface
	}
	port := rec.LocalPortID

	if !msg.Enabled {
		d.Machine.DeleteControlPort(inst, port)
		return nil
	}
	d.Machine.AddControlPort(inst, port, true)
	pv := inst.Port(port)
	if msg.PathCost > 0 {
		pv.PathCost = uint32(iface.ClampPathCost(int(msg.PathCost), d.Global.ExtendMode))
	}
	if !msg.Tagged {
		inst.UntagMask.Set(int(port))
	}
	return nil
}

// setMask adapts pkg/bitmap.Bitmap's error-returning Set/Clear to the
// fire-and-forget calls PortConfig's mask toggles want; the masks here
// are always sized to maxPorts so an out-of-range index never happens.
func setMask(m *bitmap.Bitmap, port ids.PortId, on bool) {
	if on {
		m.Set(int(port))
	} else {
		m.Clear(int(port))
	}
}
