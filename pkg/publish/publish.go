// Package publish implements the downstream sync pass (§4.10,
// component C10): translate per-instance/per-port dirty-field bitmasks
// into the five publish capability calls of §6.4, clearing dirty
// bits only once a publish call succeeds.
package publish

import (
	"fmt"

	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

// VlanInstanceFields / VlanPortFields mirror the "fields" payload handed
// to publishVlanInstance/publishVlanPort; they're plain snapshots, not
// capability calls themselves.
type VlanInstanceFields struct {
	RootID                 ids.BridgeIdentifier
	RootPathCost           uint32
	RootPort               ids.PortId
	MaxAge, HelloTime, ForwardDelay uint8
	TopologyChangeCount    uint32
	TopologyChange         bool
}

type VlanPortFields struct {
	State            stpmodel.PortState
	Priority         uint8
	PathCost         uint32
	DesignatedRoot   ids.BridgeIdentifier
	DesignatedCost   uint32
	DesignatedBridge ids.BridgeIdentifier
	DesignatedPort   ids.PortIdentifier
	RxConfigBpdu     uint32
	TxConfigBpdu     uint32
	RxTcnBpdu        uint32
	TxTcnBpdu        uint32
	RootProtectTimerActive bool
}

// Capabilities bundles the five publish functions of §6.4. Every
// function returns an error so Sync can honor "never clear bits if
// publish failed".
type Capabilities struct {
	PublishVlanInstance func(vlan ids.VlanId, instance ids.InstanceIndex, fields VlanInstanceFields) error
	PublishVlanPort     func(vlan ids.VlanId, portName string, fields VlanPortFields) error
	PublishPortState    func(portName string, instance ids.InstanceIndex, state stpmodel.PortState) error
	PublishFastAge      func(vlan ids.VlanId, on bool) error
	KernelBridgeVlan     func(portName string, vlan ids.VlanId, add bool, tagged bool) error
}

// PortNamer resolves a port id to its interface name and tag mode, the
// same capability pkg/stp's Machine uses for transmit.
type PortNamer func(port ids.PortId) (name string, tagged bool, ok bool)

// Syncer runs the per-tick publish pass over a Global.
type Syncer struct {
	Caps     Capabilities
	PortName PortNamer
}

// New builds a Syncer.
func New(caps Capabilities, portName PortNamer) *Syncer {
	return &Syncer{Caps: caps, PortName: portName}
}

// Sync walks every instance, in the same ascending-index/ascending-port
// order the state machine uses (§4.6.11: "the sync pass
// piggybacks on the same order"), publishing anything dirty.
func (s *Syncer) Sync(g *stpmodel.Global) error {
	for _, entry := range g.Instances() {
		if err := s.syncInstance(entry.Index, entry.Inst); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) syncInstance(idx ids.InstanceIndex, inst *stpmodel.Instance) error {
	if inst.Bridge.ModifiedFields != 0 {
		fields := VlanInstanceFields{
			RootID:              inst.Bridge.RootID,
			RootPathCost:        inst.Bridge.RootPathCost,
			RootPort:            inst.Bridge.RootPort,
			MaxAge:              inst.Bridge.MaxAge,
			HelloTime:           inst.Bridge.HelloTime,
			ForwardDelay:        inst.Bridge.ForwardDelay,
			TopologyChangeCount: inst.Bridge.TopologyChangeCount,
			TopologyChange:      inst.Bridge.TopologyChange,
		}
		if s.Caps.PublishVlanInstance != nil {
			if err := s.Caps.PublishVlanInstance(inst.VlanID, idx, fields); err != nil {
				return fmt.Errorf("publish vlan instance %d: %w", inst.VlanID, err)
			}
		}
		inst.Bridge.ModifiedFields = 0
	}

	if inst.ModifiedFields&stpmodel.IFastAging != 0 {
		if s.Caps.PublishFastAge != nil {
			if err := s.Caps.PublishFastAge(inst.VlanID, inst.FastAging); err != nil {
				return fmt.Errorf("publish fast age vlan %d: %w", inst.VlanID, err)
			}
		}
		inst.ModifiedFields &^= stpmodel.IFastAging
	}

	for _, pv := range inst.Ports() {
		if err := s.syncPort(idx, inst, pv); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) syncPort(idx ids.InstanceIndex, inst *stpmodel.Instance, pv *stpmodel.PortVector) error {
	if pv.ModifiedFields == 0 {
		return nil
	}
	name, tagged, ok := "", false, false
	if s.PortName != nil {
		name, tagged, ok = s.PortName(pv.PortID)
	}
	if !ok {
		return nil
	}

	fields := VlanPortFields{
		State:                  pv.State,
		PathCost:               pv.PathCost,
		DesignatedRoot:         pv.DesignatedRoot,
		DesignatedCost:         pv.DesignatedCost,
		DesignatedBridge:       pv.DesignatedBridge,
		DesignatedPort:         pv.DesignatedPort,
		RxConfigBpdu:           pv.RxConfigBpdu,
		TxConfigBpdu:           pv.TxConfigBpdu,
		RxTcnBpdu:              pv.RxTcnBpdu,
		TxTcnBpdu:              pv.TxTcnBpdu,
		RootProtectTimerActive: pv.RootProtectTimer.Active(),
	}
	if s.Caps.PublishVlanPort != nil {
		if err := s.Caps.PublishVlanPort(inst.VlanID, name, fields); err != nil {
			return fmt.Errorf("publish vlan port %s: %w", name, err)
		}
	}
	if pv.ModifiedFields&(stpmodel.PVState|stpmodel.PVKernelState) != 0 {
		if s.Caps.PublishPortState != nil {
			if err := s.Caps.PublishPortState(name, idx, pv.State); err != nil {
				return fmt.Errorf("publish port state %s: %w", name, err)
			}
		}
		if s.Caps.KernelBridgeVlan != nil {
			add := pv.KernelState == stpmodel.KernelForward
			if err := s.Caps.KernelBridgeVlan(name, inst.VlanID, add, tagged); err != nil {
				return fmt.Errorf("kernel bridge vlan %s: %w", name, err)
			}
		}
	}
	pv.ModifiedFields = 0
	return nil
}
