package iface

import "github.com/vswcore/pvstd/pkg/ids"

// PortEventFunc is the stpmgr.port_event(portId, up) callback invoked when
// an Ethernet port's oper state changes (§4.3).
type PortEventFunc func(portID ids.PortId, up bool)

// LAGDisableFunc is invoked when a LAG's last member leaves: the LAG must
// be disabled globally and its control bit cleared from every instance
// before the id is released.
type LAGDisableFunc func(portID ids.PortId)

// ExtendMode and default-path-cost derivation are threaded through so a
// freshly discovered Ethernet port gets a sensible default immediately.
type Options struct {
	ExtendMode bool
	OnPortEvent PortEventFunc
	OnLAGDisable LAGDisableFunc
}

// OnLinkEvent applies a single link event to the table, per §4.3:
//
//   - Ethernet add/update: upsert the record; open an RX socket on first
//     appearance (left to the caller, which owns the raw-socket layer);
//     propagate oper-state changes via OnPortEvent.
//   - Ethernet LAG-member change: resolve the LAG by kernel index; on
//     join, bump the member count and inherit speed/cost if the LAG had
//     none; on leave, decrement and, at zero members, disable the LAG.
//   - Delete: the reverse of add, including LAG id release at zero
//     members.
func (t *Table) OnLinkEvent(ev LinkEvent, isAdd bool, initPhase bool, opts Options) error {
	if ev.IsBond {
		return t.onLAGEvent(ev, isAdd, opts)
	}
	if !isAdd {
		return t.onEthernetDelete(ev, opts)
	}
	return t.onEthernetUpsert(ev, initPhase, opts)
}

func (t *Table) onEthernetUpsert(ev LinkEvent, initPhase bool, opts Options) error {
	existing, had := t.Get(ev.Name)
	portID := ids.BadPortId
	if had {
		portID = existing.LocalPortID
	} else {
		id, err := EthernetPortID(ev.Name)
		if err != nil {
			return err
		}
		portID = id
	}

	wasUp := had && existing.OperState == OperUp
	rec := &Record{
		Name:          ev.Name,
		Kind:          KindEthernet,
		KernelIndex:   ev.KernelIndex,
		LocalPortID:   portID,
		MAC:           ev.MAC,
		Speed:         ev.Speed,
		OperState:     ev.OperState,
		Valid:         true,
		MasterIfindex: ev.MasterIfindex,
	}
	if had {
		rec.Priority = existing.Priority
		rec.PathCost = existing.PathCost
		rec.PriorityOverridden = existing.PriorityOverridden
		rec.PathCostOverridden = existing.PathCostOverridden
		rec.RXHandle = existing.RXHandle
	}
	if !rec.PathCostOverridden {
		rec.PathCost = DefaultPathCost(rec.Speed, opts.ExtendMode)
	}
	t.Upsert(rec)

	nowUp := rec.OperState == OperUp
	if !initPhase && wasUp != nowUp && opts.OnPortEvent != nil {
		opts.OnPortEvent(portID, nowUp)
	}
	return nil
}

func (t *Table) onEthernetDelete(ev LinkEvent, opts Options) error {
	rec, ok := t.Get(ev.Name)
	if !ok {
		return nil // idempotent
	}
	if rec.OperState == OperUp && opts.OnPortEvent != nil {
		opts.OnPortEvent(rec.LocalPortID, false)
	}
	t.Delete(ev.Name)
	return nil
}

func (t *Table) onLAGEvent(ev LinkEvent, isAdd bool, opts Options) error {
	if isAdd && !ev.IsMember {
		// LAG master itself appearing: create its record if unseen.
		if _, ok := t.Get(ev.Name); ok {
			return nil
		}
		portID, err := t.AllocateLAGPortID()
		if err != nil {
			return err
		}
		t.Upsert(&Record{
			Name:        ev.Name,
			Kind:        KindLAG,
			KernelIndex: ev.KernelIndex,
			LocalPortID: portID,
			MAC:         ev.MAC,
			OperState:   ev.OperState,
			Valid:       true,
		})
		return nil
	}

	// Member join/leave: resolve the master by kernel index.
	master, ok := t.GetByKernelIndex(ev.MasterIfindex)
	if !ok {
		return ErrUnknownInterface
	}

	if isAdd {
		master.MemberPortCount++
		if master.MemberPortCount == 1 || master.Speed == SpeedUnknown {
			master.Speed = ev.Speed
			if !master.PathCostOverridden {
				master.PathCost = DefaultPathCost(master.Speed, opts.ExtendMode)
			}
		}
		return nil
	}

	master.MemberPortCount--
	if master.MemberPortCount <= 0 {
		if opts.OnLAGDisable != nil {
			opts.OnLAGDisable(master.LocalPortID)
		}
		if err := t.ReleaseLAGPortID(master.LocalPortID); err != nil {
			return err
		}
		t.Delete(master.Name)
	}
	return nil
}
