package publish

import (
	"errors"
	"testing"

	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

func TestSyncClearsDirtyBitsOnlyOnSuccess(t *testing.T) {
	g := stpmodel.NewGlobal(2, 4)
	idx, err := g.AllocateInstance(10)
	if err != nil {
		t.Fatal(err)
	}
	inst := g.Instance(idx)
	inst.Bridge.ModifiedFields = stpmodel.BIAll
	pv := inst.Port(1)
	pv.SetState(stpmodel.Forwarding)

	names := map[ids.PortId]string{1: "Ethernet1"}
	portName := func(p ids.PortId) (string, bool, bool) { n, ok := names[p]; return n, true, ok }

	var instanceCalls, portCalls, stateCalls, bridgeCalls int
	caps := Capabilities{
		PublishVlanInstance: func(ids.VlanId, ids.InstanceIndex, VlanInstanceFields) error {
			instanceCalls++
			return nil
		},
		PublishVlanPort: func(ids.VlanId, string, VlanPortFields) error {
			portCalls++
			return nil
		},
		PublishPortState: func(string, ids.InstanceIndex, stpmodel.PortState) error {
			stateCalls++
			return nil
		},
		KernelBridgeVlan: func(string, ids.VlanId, bool, bool) error {
			bridgeCalls++
			return nil
		},
	}
	s := New(caps, portName)
	if err := s.Sync(g); err != nil {
		t.Fatal(err)
	}
	if instanceCalls != 1 || portCalls != 1 || stateCalls != 1 || bridgeCalls != 1 {
		t.Fatalf("expected one call each, got instance=%d port=%d state=%d bridge=%d", instanceCalls, portCalls, stateCalls, bridgeCalls)
	}
	if inst.Bridge.ModifiedFields != 0 {
		t.Fatal("expected bridge dirty bits cleared after successful publish")
	}
	if pv.ModifiedFields != 0 {
		t.Fatal("expected port dirty bits cleared after successful publish")
	}

	// Second sync: nothing dirty, no calls.
	instanceCalls, portCalls = 0, 0
	if err := s.Sync(g); err != nil {
		t.Fatal(err)
	}
	if instanceCalls != 0 || portCalls != 0 {
		t.Fatal("expected no publish calls once dirty bits are clear")
	}
}

func TestSyncLeavesDirtyBitsOnPublishFailure(t *testing.T) {
	g := stpmodel.NewGlobal(1, 4)
	idx, _ := g.AllocateInstance(20)
	inst := g.Instance(idx)
	inst.Bridge.ModifiedFields = stpmodel.BIAll

	wantErr := errors.New("boom")
	caps := Capabilities{
		PublishVlanInstance: func(ids.VlanId, ids.InstanceIndex, VlanInstanceFields) error {
			return wantErr
		},
	}
	s := New(caps, nil)
	if err := s.Sync(g); err == nil {
		t.Fatal("expected Sync to surface the publish error")
	}
	if inst.Bridge.ModifiedFields == 0 {
		t.Fatal("expected dirty bits preserved after a failed publish")
	}
}
