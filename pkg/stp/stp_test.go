package stp

import (
	"testing"

	"github.com/vswcore/pvstd/pkg/bpdu"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

func newTestMachine(t *testing.T, mac [6]byte) (*Machine, *stpmodel.Instance) {
	t.Helper()
	g := stpmodel.NewGlobal(4, 8)
	g.ExtendMode = true
	g.BaseMacAddress = mac
	g.RootProtectTimeout = 30

	idx, err := g.AllocateInstance(10)
	if err != nil {
		t.Fatal(err)
	}
	inst := g.Instance(idx)
	inst.State = stpmodel.Config
	inst.EnableMask.Set(1)
	inst.ControlMask.Set(1)
	inst.UntagMask.Set(1)
	inst.RefreshLifecycle()

	names := map[ids.PortId]string{1: "Ethernet1"}
	m := NewMachine(g, func(ids.PortId, ids.VlanId, []byte, bool) {}, nil, nil,
		func(p ids.PortId) (string, bool, bool) { n, ok := names[p]; return n, true, ok })
	return m, inst
}

func TestEnableInstanceBecomesRootWhenAlone(t *testing.T) {
	m, inst := newTestMachine(t, [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	m.EnableInstance(inst)

	if !inst.Bridge.IsRoot() {
		t.Fatal("a lone bridge must be its own root")
	}
	pv := inst.Port(1)
	if pv.State != stpmodel.Listening {
		t.Fatalf("expected the designated port to start moving toward Forwarding, got %v", pv.State)
	}
}

func TestReceiveSuperiorBPDUBecomesNonRoot(t *testing.T) {
	m, inst := newTestMachine(t, [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x66}) // "B", numerically higher MAC
	m.EnableInstance(inst)

	superiorRoot := ids.BridgeIdentifier{Priority: 0x8, SystemID: 10, MAC: [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}}
	msg := bpdu.ConfigBPDU{
		Type:         bpdu.TypeConfig,
		RootID:       superiorRoot,
		RootPathCost: 0,
		BridgeID:     superiorRoot,
		PortID:       ids.PortIdentifier{Priority: 8, Number: 1},
		MessageAge:   0,
		MaxAge:       20,
		HelloTime:    2,
		ForwardDelay: 15,
	}
	m.ReceiveConfigBPDU(inst, 1, msg)

	if inst.Bridge.IsRoot() {
		t.Fatal("expected B to no longer be root after a superior BPDU")
	}
	if inst.Bridge.RootPort != 1 {
		t.Fatalf("expected port 1 to become root port, got %v", inst.Bridge.RootPort)
	}
	if inst.Bridge.RootPathCost == 0 {
		t.Fatal("expected nonzero root path cost via the root port")
	}
}

func TestRootGuardBlocksSuperiorBPDU(t *testing.T) {
	m, inst := newTestMachine(t, [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	m.EnableInstance(inst)
	m.Global.RootProtectMask.Set(1)

	tripped := false
	m.OnRootInc = func(*stpmodel.Instance, ids.PortId) { tripped = true }

	superior := ids.BridgeIdentifier{Priority: 0, MAC: [6]byte{0, 0, 0, 0, 0, 1}}
	msg := bpdu.ConfigBPDU{Type: bpdu.TypeConfig, RootID: superior, BridgeID: superior, MaxAge: 20, HelloTime: 2, ForwardDelay: 15}
	m.ReceiveConfigBPDU(inst, 1, msg)

	if !tripped {
		t.Fatal("expected root-inc callback")
	}
	pv := inst.Port(1)
	if pv.State != stpmodel.Blocking {
		t.Fatalf("expected Blocking after root guard trip, got %v", pv.State)
	}
	if !inst.Bridge.IsRoot() {
		t.Fatal("root guard must not let the instance's root change")
	}
}

func TestTickAdvancesDesignatedPortToForwarding(t *testing.T) {
	m, inst := newTestMachine(t, [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	m.EnableInstance(inst)
	m.Global.FastspanConfigMask.Set(1)
	m.Global.FastspanMask.Set(1) // PortFast active: 1s per stage

	// Instance 0 always falls in group 0; tick it directly rather than
	// burning 5x the iterations rotating through the other groups.
	for i := 0; i < 35; i++ {
		m.Tick(0, true)
	}
	pv := inst.Port(1)
	if pv.State != stpmodel.Forwarding {
		t.Fatalf("expected Forwarding after enough ticks, got %v", pv.State)
	}
}

func TestTickForwardingTransitionDetectsTopologyChange(t *testing.T) {
	m, inst := newTestMachine(t, [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	m.EnableInstance(inst)
	m.Global.FastspanConfigMask.Set(1)
	m.Global.FastspanMask.Set(1) // PortFast active: 1s per stage

	for i := 0; i < 35; i++ {
		m.Tick(0, true)
	}
	pv := inst.Port(1)
	if pv.State != stpmodel.Forwarding {
		t.Fatalf("expected Forwarding after enough ticks, got %v", pv.State)
	}
	if !inst.Bridge.TopologyChangeDetected {
		t.Fatal("expected topologyChangeDetected once the port reached Forwarding")
	}
	if inst.Bridge.TopologyChangeCount == 0 {
		t.Fatal("expected topologyChangeCount to be bumped")
	}
	if !inst.FastAging {
		t.Fatal("expected fast-aging to be armed on topology change")
	}
}

func TestTransmitConfigOnVlan1SendsPVSTBeforeUntagged(t *testing.T) {
	g := stpmodel.NewGlobal(4, 8)
	g.ExtendMode = true
	g.ProtoMode = stpmodel.ProtoPVST
	g.BaseMacAddress = [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

	idx, err := g.AllocateInstance(ids.MinVlan)
	if err != nil {
		t.Fatal(err)
	}
	inst := g.Instance(idx)
	inst.State = stpmodel.Config
	inst.EnableMask.Set(1)
	inst.ControlMask.Set(1)
	inst.RefreshLifecycle()

	var taggedOrder []bool
	m := NewMachine(g, func(_ ids.PortId, _ ids.VlanId, _ []byte, tagged bool) {
		taggedOrder = append(taggedOrder, tagged)
	}, nil, nil, func(ids.PortId) (string, bool, bool) { return "Ethernet1", true, true })

	pv := inst.Port(1)
	m.transmitConfig(inst, pv, m.buildConfigBPDU(inst, pv))

	if len(taggedOrder) != 2 {
		t.Fatalf("expected both a PVST+ and an 802.1D frame, got %d frames", len(taggedOrder))
	}
	if !taggedOrder[0] {
		t.Fatal("expected the tagged PVST+ frame to be sent first")
	}
	if taggedOrder[1] {
		t.Fatal("expected the untagged 802.1D frame to be sent second")
	}
}
