package stpmodel

import (
	"testing"

	"github.com/vswcore/pvstd/pkg/ids"
)

func TestBridgeInfoSetRootMarksDirty(t *testing.T) {
	var b BridgeInfo
	b.BridgeID = ids.BridgeIdentifier{Priority: 8, MAC: [6]byte{1, 2, 3, 4, 5, 6}}
	b.BridgeMaxAge, b.BridgeHelloTime, b.BridgeForwardDelay = 20, 2, 15
	b.SetRoot()
	if !b.IsRoot() {
		t.Fatal("expected IsRoot after SetRoot")
	}
	if b.RootID != b.BridgeID || b.RootPathCost != 0 {
		t.Fatalf("unexpected root params: %+v", b)
	}
	if b.ModifiedFields&BIRootID == 0 {
		t.Fatal("expected BIRootID dirty")
	}
}

func TestPortVectorSetStateForwardingCounts(t *testing.T) {
	pv := &PortVector{State: Blocking}
	pv.SetState(Listening)
	pv.SetState(Learning)
	pv.SetState(Forwarding)
	if pv.ForwardTransitions != 1 {
		t.Fatalf("expected 1 forward transition, got %d", pv.ForwardTransitions)
	}
	if pv.KernelState != KernelForward {
		t.Fatalf("expected kernel state forward, got %v", pv.KernelState)
	}
	pv.SetState(Forwarding) // no-op, must not double count
	if pv.ForwardTransitions != 1 {
		t.Fatalf("repeated SetState must not re-count, got %d", pv.ForwardTransitions)
	}
}

func TestPortVectorSupersedesOrdering(t *testing.T) {
	pv := &PortVector{}
	worseRoot := ids.BridgeIdentifier{Priority: 8, MAC: [6]byte{9, 9, 9, 9, 9, 9}}
	betterRoot := ids.BridgeIdentifier{Priority: 1, MAC: [6]byte{1, 1, 1, 1, 1, 1}}
	pv.BecomeDesignated(worseRoot, 0, worseRoot)

	m := DesignatedTuple{Root: betterRoot, Cost: 0, Bridge: betterRoot, Port: ids.PortIdentifier{Number: 1}}
	if !pv.Supersedes(m, false) {
		t.Fatal("expected a lower bridge-id root to supersede")
	}

	same := pv.Tuple()
	if pv.Supersedes(same, false) {
		t.Fatal("identical tuple must not supersede")
	}
}

func TestInstanceLifecycle(t *testing.T) {
	inst := NewInstance(10, 16)
	inst.State = Config
	inst.RefreshLifecycle()
	if inst.State != Config {
		t.Fatalf("empty enableMask must stay Config, got %v", inst.State)
	}
	inst.EnableMask.Set(3)
	inst.RefreshLifecycle()
	if inst.State != Active {
		t.Fatalf("non-empty enableMask must become Active, got %v", inst.State)
	}
	inst.EnableMask.Clear(3)
	inst.RefreshLifecycle()
	if inst.State != Config {
		t.Fatalf("emptied enableMask must return to Config, got %v", inst.State)
	}
}

func TestGlobalAllocateInstanceIdempotentAndExhaustion(t *testing.T) {
	g := NewGlobal(2, 16)
	idx1, err := g.AllocateInstance(10)
	if err != nil {
		t.Fatal(err)
	}
	idx1b, err := g.AllocateInstance(10)
	if err != nil || idx1b != idx1 {
		t.Fatalf("expected idempotent allocation, got %d, %v", idx1b, err)
	}
	if _, err := g.AllocateInstance(20); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AllocateInstance(30); err != ErrInstanceArrayFull {
		t.Fatalf("expected ErrInstanceArrayFull, got %v", err)
	}
	g.FreeInstance(idx1)
	if _, err := g.AllocateInstance(30); err != nil {
		t.Fatalf("expected freed slot to be reusable: %v", err)
	}
}
