package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stp"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

func TestSchedulerDispatchesRxEvents(t *testing.T) {
	g := stpmodel.NewGlobal(2, 4)
	idx, err := g.AllocateInstance(10)
	if err != nil {
		t.Fatal(err)
	}
	inst := g.Instance(idx)
	inst.EnableMask.Set(1)
	inst.ControlMask.Set(1)
	inst.RefreshLifecycle()

	m := stp.NewMachine(g, func(ids.PortId, ids.VlanId, []byte, bool) {}, nil, nil,
		func(ids.PortId) (string, bool, bool) { return "Ethernet1", true, true })
	s := New(m, nil)
	s.OnTick = func(uint64, bool) {}

	s.RxCh <- RxEvent{Port: 1, Vlan: 10, Frame: []byte{0xFF}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if g.DropSTP == 0 {
		t.Fatal("expected the malformed frame to be counted as a drop, proving it reached HandleFrame")
	}
}
