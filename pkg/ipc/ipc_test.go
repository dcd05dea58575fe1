package ipc

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vswcore/pvstd/pkg/iface"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/stp"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

func TestFrameRejectsBadMagic(t *testing.T) {
	dg := append([]byte("wrong"), make([]byte, 8)...)
	if _, _, err := Frame(dg); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	dg := Encode(MsgInitReady, payload)
	hdr, data, err := Frame(dg)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Type != MsgInitReady || hdr.Len != uint32(len(payload)) {
		t.Fatalf("unexpected header %+v", hdr)
	}
	if string(data) != string(payload) {
		t.Fatalf("payload mismatch: got %v want %v", data, payload)
	}
}

func TestDecodeInitReady(t *testing.T) {
	data := []byte{1, 0x0A, 0x00} // opcode=1, maxStpInstances=10
	msg, err := decodeInitReady(data)
	if err != nil {
		t.Fatal(err)
	}
	if msg.MaxStpInstances != 10 {
		t.Fatalf("got %d, want 10", msg.MaxStpInstances)
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *iface.Table) {
	t.Helper()
	g := stpmodel.NewGlobal(4, 32)
	tbl := iface.NewTable(32)
	tbl.Upsert(&iface.Record{Name: "Ethernet1", LocalPortID: 1, Valid: true, OperState: iface.OperUp})
	m := stp.NewMachine(g, func(ids.PortId, ids.VlanId, []byte, bool) {}, nil, nil,
		func(p ids.PortId) (string, bool, bool) {
			rec, ok := tbl.GetByPortID(p)
			if !ok {
				return "", true, false
			}
			return rec.Name, true, true
		})
	return &Dispatcher{Global: g, Table: tbl, Machine: m}, tbl
}

func TestApplyVlanConfigEnablesInstance(t *testing.T) {
	d, _ := newTestDispatcher(t)
	msg := VlanConfigMsg{
		Opcode:       1,
		NewInstance:  true,
		VlanID:       100,
		ForwardDelay: 15,
		HelloTime:    2,
		MaxAge:       20,
		Priority:     0x8000,
		Ports:        []PortAttr{{Name: "Ethernet1", Tagged: true, Enabled: true}},
	}
	if err := d.applyVlanConfig(msg); err != nil {
		t.Fatal(err)
	}
	idx, ok := d.Global.InstanceByVlan(100)
	if !ok {
		t.Fatal("expected instance to be allocated")
	}
	inst := d.Global.Instance(idx)
	if inst.State != stpmodel.Active {
		t.Fatalf("expected Active, got %v", inst.State)
	}
	if !inst.Bridge.IsRoot() {
		t.Fatal("a lone bridge must become its own root")
	}
}

func TestApplyVlanConfigRejectsOutOfRangeVlan(t *testing.T) {
	d, _ := newTestDispatcher(t)
	for _, vlan := range []int32{0, 4095} {
		msg := VlanConfigMsg{Opcode: 1, VlanID: vlan, Priority: 0x8000}
		if err := d.applyVlanConfig(msg); err == nil {
			t.Fatalf("expected vlan %d to be rejected", vlan)
		}
		if _, ok := d.Global.InstanceByVlan(ids.VlanId(vlan)); ok {
			t.Fatalf("vlan %d must not have allocated an instance", vlan)
		}
	}
}

func TestApplyVlanConfigRejectsNonQuantumPriority(t *testing.T) {
	d, _ := newTestDispatcher(t)
	msg := VlanConfigMsg{Opcode: 1, VlanID: 200, Priority: 0x8001}
	if err := d.applyVlanConfig(msg); err == nil {
		t.Fatal("expected a non-quantum priority to be rejected")
	}
	if _, ok := d.Global.InstanceByVlan(200); ok {
		t.Fatal("instance must not be allocated when priority validation fails")
	}
}

func TestApplyVlanPortConfigClampsPathCost(t *testing.T) {
	d, tbl := newTestDispatcher(t)
	tbl.Upsert(&iface.Record{Name: "Ethernet2", LocalPortID: 2, Valid: true, OperState: iface.OperUp})
	vlanMsg := VlanConfigMsg{
		Opcode: 1, VlanID: 300, Priority: 0x8000,
		Ports: []PortAttr{{Name: "Ethernet2", Tagged: true, Enabled: true}},
	}
	if err := d.applyVlanConfig(vlanMsg); err != nil {
		t.Fatal(err)
	}
	portMsg := VlanPortConfigMsg{VlanID: 300, Name: "Ethernet2", PathCost: 1 << 30, Priority: -1}
	if err := d.applyVlanPortConfig(portMsg); err != nil {
		t.Fatal(err)
	}
	idx, _ := d.Global.InstanceByVlan(300)
	pv := d.Global.Instance(idx).Port(2)
	if pv.PathCost != uint32(iface.MaxPathCostLegacy) {
		t.Fatalf("expected path cost clamped to %d, got %d", iface.MaxPathCostLegacy, pv.PathCost)
	}
}

func stpCtlDatagram(cmd CtlCommand, token string) []byte {
	data := make([]byte, 4+4+IfNameMax+4+len(token)+1)
	data[0] = byte(cmd)
	if token != "" {
		copy(data[4+4+IfNameMax+4:], token)
	}
	return Encode(MsgStpCtl, data)
}

func TestHandleRejectsMutatingCommandWithoutToken(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Auth = NewStpCtlAuth("shared-secret")

	_, err := d.Handle(stpCtlDatagram(CtlClearAll, ""))
	if err == nil {
		t.Fatal("expected an error for a missing bearer token")
	}
}

func TestHandleAcceptsMutatingCommandWithValidToken(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Auth = NewStpCtlAuth("shared-secret")
	d.DumpText = func(msg StpCtlMsg) string { return "ok" }

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "stpctl"})
	signed, err := token.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Handle(stpCtlDatagram(CtlClearAll, signed)); err != nil {
		t.Fatalf("expected a validly signed token to be accepted, got %v", err)
	}
}

func TestHandleAllowsReadOnlyDumpWithoutTokenEvenWhenAuthEnabled(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Auth = NewStpCtlAuth("shared-secret")
	d.DumpText = func(msg StpCtlMsg) string { return "ok" }

	if _, err := d.Handle(stpCtlDatagram(CtlDumpAll, "")); err != nil {
		t.Fatalf("expected a read-only dump to be unauthenticated, got %v", err)
	}
}

func TestHandleStpCtlReturnsDumpText(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.DumpText = func(msg StpCtlMsg) string { return "dump:" + msg.CmdType.String() }
	data := make([]byte, 4+4+IfNameMax+4)
	// cmdType = CtlDumpGlobal (2)
	data[0] = byte(CtlDumpGlobal)
	dg := Encode(MsgStpCtl, data)

	reply, err := d.Handle(dg)
	if err != nil {
		t.Fatal(err)
	}
	_, payload, err := Frame(reply)
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != "dump:dump-global" {
		t.Fatalf("got %q", payload)
	}
}
