package bpdu

import (
	"testing"

	"github.com/vswcore/pvstd/pkg/ids"
)

var testSrcMAC = [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

func sampleConfig() ConfigBPDU {
	return ConfigBPDU{
		Type:         TypeConfig,
		Flags:        FlagTopologyChange,
		RootID:       ids.BridgeIdentifier{Priority: 2, SystemID: 100, MAC: [6]byte{1, 2, 3, 4, 5, 6}},
		RootPathCost: 19,
		BridgeID:     ids.BridgeIdentifier{Priority: 8, SystemID: 200, MAC: testSrcMAC},
		PortID:       ids.PortIdentifier{Priority: 8, Number: 12},
		MessageAge:   1,
		MaxAge:       20,
		HelloTime:    2,
		ForwardDelay: 15,
	}
}

func TestRoundTripSTPConfig(t *testing.T) {
	in := sampleConfig()
	frame := EncodeSTPConfig(testSrcMAC, in, false)

	got, err := Decode(frame, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindSTPConfig {
		t.Fatalf("kind = %v", got.Kind)
	}
	if got.Config != in {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got.Config, in)
	}
}

func TestRoundTripSTPConfigExtendMode(t *testing.T) {
	in := sampleConfig()
	frame := EncodeSTPConfig(testSrcMAC, in, true)

	got, err := Decode(frame, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// SystemID isn't carried on the wire in extend mode.
	want := in
	want.RootID.SystemID = 0
	want.BridgeID.SystemID = 0
	if got.Config != want {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got.Config, want)
	}
}

func TestRoundTripSTPTCN(t *testing.T) {
	frame := EncodeSTPTCN(testSrcMAC)
	got, err := Decode(frame, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindSTPTCN {
		t.Fatalf("kind = %v", got.Kind)
	}
}

func TestRoundTripPVSTConfig(t *testing.T) {
	in := sampleConfig()
	frame := EncodePVSTConfig(testSrcMAC, in, ids.VlanId(100), false)

	got, err := Decode(frame, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindPVSTConfig {
		t.Fatalf("kind = %v", got.Kind)
	}
	if got.VlanID != ids.VlanId(100) {
		t.Fatalf("vlan id = %d", got.VlanID)
	}
	if got.Config != in {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got.Config, in)
	}
}

func TestRoundTripPVSTTCN(t *testing.T) {
	frame := EncodePVSTTCN(testSrcMAC)
	got, err := Decode(frame, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindPVSTTCN {
		t.Fatalf("kind = %v", got.Kind)
	}
}

func TestDecodeClampsShortHelloTime(t *testing.T) {
	in := sampleConfig()
	in.HelloTime = 0
	frame := EncodeSTPConfig(testSrcMAC, in, false)

	got, err := Decode(frame, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Config.HelloTime != defaultHelloTime {
		t.Fatalf("expected clamp to %d, got %d", defaultHelloTime, got.Config.HelloTime)
	}
}

func TestDecodeRejectsBadLLC(t *testing.T) {
	frame := EncodeSTPConfig(testSrcMAC, sampleConfig(), false)
	frame[14] = 0x99
	if _, err := Decode(frame, false); err != ErrBadLLC {
		t.Fatalf("expected ErrBadLLC, got %v", err)
	}
}

func TestDecodeRejectsBadSNAPOUI(t *testing.T) {
	frame := EncodePVSTConfig(testSrcMAC, sampleConfig(), ids.VlanId(1), false)
	frame[17] = 0xFF // corrupt OUI byte
	if _, err := Decode(frame, false); err != ErrBadSNAP {
		t.Fatalf("expected ErrBadSNAP, got %v", err)
	}
}

func TestDecodeRejectsOutOfRangeVlan(t *testing.T) {
	frame := EncodePVSTConfig(testSrcMAC, sampleConfig(), ids.VlanId(1), false)
	// tag vlanId occupies the last two bytes of the frame.
	frame[len(frame)-2] = 0xFF
	frame[len(frame)-1] = 0xFF
	if _, err := Decode(frame, false); err != ErrBadVlanID {
		t.Fatalf("expected ErrBadVlanID, got %v", err)
	}
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	frame := EncodeSTPConfig(testSrcMAC, sampleConfig(), false)
	if _, err := Decode(frame[:20], false); err != ErrFrameTooShort {
		t.Fatalf("expected ErrFrameTooShort, got %v", err)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	frame := EncodeSTPConfig(testSrcMAC, sampleConfig(), false)
	frame[17+3] = 0x55 // body type byte
	if _, err := Decode(frame, false); err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}
