package bpdu

import "github.com/vswcore/pvstd/pkg/ids"

// ConfigBPDU holds the fields of an 802.1D Config BPDU body (also the body
// embedded inside a PVST+ Config frame). Message age / max age / hello
// time / forward delay are stored as whole seconds; the 1/256s wire
// encoding (seconds<<8) is applied only at the codec boundary, per the
// open question in §9(b): callers must treat a decoded value as
// immutable seconds, never as the raw wire field.
type ConfigBPDU struct {
	Type         Type
	Flags        uint8
	RootID       ids.BridgeIdentifier
	RootPathCost uint32
	BridgeID     ids.BridgeIdentifier
	PortID       ids.PortIdentifier
	MessageAge   uint8
	MaxAge       uint8
	HelloTime    uint8
	ForwardDelay uint8
}

// TopologyChange reports the TC flag.
func (c *ConfigBPDU) TopologyChange() bool { return c.Flags&FlagTopologyChange != 0 }

// TopologyChangeAcknowledge reports the TCA flag.
func (c *ConfigBPDU) TopologyChangeAcknowledge() bool {
	return c.Flags&FlagTopologyChangeAcknowledge != 0
}

// TCNBPDU holds an 802.1D Topology Change Notification; it carries no
// fields beyond the common header (protocol id / version / type), which
// callers don't need once Decode has identified the frame's Kind.
type TCNBPDU struct{}

// Kind distinguishes the four frame shapes this codec understands.
type Kind int

const (
	KindSTPConfig Kind = iota
	KindSTPTCN
	KindPVSTConfig
	KindPVSTTCN
)

func (k Kind) String() string {
	switch k {
	case KindSTPConfig:
		return "stp-config"
	case KindSTPTCN:
		return "stp-tcn"
	case KindPVSTConfig:
		return "pvst-config"
	case KindPVSTTCN:
		return "pvst-tcn"
	default:
		return "unknown"
	}
}

// Decoded is the result of a successful Decode. Config is meaningful only
// for the Config kinds; a TCN carries no body. VlanID is set only for
// PVST+ Config frames.
type Decoded struct {
	Kind   Kind
	Config ConfigBPDU
	VlanID ids.VlanId
}
