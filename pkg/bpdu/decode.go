package bpdu

import (
	"encoding/binary"

	"github.com/vswcore/pvstd/pkg/ids"
)

// defaultHelloTime is substituted for a decoded hello-time below 1 second
// (§4.4 validate predicate); it never rewrites the wire bytes, only
// the decoded copy handed to the caller.
const defaultHelloTime = 2

func getConfigBody(buf []byte, extend bool) ConfigBPDU {
	var c ConfigBPDU
	c.Type = Type(buf[3])
	c.Flags = buf[4]
	c.RootID = getBridgeID(buf[5:13], extend)
	c.RootPathCost = binary.BigEndian.Uint32(buf[13:17])
	c.BridgeID = getBridgeID(buf[17:25], extend)
	portVal := binary.BigEndian.Uint16(buf[25:27])
	c.PortID = ids.PortIdentifier{Priority: uint8(portVal >> 12), Number: portVal & 0x0FFF}
	c.MessageAge = agedFromWire(binary.BigEndian.Uint16(buf[27:29]))
	c.MaxAge = agedFromWire(binary.BigEndian.Uint16(buf[29:31]))
	c.HelloTime = agedFromWire(binary.BigEndian.Uint16(buf[31:33]))
	c.ForwardDelay = agedFromWire(binary.BigEndian.Uint16(buf[33:35]))
	if c.HelloTime < 1 {
		c.HelloTime = defaultHelloTime
	}
	return c
}

// Decode identifies and parses a full Ethernet frame carrying a Config, TCN,
// PVST+ Config, or PVST+ TCN BPDU. The frame's destination MAC is not
// inspected here: callers that need the §6.2 "dispatch by destination MAC"
// routing decide which socket handed them the frame before calling Decode;
// Decode itself tells STP and PVST+ apart from the LLC/SNAP header alone,
// which is sufficient to parse the body correctly either way.
//
// extend selects 802.1t extended system-id encoding for the embedded bridge
// identifiers; it must match the mode the bridge that sent the frame is
// running, which the caller already knows from local configuration.
func Decode(frame []byte, extend bool) (*Decoded, error) {
	if len(frame) < ethHeaderLen+llcHeaderLen {
		return nil, ErrFrameTooShort
	}
	dsap, ssap, control := frame[14], frame[15], frame[16]

	switch {
	case dsap == LLCSTPDSAP && ssap == LLCSTPSSAP && control == LLCControlUI:
		return decodeSTPProfile(frame, extend)
	case dsap == LLCSNAPDSAP && ssap == LLCSNAPSSAP && control == LLCControlUI:
		return decodeSNAPProfile(frame, extend)
	default:
		return nil, ErrBadLLC
	}
}

func decodeSTPProfile(frame []byte, extend bool) (*Decoded, error) {
	body := frame[17:]
	if len(body) < tcnBodyLen {
		return nil, ErrFrameTooShort
	}
	switch Type(body[3]) {
	case TypeTCN:
		return &Decoded{Kind: KindSTPTCN}, nil
	case TypeConfig, TypeRSTP:
		if len(body) < configBodyLen {
			return nil, ErrFrameTooShort
		}
		cfg := getConfigBody(body[:configBodyLen], extend)
		return &Decoded{Kind: KindSTPConfig, Config: cfg}, nil
	default:
		return nil, ErrUnknownType
	}
}

func decodeSNAPProfile(frame []byte, extend bool) (*Decoded, error) {
	if len(frame) < ethHeaderLen+llcHeaderLen+snapHeaderLen {
		return nil, ErrFrameTooShort
	}
	snap := frame[17:22]
	var oui [3]byte
	copy(oui[:], snap[0:3])
	protocolID := binary.BigEndian.Uint16(snap[3:5])
	if oui != SNAPOUICisco || protocolID != PVSTProtocolID {
		return nil, ErrBadSNAP
	}

	body := frame[22:]
	if len(body) < tcnBodyLen {
		return nil, ErrFrameTooShort
	}
	switch Type(body[3]) {
	case TypeTCN:
		return &Decoded{Kind: KindPVSTTCN}, nil
	case TypeConfig, TypeRSTP:
		if len(body) < configBodyLen+pvstPaddingLen+pvstTagLen {
			return nil, ErrFrameTooShort
		}
		cfg := getConfigBody(body[:configBodyLen], extend)
		tagOff := configBodyLen + pvstPaddingLen
		tagLength := binary.BigEndian.Uint16(body[tagOff : tagOff+2])
		if tagLength != 2 {
			return nil, ErrBadTag
		}
		vlan := ids.VlanId(binary.BigEndian.Uint16(body[tagOff+2 : tagOff+4]))
		if !vlan.Valid() {
			return nil, ErrBadVlanID
		}
		return &Decoded{Kind: KindPVSTConfig, Config: cfg, VlanID: vlan}, nil
	default:
		return nil, ErrUnknownType
	}
}
