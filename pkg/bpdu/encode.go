package bpdu

import (
	"encoding/binary"

	"github.com/vswcore/pvstd/pkg/ids"
)

// agedToWire converts a whole-second field into the 1/256s wire encoding
// (seconds<<8), matching "Message-age/max-age/hello/fwd-delay are
// transmitted as seconds << 8" (§4.4).
func agedToWire(seconds uint8) uint16 { return uint16(seconds) << 8 }

func agedFromWire(v uint16) uint8 { return uint8(v >> 8) }

func putBridgeID(buf []byte, b ids.BridgeIdentifier, extend bool) {
	priorityField := uint16(b.Priority&0x0F) << 12
	if !extend {
		priorityField |= b.SystemID & 0x0FFF
	}
	binary.BigEndian.PutUint16(buf[0:2], priorityField)
	copy(buf[2:8], b.MAC[:])
}

func getBridgeID(buf []byte, extend bool) ids.BridgeIdentifier {
	priorityField := binary.BigEndian.Uint16(buf[0:2])
	var bi ids.BridgeIdentifier
	bi.Priority = uint8(priorityField >> 12)
	if !extend {
		bi.SystemID = priorityField & 0x0FFF
	}
	copy(bi.MAC[:], buf[2:8])
	return bi
}

// putConfigBody writes the 35-byte 802.1D Config BPDU body (shared by the
// plain STP frame and the body embedded inside a PVST+ Config frame).
func putConfigBody(buf []byte, b ConfigBPDU, extend bool) {
	binary.BigEndian.PutUint16(buf[0:2], 0x0000) // protocol id
	buf[2] = 0x00                                // version id
	buf[3] = byte(b.Type)
	buf[4] = b.Flags
	putBridgeID(buf[5:13], b.RootID, extend)
	binary.BigEndian.PutUint32(buf[13:17], b.RootPathCost)
	putBridgeID(buf[17:25], b.BridgeID, extend)
	binary.BigEndian.PutUint16(buf[25:27], b.PortID.Value())
	binary.BigEndian.PutUint16(buf[27:29], agedToWire(b.MessageAge))
	binary.BigEndian.PutUint16(buf[29:31], agedToWire(b.MaxAge))
	binary.BigEndian.PutUint16(buf[31:33], agedToWire(b.HelloTime))
	binary.BigEndian.PutUint16(buf[33:35], agedToWire(b.ForwardDelay))
}

func putTCNBody(buf []byte) {
	binary.BigEndian.PutUint16(buf[0:2], 0x0000)
	buf[2] = 0x00
	buf[3] = byte(TypeTCN)
}

func putEthHeader(buf []byte, dst, src [6]byte, length uint16) {
	copy(buf[0:6], dst[:])
	copy(buf[6:12], src[:])
	binary.BigEndian.PutUint16(buf[12:14], length)
}

// EncodeSTPConfig builds a full 802.1D Config BPDU Ethernet frame.
func EncodeSTPConfig(srcMAC [6]byte, b ConfigBPDU, extend bool) []byte {
	length := uint16(llcHeaderLen + configBodyLen)
	frame := make([]byte, ethHeaderLen+int(length))
	putEthHeader(frame, STPDestMAC, srcMAC, length)
	frame[14], frame[15], frame[16] = LLCSTPDSAP, LLCSTPSSAP, LLCControlUI
	putConfigBody(frame[17:17+configBodyLen], b, extend)
	return frame
}

// EncodeSTPTCN builds a full 802.1D TCN BPDU Ethernet frame.
func EncodeSTPTCN(srcMAC [6]byte) []byte {
	length := uint16(llcHeaderLen + tcnBodyLen)
	frame := make([]byte, ethHeaderLen+int(length))
	putEthHeader(frame, STPDestMAC, srcMAC, length)
	frame[14], frame[15], frame[16] = LLCSTPDSAP, LLCSTPSSAP, LLCControlUI
	putTCNBody(frame[17 : 17+tcnBodyLen])
	return frame
}

func putSNAPHeader(buf []byte) {
	buf[0], buf[1], buf[2] = LLCSNAPDSAP, LLCSNAPSSAP, LLCControlUI
	copy(buf[3:6], SNAPOUICisco[:])
	binary.BigEndian.PutUint16(buf[6:8], PVSTProtocolID)
}

// EncodePVSTConfig builds a full PVST+ Config BPDU Ethernet frame: SNAP
// header, the 802.1D Config body, 3 zero padding bytes, then the VLAN tag
// fields (tagLength=2, vlanId).
func EncodePVSTConfig(srcMAC [6]byte, b ConfigBPDU, vlan ids.VlanId, extend bool) []byte {
	total := (llcHeaderLen + snapHeaderLen) + configBodyLen + pvstPaddingLen + pvstTagLen
	length := uint16(total)
	frame := make([]byte, ethHeaderLen+total)
	putEthHeader(frame, PVSTDestMAC, srcMAC, length)
	putSNAPHeader(frame[14:22])
	off := 22
	putConfigBody(frame[off:off+configBodyLen], b, extend)
	off += configBodyLen
	off += pvstPaddingLen // zero padding, buffer already zeroed
	binary.BigEndian.PutUint16(frame[off:off+2], 2) // tagLength
	binary.BigEndian.PutUint16(frame[off+2:off+4], uint16(vlan))
	return frame
}

// EncodePVSTTCN builds a full PVST+ TCN BPDU Ethernet frame: SNAP header,
// the 802.1D TCN body, then 38 zero padding bytes. The wire format carries
// no VLAN field; the VLAN is conveyed out-of-band by the (port, vlan) tag
// the transport layer applies.
func EncodePVSTTCN(srcMAC [6]byte) []byte {
	total := (llcHeaderLen + snapHeaderLen) + tcnBodyLen + pvstTCNPadding
	length := uint16(total)
	frame := make([]byte, ethHeaderLen+total)
	putEthHeader(frame, PVSTDestMAC, srcMAC, length)
	putSNAPHeader(frame[14:22])
	putTCNBody(frame[22 : 22+tcnBodyLen])
	return frame
}
