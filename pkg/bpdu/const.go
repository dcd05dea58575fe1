// Package bpdu implements the 802.1D/PVST+ BPDU codec (§4.4,
// component C4): bit-exact encode/decode/validate for Config, TCN, PVST+
// Config, and PVST+ TCN frames.
//
// gopacket ships no BPDU layer, and its generic LLC/SNAP layers don't give
// the tolerant-parse control the validate predicates below need (the
// hello-time clamp-on-receive, the RSTP-type-tolerated-as-802.1D rule), so
// this codec hand-rolls the wire layout directly — see DESIGN.md.
package bpdu

// Destination MAC addresses.
var (
	STPDestMAC  = [6]byte{0x01, 0x80, 0xC2, 0x00, 0x00, 0x00}
	PVSTDestMAC = [6]byte{0x01, 0x00, 0x0C, 0xCC, 0xCC, 0xCD}
)

// LLC / SNAP constants.
const (
	LLCControlUI = 0x03

	LLCSTPDSAP = 0x42
	LLCSTPSSAP = 0x42

	LLCSNAPDSAP = 0xAA
	LLCSNAPSSAP = 0xAA
)

// SNAPOUICisco is the Cisco OUI used in the PVST+ SNAP header.
var SNAPOUICisco = [3]byte{0x00, 0x00, 0x0C}

// PVSTProtocolID is the SNAP protocol-id carried by PVST+ frames.
const PVSTProtocolID = 0x010B

// Type is the BPDU type byte.
type Type uint8

const (
	TypeConfig Type = 0x00
	TypeRSTP   Type = 0x02
	TypeTCN    Type = 0x80
)

// Flags bit positions in the Config BPDU flags byte (802.1D only defines
// bit0 and bit7; the rest are reserved/RSTP-only and ignored here, per the
// "processed with 802.1D rules" decision in §9(a)).
const (
	FlagTopologyChange           = 0x01
	FlagTopologyChangeAcknowledge = 0x80
)

// Byte sizes of the pieces that make up a frame, used both to size
// buffers on encode and to bounds-check on decode.
const (
	ethHeaderLen    = 6 + 6 + 2 // dst + src + 802.3 length field
	llcHeaderLen    = 3         // DSAP + SSAP + Control
	snapHeaderLen   = 3 + 2     // OUI + protocol id
	configBodyLen   = 2 + 1 + 1 + 1 + 8 + 4 + 8 + 2 + 2 + 2 + 2 + 2 // = 35
	tcnBodyLen      = 2 + 1 + 1                                     // = 4
	pvstPaddingLen  = 3
	pvstTagLen      = 2 + 2 // tagLength field + vlanId
	pvstTCNPadding  = 38
)
