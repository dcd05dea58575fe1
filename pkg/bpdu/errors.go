package bpdu

import "errors"

var (
	// ErrFrameTooShort is returned when a frame is truncated before its
	// destination MAC, LLC header, or declared body can be read.
	ErrFrameTooShort = errors.New("bpdu: frame too short")

	// ErrBadLLC is returned when DSAP/SSAP/control don't match either the
	// 802.1D (0x42/0x42/UI) or SNAP (0xAA/0xAA/UI) profile.
	ErrBadLLC = errors.New("bpdu: unrecognized LLC header")

	// ErrBadSNAP is returned when a SNAP-framed packet's OUI or protocol id
	// don't match the Cisco PVST+ profile.
	ErrBadSNAP = errors.New("bpdu: unrecognized SNAP header")

	// ErrUnknownType is returned when the BPDU type byte is none of
	// Config, RSTP, or TCN.
	ErrUnknownType = errors.New("bpdu: unknown BPDU type")

	// ErrBadTag is returned when a PVST+ Config frame's tagLength isn't 2.
	ErrBadTag = errors.New("bpdu: bad PVST+ tag length")

	// ErrBadVlanID is returned when a PVST+ Config frame's embedded vlanId
	// falls outside [1, 4094].
	ErrBadVlanID = errors.New("bpdu: vlan id out of range")
)
