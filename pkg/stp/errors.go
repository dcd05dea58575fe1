// Package stp implements the per-VLAN spanning-tree state machine
// (§4.6, component C6): a faithful 802.1D-1998 implementation at
// the per-instance level, with root-guard and a packet-in fast path.
package stp

import "errors"

var (
	// ErrUnknownInstance names a VLAN/instance with no allocated slot.
	ErrUnknownInstance = errors.New("stp: unknown instance")

	// ErrPortNotEnabled is returned when a BPDU or control operation
	// names a port outside the instance's enableMask.
	ErrPortNotEnabled = errors.New("stp: port not enabled on instance")
)
