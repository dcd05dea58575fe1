package stpmodel

import "errors"

var (
	// ErrInstanceArrayFull is returned by AllocateInstance when every slot
	// in the fixed-size instance array is in use (§7
	// ResourceExhausted).
	ErrInstanceArrayFull = errors.New("stpmodel: instance array full")

	// ErrUnknownInstance is returned when an operation names a VLAN or
	// instance index with no allocated instance.
	ErrUnknownInstance = errors.New("stpmodel: unknown instance")
)
