package iface

import "errors"

var (
	// ErrUnknownInterface is returned when an operation names an
	// interface the table has never seen.
	ErrUnknownInterface = errors.New("iface: unknown interface")
	// ErrAlreadyExists is returned when creating a record for a name
	// already present.
	ErrAlreadyExists = errors.New("iface: interface already exists")
	// ErrPortIDPoolExhausted is returned when the LAG id pool has no
	// free slot left.
	ErrPortIDPoolExhausted = errors.New("iface: LAG port-id pool exhausted")
	// ErrNotLAG is returned when a LAG-only operation targets an
	// Ethernet port record.
	ErrNotLAG = errors.New("iface: interface is not a LAG")
	// ErrInvalidName is returned when an Ethernet interface name carries
	// no parseable numeric suffix.
	ErrInvalidName = errors.New("iface: cannot derive port id from name")
)
