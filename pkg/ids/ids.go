// Package ids holds the small identifier types shared by every pvstd
// component: port/VLAN/instance indices and the bridge/port identifiers
// used in root election (§3).
package ids

import "encoding/binary"

// PortId is the 16-bit opaque port identifier. Ethernet ports derive their
// id from the numeric suffix of their interface name; LAGs are allocated
// from a disjoint pool (§3, §4.3).
type PortId uint16

// BadPortId is the reserved sentinel meaning "no port".
const BadPortId PortId = 0xFFFF

// VlanId is the 12-bit VLAN identifier, valid range 1..4094.
type VlanId uint16

// InvalidVlan is the sentinel used where no VLAN applies.
const InvalidVlan VlanId = 4096

// MinVlan and MaxVlan bound the valid VLAN space.
const (
	MinVlan VlanId = 1
	MaxVlan VlanId = 4094
)

// Valid reports whether v is in the valid VLAN range.
func (v VlanId) Valid() bool { return v >= MinVlan && v <= MaxVlan }

// InstanceIndex is a dense index into the instance array, 0..MaxInstances-1.
type InstanceIndex uint16

// InvalidInstance is the sentinel meaning "no instance".
const InvalidInstance InstanceIndex = 0xFFFF

// PriorityQuantum is the step between valid bridge/port priority values:
// only multiples of the 4-bit priority quantum are accepted (§8).
const PriorityQuantum = 4096

// BridgeIdentifier is (priority: 4 bits, systemId: 12 bits, mac: 48 bits).
type BridgeIdentifier struct {
	Priority uint8 // top 4 bits of the 16-bit priority field
	SystemID uint16
	MAC      [6]byte
}

// priorityField returns the composite 16-bit priority value used for
// comparison: priority<<12 in extend mode (systemId folded into the frame
// elsewhere), or priority<<12 | systemId in legacy mode.
func (b BridgeIdentifier) priorityField(extend bool) uint16 {
	p := uint16(b.Priority&0x0F) << 12
	if extend {
		return p
	}
	return p | (b.SystemID & 0x0FFF)
}

func macUint64(mac [6]byte) uint64 {
	var buf [8]byte
	copy(buf[2:], mac[:])
	return binary.BigEndian.Uint64(buf[:])
}

// Less reports whether b is strictly preferred over o under the bridge-id
// total ordering: compare the composite priority field first, then MAC as
// a big-endian 48-bit integer.
func (b BridgeIdentifier) Less(o BridgeIdentifier, extend bool) bool {
	bp, op := b.priorityField(extend), o.priorityField(extend)
	if bp != op {
		return bp < op
	}
	return macUint64(b.MAC) < macUint64(o.MAC)
}

// Equal reports whether b and o compare identically under extend mode.
func (b BridgeIdentifier) Equal(o BridgeIdentifier, extend bool) bool {
	return b.priorityField(extend) == o.priorityField(extend) && b.MAC == o.MAC
}

// LessEqual reports b <= o under the bridge-id ordering.
func (b BridgeIdentifier) LessEqual(o BridgeIdentifier, extend bool) bool {
	return b.Less(o, extend) || b.Equal(o, extend)
}

// PortIdentifier is (priority: 4 bits, number: 12 bits), compared as a
// 16-bit integer with priority in the high nibble.
type PortIdentifier struct {
	Priority uint8
	Number   uint16
}

// Value returns the 16-bit composite used for comparison and wire encoding.
func (p PortIdentifier) Value() uint16 {
	return uint16(p.Priority&0x0F)<<12 | (p.Number & 0x0FFF)
}

// Less reports whether p sorts before o.
func (p PortIdentifier) Less(o PortIdentifier) bool { return p.Value() < o.Value() }

// Equal reports whether p and o are identical.
func (p PortIdentifier) Equal(o PortIdentifier) bool { return p.Value() == o.Value() }
