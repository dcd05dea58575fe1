// Package iface implements the interface table (§4.3, component
// C3): an ordered map from interface name to port record, Ethernet/LAG
// port-id allocation, and link-event handling.
//
// The table is mutated only from the scheduler's event-loop goroutine
// (§5), so no lock is used here: single-threaded access is an invariant
// of the surrounding design, not an accident this package needs to
// defend against.
package iface

import (
	"strconv"
	"strings"

	"github.com/vswcore/pvstd/pkg/bitmap"
	"github.com/vswcore/pvstd/pkg/ids"
)

// ComputeMaxPorts derives the frozen maxPorts value from the highest
// Ethernet port suffix observed during discovery: round up to the next
// multiple of 4, then double to reserve LAG id space (§4.3).
func ComputeMaxPorts(maxEthernetSuffix int) int {
	if maxEthernetSuffix < 0 {
		maxEthernetSuffix = 0
	}
	rounded := ((maxEthernetSuffix + 3) / 4) * 4
	if rounded == 0 {
		rounded = 4
	}
	return rounded * 2
}

// Table is the interface table.
type Table struct {
	maxPorts int
	lagBase  ids.PortId
	lagPool  *bitmap.Bitmap // relative offsets into [lagBase, maxPorts)

	order   []string // insertion order of names, for deterministic dumps
	byName  map[string]*Record
	byPort  map[ids.PortId]*Record
}

// NewTable allocates a table whose LAG id pool spans
// [maxPorts/2, maxPorts).
func NewTable(maxPorts int) *Table {
	base := ids.PortId(maxPorts / 2)
	return &Table{
		maxPorts: maxPorts,
		lagBase:  base,
		lagPool:  bitmap.New(maxPorts - int(base)),
		byName:   make(map[string]*Record),
		byPort:   make(map[ids.PortId]*Record),
	}
}

// MaxPorts returns the frozen maximum port count.
func (t *Table) MaxPorts() int { return t.maxPorts }

// EthernetPortID derives a port id from the decimal suffix of an Ethernet
// interface name (e.g. "Ethernet12" -> 12).
func EthernetPortID(name string) (ids.PortId, error) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return ids.BadPortId, ErrInvalidName
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil || n < 0 || n > 0xFFFF {
		return ids.BadPortId, ErrInvalidName
	}
	return ids.PortId(n), nil
}

// AllocateLAGPortID reserves the first free id in the LAG pool.
func (t *Table) AllocateLAGPortID() (ids.PortId, error) {
	off, err := t.lagPool.SetFirstUnset()
	if err != nil {
		return ids.BadPortId, ErrPortIDPoolExhausted
	}
	return t.lagBase + ids.PortId(off), nil
}

// ReleaseLAGPortID returns a LAG id to the pool.
func (t *Table) ReleaseLAGPortID(id ids.PortId) error {
	if id < t.lagBase {
		return ErrNotLAG
	}
	return t.lagPool.Clear(int(id - t.lagBase))
}

// Upsert inserts or replaces a record, keyed by the case-insensitive name.
func (t *Table) Upsert(rec *Record) {
	key := strings.ToLower(rec.Name)
	if _, exists := t.byName[key]; !exists {
		t.order = append(t.order, key)
	}
	t.byName[key] = rec
	t.byPort[rec.LocalPortID] = rec
}

// Get looks up a record by name (case-insensitive).
func (t *Table) Get(name string) (*Record, bool) {
	rec, ok := t.byName[strings.ToLower(name)]
	return rec, ok
}

// GetByPortID looks up a record by its allocated port id.
func (t *Table) GetByPortID(id ids.PortId) (*Record, bool) {
	rec, ok := t.byPort[id]
	return rec, ok
}

// GetByKernelIndex scans for the record with a matching kernel ifindex;
// used to resolve a LAG member's master.
func (t *Table) GetByKernelIndex(kernelIndex int) (*Record, bool) {
	for _, name := range t.order {
		rec := t.byName[name]
		if rec.KernelIndex == kernelIndex {
			return rec, true
		}
	}
	return nil, false
}

// Delete removes a record.
func (t *Table) Delete(name string) {
	key := strings.ToLower(name)
	rec, ok := t.byName[key]
	if !ok {
		return
	}
	delete(t.byPort, rec.LocalPortID)
	delete(t.byName, key)
	for i, n := range t.order {
		if n == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Names returns interface names in table (insertion) order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Records returns every record in table order.
func (t *Table) Records() []*Record {
	out := make([]*Record, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.byName[n])
	}
	return out
}
