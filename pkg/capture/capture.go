// Package capture implements the bounded BPDU capture ring the
// dump-nl-db / debug StpCtl command reads from (§6.1). It never
// feeds back into protocol state: it's a diagnostic tap, not a queue.
package capture

import (
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/vswcore/pvstd/pkg/ids"
)

// Entry is one captured frame.
type Entry struct {
	Port      ids.PortId
	Vlan      ids.VlanId
	Captured  time.Time
	Frame     []byte
	Direction Direction
}

// Direction distinguishes RX from TX captures.
type Direction int

const (
	RX Direction = iota
	TX
)

// Ring is a fixed-capacity, overwrite-oldest capture buffer.
type Ring struct {
	buf   []Entry
	head  int
	count int
}

// NewRing allocates a ring holding up to capacity entries.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{buf: make([]Entry, capacity)}
}

// Add appends an entry, overwriting the oldest once full.
func (r *Ring) Add(e Entry) {
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Snapshot returns every captured entry, oldest first.
func (r *Ring) Snapshot() []Entry {
	out := make([]Entry, 0, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// WritePCAP dumps the ring's current contents to w in pcap format, for
// the "dump-nl-db" debug command's file-export path.
func WritePCAP(w io.Writer, entries []Entry) error {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		return fmt.Errorf("write pcap header: %w", err)
	}
	for _, e := range entries {
		info := gopacket.CaptureInfo{
			Timestamp:     e.Captured,
			CaptureLength: len(e.Frame),
			Length:        len(e.Frame),
		}
		if err := pw.WritePacket(info, e.Frame); err != nil {
			return fmt.Errorf("write pcap packet: %w", err)
		}
	}
	return nil
}
