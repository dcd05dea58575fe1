package diagstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vswcore/pvstd/pkg/ids"
)

func TestRecordAndQueryTopologyChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.RecordTopologyChange(ids.VlanId(100+i), ids.PortId(i), base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := s.RecentTopologyChanges(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Vlan != 102 {
		t.Fatalf("expected newest-first ordering, got vlan %d", rows[0].Vlan)
	}
}

func TestRecordRootElection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	root := ids.BridgeIdentifier{Priority: 8, MAC: [6]byte{0, 1, 2, 3, 4, 5}}
	if err := s.RecordRootElection(10, root, ids.PortId(1), time.Now()); err != nil {
		t.Fatalf("unexpected error recording a root election: %v", err)
	}
}

func TestRecordGuardAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.RecordGuardAction(20, ids.PortId(3), "bpdu-guard-shutdown", time.Now()); err != nil {
		t.Fatalf("unexpected error recording a guard action: %v", err)
	}
}

func TestOpenMigratesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopening an existing store should not fail schema migration: %v", err)
	}
	defer s2.Close()
}
