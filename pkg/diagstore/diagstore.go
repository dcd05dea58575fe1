// Package diagstore persists protocol history (topology changes, root
// elections, guard trips) to SQLite for post-mortem diagnosis. It is
// write-mostly: startup never reads this store back to reconstruct
// protocol state, so every row here is an
// observation, never an input.
package diagstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vswcore/pvstd/pkg/ids"
)

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS topology_changes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vlan INTEGER NOT NULL,
	port INTEGER NOT NULL,
	at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS root_elections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vlan INTEGER NOT NULL,
	root_mac TEXT NOT NULL,
	root_priority INTEGER NOT NULL,
	root_port INTEGER NOT NULL,
	at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS guard_actions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vlan INTEGER NOT NULL,
	port INTEGER NOT NULL,
	kind TEXT NOT NULL,
	at TEXT NOT NULL
);
`

// Open creates/migrates the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open diagstore %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate diagstore schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordTopologyChange logs a topology-change detection event.
func (s *Store) RecordTopologyChange(vlan ids.VlanId, port ids.PortId, at time.Time) error {
	_, err := s.db.Exec(`INSERT INTO topology_changes (vlan, port, at) VALUES (?, ?, ?)`,
		int(vlan), int(port), at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record topology change: %w", err)
	}
	return nil
}

// RecordRootElection logs a new root bridge being adopted for a VLAN.
func (s *Store) RecordRootElection(vlan ids.VlanId, root ids.BridgeIdentifier, rootPort ids.PortId, at time.Time) error {
	mac := fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		root.MAC[0], root.MAC[1], root.MAC[2], root.MAC[3], root.MAC[4], root.MAC[5])
	_, err := s.db.Exec(`INSERT INTO root_elections (vlan, root_mac, root_priority, root_port, at) VALUES (?, ?, ?, ?, ?)`,
		int(vlan), mac, int(root.Priority), int(rootPort), at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record root election: %w", err)
	}
	return nil
}

// RecordGuardAction logs a root-guard/BPDU-guard trip.
func (s *Store) RecordGuardAction(vlan ids.VlanId, port ids.PortId, kind string, at time.Time) error {
	_, err := s.db.Exec(`INSERT INTO guard_actions (vlan, port, kind, at) VALUES (?, ?, ?, ?)`,
		int(vlan), int(port), kind, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record guard action: %w", err)
	}
	return nil
}

// RecentTopologyChanges returns the last limit topology-change rows,
// newest first, for the StpCtl text-dump reply.
func (s *Store) RecentTopologyChanges(limit int) ([]TopologyChangeRow, error) {
	rows, err := s.db.Query(`SELECT vlan, port, at FROM topology_changes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query topology changes: %w", err)
	}
	defer rows.Close()

	var out []TopologyChangeRow
	for rows.Next() {
		var r TopologyChangeRow
		var at string
		if err := rows.Scan(&r.Vlan, &r.Port, &at); err != nil {
			return nil, fmt.Errorf("scan topology change row: %w", err)
		}
		r.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopologyChangeRow is one row of RecentTopologyChanges' result.
type TopologyChangeRow struct {
	Vlan int
	Port int
	At   time.Time
}
