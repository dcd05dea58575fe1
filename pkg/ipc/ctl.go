package ipc

// CtlCommand enumerates StpCtl's fifteen control/dump commands
// (§6.1).
type CtlCommand int32

const (
	CtlHelp CtlCommand = iota
	CtlDumpAll
	CtlDumpGlobal
	CtlDumpVlanAll
	CtlDumpVlan
	CtlDumpIntf
	CtlSetLogLevel
	CtlDumpNlDB
	CtlDumpNlDBIntf
	CtlDumpLibevStats
	CtlSetDbg
	CtlClearAll
	CtlClearVlan
	CtlClearIntf
	CtlClearVlanIntf
)

var ctlNames = map[CtlCommand]string{
	CtlHelp:           "help",
	CtlDumpAll:        "dump-all",
	CtlDumpGlobal:     "dump-global",
	CtlDumpVlanAll:    "dump-vlan-all",
	CtlDumpVlan:       "dump-vlan",
	CtlDumpIntf:       "dump-intf",
	CtlSetLogLevel:    "set-log-level",
	CtlDumpNlDB:       "dump-nl-db",
	CtlDumpNlDBIntf:   "dump-nl-db-intf",
	CtlDumpLibevStats: "dump-libev-stats",
	CtlSetDbg:         "set-dbg",
	CtlClearAll:       "clear-all",
	CtlClearVlan:      "clear-vlan",
	CtlClearIntf:      "clear-intf",
	CtlClearVlanIntf:  "clear-vlan-intf",
}

func (c CtlCommand) String() string {
	if s, ok := ctlNames[c]; ok {
		return s
	}
	return "unknown"
}

// Mutating reports whether c changes daemon state rather than just
// reading it. Dumps and help stay open even when StpCtlAuth is enabled;
// only commands in this set require a valid bearer token.
func (c CtlCommand) Mutating() bool {
	switch c {
	case CtlSetLogLevel, CtlSetDbg, CtlClearAll, CtlClearVlan, CtlClearIntf, CtlClearVlanIntf:
		return true
	default:
		return false
	}
}
