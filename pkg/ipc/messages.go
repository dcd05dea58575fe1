package ipc

// PortAttr is VlanConfig's per-port payload entry.
type PortAttr struct {
	Name    string
	Tagged  bool
	Enabled bool
}

const portAttrSize = IfNameMax + 1 + 1

// VlanAttr is PortConfig's per-VLAN payload entry.
type VlanAttr struct {
	InstID int32
	VlanID int32
	Tagged bool
}

const vlanAttrSize = 4 + 4 + 1

// InitReadyMsg triggers interface discovery and state-machine init.
type InitReadyMsg struct {
	Opcode          uint8
	MaxStpInstances uint16
}

func decodeInitReady(data []byte) (InitReadyMsg, error) {
	if len(data) < 3 {
		return InitReadyMsg{}, ErrTruncatedPayload
	}
	return InitReadyMsg{Opcode: data[0], MaxStpInstances: readU16(data[1:3])}, nil
}

// BridgeConfigMsg sets the process-wide proto mode, root-guard timeout,
// and bridge MAC.
type BridgeConfigMsg struct {
	Opcode           uint8
	ProtoMode        uint8
	RootGuardTimeout int32
	BaseMAC          [6]byte
}

func decodeBridgeConfig(data []byte) (BridgeConfigMsg, error) {
	if len(data) < 1+1+4+6 {
		return BridgeConfigMsg{}, ErrTruncatedPayload
	}
	m := BridgeConfigMsg{
		Opcode:           data[0],
		ProtoMode:        data[1],
		RootGuardTimeout: readI32(data[2:6]),
	}
	copy(m.BaseMAC[:], data[6:12])
	return m, nil
}

// VlanConfigMsg creates/updates a VLAN's STP instance and its initial
// port membership.
type VlanConfigMsg struct {
	Opcode       uint8
	NewInstance  bool
	VlanID       int32
	InstID       int32
	ForwardDelay int32
	HelloTime    int32
	MaxAge       int32
	Priority     int32
	Ports        []PortAttr
}

func decodeVlanConfig(data []byte) (VlanConfigMsg, error) {
	const head = 1 + 1 + 4 + 4 + 4 + 4 + 4 + 4 + 4
	if len(data) < head {
		return VlanConfigMsg{}, ErrTruncatedPayload
	}
	m := VlanConfigMsg{
		Opcode:       data[0],
		NewInstance:  data[1] != 0,
		VlanID:       readI32(data[2:6]),
		InstID:       readI32(data[6:10]),
		ForwardDelay: readI32(data[10:14]),
		HelloTime:    readI32(data[14:18]),
		MaxAge:       readI32(data[18:22]),
		Priority:     readI32(data[22:26]),
	}
	count := readI32(data[26:30])
	rest := data[30:]
	for i := int32(0); i < count; i++ {
		off := i * int32(portAttrSize)
		if int(off)+portAttrSize > len(rest) {
			return VlanConfigMsg{}, ErrTruncatedPayload
		}
		entry := rest[off : off+int32(portAttrSize)]
		m.Ports = append(m.Ports, PortAttr{
			Name:    readCString(entry[:IfNameMax]),
			Tagged:  int8(entry[IfNameMax]) != 0,
			Enabled: entry[IfNameMax+1] != 0,
		})
	}
	return m, nil
}

// VlanPortConfigMsg assigns a port's per-VLAN path cost/priority override.
type VlanPortConfigMsg struct {
	VlanID   int32
	Name     string
	InstID   int32
	PathCost int32
	Priority int32
}

func decodeVlanPortConfig(data []byte) (VlanPortConfigMsg, error) {
	const size = 4 + IfNameMax + 4 + 4 + 4
	if len(data) < size {
		return VlanPortConfigMsg{}, ErrTruncatedPayload
	}
	return VlanPortConfigMsg{
		VlanID:   readI32(data[0:4]),
		Name:     readCString(data[4 : 4+IfNameMax]),
		InstID:   readI32(data[4+IfNameMax : 8+IfNameMax]),
		PathCost: readI32(data[8+IfNameMax : 12+IfNameMax]),
		Priority: readI32(data[12+IfNameMax : 16+IfNameMax]),
	}, nil
}

// PortConfigMsg configures a port's guard/fast-span flags and its VLAN
// memberships.
type PortConfigMsg struct {
	Name               string
	Enabled            bool
	RootGuard          bool
	BPDUGuard          bool
	BPDUGuardDoDisable bool
	PortFast           bool
	UplinkFast         bool
	PathCost           int32
	Priority           int32
	Vlans              []VlanAttr
}

func decodePortConfig(data []byte) (PortConfigMsg, error) {
	const head = IfNameMax + 1 + 1 + 1 + 1 + 1 + 1 + 4 + 4 + 4
	if len(data) < head {
		return PortConfigMsg{}, ErrTruncatedPayload
	}
	m := PortConfigMsg{
		Name:               readCString(data[0:IfNameMax]),
		Enabled:            data[IfNameMax] != 0,
		RootGuard:          data[IfNameMax+1] != 0,
		BPDUGuard:          data[IfNameMax+2] != 0,
		BPDUGuardDoDisable: data[IfNameMax+3] != 0,
		PortFast:           data[IfNameMax+4] != 0,
		UplinkFast:         data[IfNameMax+5] != 0,
		PathCost:           readI32(data[IfNameMax+6 : IfNameMax+10]),
		Priority:           readI32(data[IfNameMax+10 : IfNameMax+14]),
	}
	count := readI32(data[IfNameMax+14 : IfNameMax+18])
	rest := data[IfNameMax+18:]
	for i := int32(0); i < count; i++ {
		off := i * int32(vlanAttrSize)
		if int(off)+vlanAttrSize > len(rest) {
			return PortConfigMsg{}, ErrTruncatedPayload
		}
		entry := rest[off : off+int32(vlanAttrSize)]
		m.Vlans = append(m.Vlans, VlanAttr{
			InstID: readI32(entry[0:4]),
			VlanID: readI32(entry[4:8]),
			Tagged: int8(entry[8]) != 0,
		})
	}
	return m, nil
}

// VlanMemConfigMsg adds/removes a port's membership in a VLAN.
type VlanMemConfigMsg struct {
	VlanID   int32
	InstID   int32
	Name     string
	Enabled  bool
	Tagged   bool
	PathCost int32
	Priority int32
}

func decodeVlanMemConfig(data []byte) (VlanMemConfigMsg, error) {
	const size = 4 + 4 + IfNameMax + 1 + 1 + 4 + 4
	if len(data) < size {
		return VlanMemConfigMsg{}, ErrTruncatedPayload
	}
	off := 0
	m := VlanMemConfigMsg{VlanID: readI32(data[off : off+4])}
	off += 4
	m.InstID = readI32(data[off : off+4])
	off += 4
	m.Name = readCString(data[off : off+IfNameMax])
	off += IfNameMax
	m.Enabled = data[off] != 0
	off++
	m.Tagged = int8(data[off]) != 0
	off++
	m.PathCost = readI32(data[off : off+4])
	off += 4
	m.Priority = readI32(data[off : off+4])
	return m, nil
}

// StpCtlMsg carries one of the fifteen control/dump commands, plus an
// optional bearer-token trailer checked against BridgeDefaults.StpCtlAuth
// before a mutating command (clear-*, set-dbg, set-log-level) is honored.
type StpCtlMsg struct {
	CmdType CtlCommand
	VlanID  int32
	Name    string
	Level   int32
	Token   string
}

func decodeStpCtl(data []byte) (StpCtlMsg, error) {
	const size = 4 + 4 + IfNameMax + 4
	if len(data) < size {
		return StpCtlMsg{}, ErrTruncatedPayload
	}
	m := StpCtlMsg{
		CmdType: CtlCommand(readI32(data[0:4])),
		VlanID:  readI32(data[4:8]),
		Name:    readCString(data[8 : 8+IfNameMax]),
		Level:   readI32(data[8+IfNameMax : 12+IfNameMax]),
	}
	if rest := data[size:]; len(rest) > 0 {
		m.Token = readCString(rest)
	}
	return m, nil
}
