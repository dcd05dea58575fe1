package iface

// Speed enumerates the link speeds the interface table understands, used
// to derive a default STP path cost (§4.3).
type Speed int

const (
	SpeedUnknown Speed = iota
	Speed10M
	Speed100M
	Speed1G
	Speed10G
	Speed25G
	Speed40G
	Speed100G
	Speed400G
	Speed10T // 10 Tb/s, the top of the table; retained for forward headroom
)

func (s Speed) String() string {
	switch s {
	case Speed10M:
		return "10Mb/s"
	case Speed100M:
		return "100Mb/s"
	case Speed1G:
		return "1Gb/s"
	case Speed10G:
		return "10Gb/s"
	case Speed25G:
		return "25Gb/s"
	case Speed40G:
		return "40Gb/s"
	case Speed100G:
		return "100Gb/s"
	case Speed400G:
		return "400Gb/s"
	case Speed10T:
		return "10Tb/s"
	default:
		return "unknown"
	}
}

// extendPathCost and legacyPathCost implement the speed -> default path
// cost table from §4.3. Unknown speed yields 0 (callers must log
// this as an error; the interface table itself only reports the value).
var extendPathCost = map[Speed]int{
	Speed10M:  2000000,
	Speed100M: 200000,
	Speed1G:   20000,
	Speed10G:  2000,
	Speed25G:  800,
	Speed40G:  500,
	Speed100G: 200,
	Speed400G: 50,
}

var legacyPathCost = map[Speed]int{
	Speed10M:  100,
	Speed100M: 19,
	Speed1G:   4,
	Speed10G:  2,
	Speed25G:  1,
	Speed40G:  1,
	Speed100G: 1,
	Speed400G: 1,
}

// DefaultPathCost derives the default path cost for a link speed under the
// given mode.
func DefaultPathCost(s Speed, extendMode bool) int {
	table := legacyPathCost
	if extendMode {
		table = extendPathCost
	}
	cost, ok := table[s]
	if !ok {
		return 0
	}
	return cost
}

// Path-cost bounds per mode (§4 "Supplemented features": the
// original SONiC implementation clamps to these ranges).
const (
	MinPathCostLegacy = 1
	MaxPathCostLegacy = 65535
	MinPathCostExtend = 1
	MaxPathCostExtend = 200000000
)

// ClampPathCost bounds a configured path cost to the valid range for the
// active mode.
func ClampPathCost(cost int, extendMode bool) int {
	min, max := MinPathCostLegacy, MaxPathCostLegacy
	if extendMode {
		min, max = MinPathCostExtend, MaxPathCostExtend
	}
	if cost < min {
		return min
	}
	if cost > max {
		return max
	}
	return cost
}
