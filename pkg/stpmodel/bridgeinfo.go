package stpmodel

import "github.com/vswcore/pvstd/pkg/ids"

// BridgeInfo is the per-instance bridge-level state (§3).
type BridgeInfo struct {
	RootID       ids.BridgeIdentifier
	RootPathCost uint32
	RootPort     ids.PortId

	MaxAge       uint8
	HelloTime    uint8
	ForwardDelay uint8

	BridgeMaxAge       uint8
	BridgeHelloTime    uint8
	BridgeForwardDelay uint8
	BridgeID           ids.BridgeIdentifier

	TopologyChangeCount    uint32
	TopologyChangeTick     uint32 // seconds, wall-clock of last count bump
	HoldTime               uint8  // 6 bits
	TopologyChangeDetected bool
	TopologyChange         bool
	TopologyChangeTime     uint32 // seconds

	ModifiedFields BridgeInfoField
}

func (b *BridgeInfo) mark(f BridgeInfoField) { b.ModifiedFields |= f }

// IsRoot reports whether this bridge is currently the root of the instance.
func (b *BridgeInfo) IsRoot() bool { return b.RootPort == InvalidPort }

// SetRoot installs this bridge as its own root: rootId = bridgeId,
// rootPathCost = 0, rootPort = InvalidPort (§4.6.4).
func (b *BridgeInfo) SetRoot() {
	b.RootID = b.BridgeID
	b.RootPathCost = 0
	b.RootPort = InvalidPort
	b.MaxAge = b.BridgeMaxAge
	b.HelloTime = b.BridgeHelloTime
	b.ForwardDelay = b.BridgeForwardDelay
	b.mark(BIRootID | BIRootPathCost | BIRootPort | BIMaxAge | BIHelloTime | BIForwardDelay)
}

// SetRootVia installs a candidate root port's advertised info as this
// bridge's root parameters (§4.6.4).
func (b *BridgeInfo) SetRootVia(rootID ids.BridgeIdentifier, pathCost uint32, port ids.PortId, maxAge, helloTime, forwardDelay uint8) {
	b.RootID = rootID
	b.RootPathCost = pathCost
	b.RootPort = port
	b.MaxAge = maxAge
	b.HelloTime = helloTime
	b.ForwardDelay = forwardDelay
	b.mark(BIRootID | BIRootPathCost | BIRootPort | BIMaxAge | BIHelloTime | BIForwardDelay)
}

// SetTopologyChangeDetected sets the detected flag, marking it dirty only
// on an actual transition.
func (b *BridgeInfo) SetTopologyChangeDetected(v bool) {
	if b.TopologyChangeDetected == v {
		return
	}
	b.TopologyChangeDetected = v
	b.mark(BITopologyChangeDetected)
}

// SetTopologyChange sets the root-side sticky flag.
func (b *BridgeInfo) SetTopologyChange(v bool) {
	if b.TopologyChange == v {
		return
	}
	b.TopologyChange = v
	b.mark(BITopologyChange)
}

// BumpTopologyChangeCount increments the counter and records the tick it
// happened on.
func (b *BridgeInfo) BumpTopologyChangeCount(nowSeconds uint32) {
	b.TopologyChangeCount++
	b.TopologyChangeTick = nowSeconds
	b.mark(BITopologyChangeCount | BITopologyChangeTick)
}
