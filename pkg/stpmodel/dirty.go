package stpmodel

// Dirty-field bits. §9 prefers a compile-time bitset over a raw
// C-style enum so the mapping from field to bit can't desynchronize; these
// constants are that bitset, one per struct.

type BridgeInfoField uint32

const (
	BIRootID BridgeInfoField = 1 << iota
	BIRootPathCost
	BIRootPort
	BIMaxAge
	BIHelloTime
	BIForwardDelay
	BIBridgeMaxAge
	BIBridgeHelloTime
	BIBridgeForwardDelay
	BIBridgeID
	BITopologyChangeCount
	BITopologyChangeTick
	BIHoldTime
	BITopologyChangeDetected
	BITopologyChange
	BITopologyChangeTime

	BIAll = BIRootID | BIRootPathCost | BIRootPort | BIMaxAge | BIHelloTime |
		BIForwardDelay | BIBridgeMaxAge | BIBridgeHelloTime | BIBridgeForwardDelay |
		BIBridgeID | BITopologyChangeCount | BITopologyChangeTick | BIHoldTime |
		BITopologyChangeDetected | BITopologyChange | BITopologyChangeTime
)

type PortVectorField uint32

const (
	PVPortID PortVectorField = 1 << iota
	PVState
	PVPathCost
	PVDesignatedRoot
	PVDesignatedCost
	PVDesignatedBridge
	PVDesignatedPort
	PVForwardTransitions
	PVCounters
	PVTopologyChangeAck
	PVConfigPending
	PVKernelState
	PVFlags

	PVAll = PVPortID | PVState | PVPathCost | PVDesignatedRoot | PVDesignatedCost |
		PVDesignatedBridge | PVDesignatedPort | PVForwardTransitions | PVCounters |
		PVTopologyChangeAck | PVConfigPending | PVKernelState | PVFlags
)

type InstanceField uint32

const (
	IVlanID InstanceField = 1 << iota
	IState
	IFastAging
	IEnableMask
	IControlMask
	IUntagMask
	IRxDropBpdu

	IAll = IVlanID | IState | IFastAging | IEnableMask | IControlMask | IUntagMask | IRxDropBpdu
)
