//go:build linux
// +build linux

package publish

import (
	"fmt"

	"github.com/vishvananda/netlink"

	"github.com/vswcore/pvstd/pkg/ids"
)

// NewKernelBridgeVlan builds a Capabilities.KernelBridgeVlan backed by
// netlink's bridge VLAN filter (netlink.BridgeVlanAdd/Del), the native
// path §9(d) flags as preferable to shelling out to bridge(8).
func NewKernelBridgeVlan() func(portName string, vlan ids.VlanId, add bool, tagged bool) error {
	return func(portName string, vlan ids.VlanId, add bool, tagged bool) error {
		link, err := netlink.LinkByName(portName)
		if err != nil {
			return fmt.Errorf("kernel bridge vlan %s: %w", portName, err)
		}
		vid := uint16(vlan)
		untagged := !tagged
		if add {
			if err := netlink.BridgeVlanAdd(link, vid, false, untagged, false, false); err != nil {
				return fmt.Errorf("kernel bridge vlan add %s vlan %d: %w", portName, vlan, err)
			}
			return nil
		}
		if err := netlink.BridgeVlanDel(link, vid, false, untagged, false, false); err != nil {
			return fmt.Errorf("kernel bridge vlan del %s vlan %d: %w", portName, vlan, err)
		}
		return nil
	}
}
