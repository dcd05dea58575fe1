// Command pvstd runs the per-VLAN spanning tree daemon: it discovers
// Ethernet/LAG ports over netlink, exchanges BPDUs over raw packet
// sockets, and accepts VLAN/port/bridge configuration over a Unix
// datagram control socket.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"github.com/vswcore/pvstd/internal/log"
	"github.com/vswcore/pvstd/pkg/capture"
	"github.com/vswcore/pvstd/pkg/config"
	"github.com/vswcore/pvstd/pkg/diagstore"
	"github.com/vswcore/pvstd/pkg/guard"
	"github.com/vswcore/pvstd/pkg/ids"
	"github.com/vswcore/pvstd/pkg/iface"
	"github.com/vswcore/pvstd/pkg/ipc"
	"github.com/vswcore/pvstd/pkg/netwatch"
	"github.com/vswcore/pvstd/pkg/publish"
	"github.com/vswcore/pvstd/pkg/rawsock"
	"github.com/vswcore/pvstd/pkg/scheduler"
	"github.com/vswcore/pvstd/pkg/stp"
	"github.com/vswcore/pvstd/pkg/stpmodel"
)

const version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("pvstd v%s\n", version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}
	run()
}

func run() {
	fs := flag.NewFlagSet("pvstd", flag.ExitOnError)
	configFile := fs.String("config", "/etc/pvstd/bridge.json", "path to the bootstrap config file")
	fs.Parse(os.Args[1:])

	bd := config.DefaultBridgeDefaults()
	if _, err := os.Stat(*configFile); err == nil {
		loaded, err := config.LoadBridgeDefaults(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pvstd: failed to load %s: %v\n", *configFile, err)
			os.Exit(1)
		}
		bd = loaded
	}

	logger := log.New(bd.LogLevel)
	base := log.Component(logger, "main")
	base.Infof("starting pvstd v%s", version)

	diag, err := diagstore.Open(bd.DiagStorePath)
	if err != nil {
		base.WithError(err).Warn("diagnostic store unavailable, continuing without history")
	} else {
		defer diag.Close()
	}

	maxPorts := iface.ComputeMaxPorts(64)
	table := iface.NewTable(maxPorts)
	global := stpmodel.NewGlobal(bd.MaxStpInstances, maxPorts)
	global.ExtendMode = true
	if mac, err := parseMAC(bd.BaseMAC); err == nil {
		global.BaseMacAddress = mac
	}
	if bd.ProtoMode == "none" {
		global.ProtoMode = stpmodel.ProtoNone
	} else {
		global.ProtoMode = stpmodel.ProtoPVST
	}
	global.RootProtectTimeout = uint32(bd.RootProtectDuration().Seconds())

	sockets := make(map[ids.PortId]*rawsock.Socket)

	portName := func(port ids.PortId) (string, bool, bool) {
		rec, ok := table.GetByPortID(port)
		if !ok {
			return "", true, false
		}
		return rec.Name, true, true
	}

	tx := func(port ids.PortId, vlan ids.VlanId, frame []byte, tagged bool) {
		sock, ok := sockets[port]
		if !ok {
			return
		}
		if err := sock.Send(frame); err != nil {
			base.WithError(err).WithField("port", port).Warn("bpdu transmit failed")
		}
	}

	adminDown := func(portName string, physical bool) {
		base.WithField("port", portName).Warn("bpdu guard shut the port down")
		if diag != nil {
			_ = diag.RecordGuardAction(0, ids.BadPortId, "bpdu-guard-shutdown", now())
		}
	}

	onRootInc := func(inst *stpmodel.Instance, port ids.PortId) {
		if diag != nil {
			_ = diag.RecordGuardAction(inst.VlanID, port, "root-guard-block", now())
		}
	}

	machine := stp.NewMachine(global, tx, adminDown, onRootInc, portName)

	ring := capture.NewRing(bd.CaptureRingSize)

	syncer := publish.New(publish.Capabilities{
		PublishVlanInstance: func(vlan ids.VlanId, instance ids.InstanceIndex, fields publish.VlanInstanceFields) error {
			base.WithField("vlan", vlan).Debug("publish vlan instance")
			return nil
		},
		PublishVlanPort: func(vlan ids.VlanId, portName string, fields publish.VlanPortFields) error {
			base.WithFields(logEntryFields(vlan, portName)).Debug("publish vlan port")
			return nil
		},
		PublishPortState: func(portName string, instance ids.InstanceIndex, state stpmodel.PortState) error {
			base.WithField("port", portName).Infof("port state -> %v", state)
			return nil
		},
		PublishFastAge: func(vlan ids.VlanId, on bool) error {
			base.WithField("vlan", vlan).Debugf("fast age -> %v", on)
			return nil
		},
		KernelBridgeVlan: publish.NewKernelBridgeVlan(),
	}, portName)

	sched := scheduler.New(machine, base)
	sched.Sync = syncer

	dispatcher := &ipc.Dispatcher{
		Global:  global,
		Table:   table,
		Machine: machine,
		OnInitReady: func(maxStpInstances uint16) {
			base.Infof("ipc init-ready: peer advertises %d instances", maxStpInstances)
		},
		DumpText: func(msg ipc.StpCtlMsg) string {
			if msg.CmdType == ipc.CtlDumpNlDB {
				return dumpCaptureRing(base, bd.CaptureDumpDir, ring)
			}
			return fmt.Sprintf("%s: vlan=%d name=%q\n", msg.CmdType, msg.VlanID, msg.Name)
		},
	}
	if bd.StpCtlAuth.Enabled {
		dispatcher.Auth = ipc.NewStpCtlAuth(bd.StpCtlAuth.Secret)
	}

	watcher := netwatch.New(func(masterIndex int) (bool, bool) {
		rec, ok := table.GetByKernelIndex(masterIndex)
		if !ok {
			return false, false
		}
		return rec.Kind == iface.KindLAG, true
	})

	applyProtectionDefaults := func(port ids.PortId) {
		if bd.Protection.RootGuard {
			global.RootProtectMask.Set(int(port))
		}
		if bd.Protection.BPDUGuard {
			global.ProtectMask.Set(int(port))
		}
		if bd.Protection.BPDUGuardDoDisable {
			global.ProtectDoDisableMask.Set(int(port))
		}
		if bd.Protection.PortFast {
			global.FastspanConfigMask.Set(int(port))
		}
		if bd.Protection.UplinkFast {
			global.FastuplinkMask.Set(int(port))
		}
	}

	opts := iface.Options{
		ExtendMode: global.ExtendMode,
		OnPortEvent: func(portID ids.PortId, up bool) {
			if up {
				applyProtectionDefaults(portID)
				if guard.IsPortFastConfigured(global, portID) {
					guard.ArmPortFast(global, portID)
				}
				openRawSocket(base, table, sockets, portID, sched, ring)
			} else {
				closeRawSocket(sockets, portID)
			}
		},
	}

	go func() {
		err := watcher.Run(func(ev iface.LinkEvent, isAdd bool) {
			sched.LinkCh <- func() {
				if err := table.OnLinkEvent(ev, isAdd, false, opts); err != nil {
					base.WithError(err).WithField("interface", ev.Name).Warn("link event rejected")
				}
			}
		})
		if err != nil {
			base.WithError(err).Fatal("netlink link watcher failed")
		}
	}()

	if err := discoverExisting(table, opts); err != nil {
		base.WithError(err).Warn("initial interface discovery incomplete")
	}
	for _, rec := range table.Records() {
		if rec.Kind == iface.KindEthernet && rec.OperState == iface.OperUp {
			openRawSocket(base, table, sockets, rec.LocalPortID, sched, ring)
		}
	}

	ctlAddr := &net.UnixAddr{Name: bd.CtlSocketPath, Net: "unixgram"}
	_ = os.Remove(bd.CtlSocketPath)
	ctlConn, err := net.ListenUnixgram("unixgram", ctlAddr)
	if err != nil {
		base.WithError(err).Warn("control socket unavailable, StpCtl disabled")
	} else {
		defer ctlConn.Close()
		go serveCtl(ctlConn, dispatcher, sched, base)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		base.Info("received shutdown signal")
		cancel()
	}()

	base.Info("event loop starting")
	sched.Run(ctx)
	watcher.Close()
	base.Info("pvstd stopped")
}

func now() time.Time { return time.Now() }

func parseMAC(s string) ([6]byte, error) {
	var out [6]byte
	if s == "" {
		return out, fmt.Errorf("empty mac")
	}
	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != 6 {
		return out, fmt.Errorf("invalid mac %q", s)
	}
	copy(out[:], hw)
	return out, nil
}

func logEntryFields(vlan ids.VlanId, port string) map[string]interface{} {
	return map[string]interface{}{"vlan": vlan, "port": port}
}

func discoverExisting(table *iface.Table, opts iface.Options) error {
	links, err := netlink.LinkList()
	if err != nil {
		return fmt.Errorf("link discovery: %w", err)
	}
	for _, link := range links {
		attrs := link.Attrs()
		_, isBond := link.(*netlink.Bond)
		ev := iface.LinkEvent{
			Name:        attrs.Name,
			KernelIndex: attrs.Index,
			OperState:   operStateOf(attrs.Flags),
			IsBond:      isBond,
		}
		copy(ev.MAC[:], attrs.HardwareAddr)
		if _, err := iface.EthernetPortID(attrs.Name); err != nil && !isBond {
			continue
		}
		if err := table.OnLinkEvent(ev, true, true, opts); err != nil {
			continue
		}
	}
	return nil
}

func operStateOf(flags net.Flags) iface.OperState {
	if flags&net.FlagUp != 0 {
		return iface.OperUp
	}
	return iface.OperDown
}

func openRawSocket(base *logrus.Entry, table *iface.Table, sockets map[ids.PortId]*rawsock.Socket, portID ids.PortId, sched *scheduler.Scheduler, ring *capture.Ring) {
	rec, ok := table.GetByPortID(portID)
	if !ok {
		return
	}
	if _, exists := sockets[portID]; exists {
		return
	}
	sock, err := rawsock.Open(rec.KernelIndex)
	if err != nil {
		base.WithError(err).WithField("port", rec.Name).Warn("failed to open raw socket")
		return
	}
	sockets[portID] = sock
	go readLoop(sock, portID, sched, ring)
}

func closeRawSocket(sockets map[ids.PortId]*rawsock.Socket, portID ids.PortId) {
	sock, ok := sockets[portID]
	if !ok {
		return
	}
	sock.Close()
	delete(sockets, portID)
}

func readLoop(sock *rawsock.Socket, portID ids.PortId, sched *scheduler.Scheduler, ring *capture.Ring) {
	buf := make([]byte, 1600)
	for {
		n, err := sock.Recv(buf)
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		ring.Add(capture.Entry{Port: portID, Captured: time.Now(), Frame: frame, Direction: capture.RX})
		select {
		case sched.RxCh <- scheduler.RxEvent{Port: portID, Vlan: ids.MinVlan, Frame: frame}:
		default:
		}
	}
}

func dumpCaptureRing(base *logrus.Entry, dumpDir string, ring *capture.Ring) string {
	entries := ring.Snapshot()
	if dumpDir == "" {
		return fmt.Sprintf("bpdu capture ring: %d frames buffered (no capture_dump_dir configured)\n", len(entries))
	}
	path := filepath.Join(dumpDir, fmt.Sprintf("pvstd-capture-%d.pcap", time.Now().Unix()))
	f, err := os.Create(path)
	if err != nil {
		base.WithError(err).Warn("failed to create pcap dump file")
		return fmt.Sprintf("bpdu capture ring: %d frames buffered (pcap dump failed: %v)\n", len(entries), err)
	}
	defer f.Close()
	if err := capture.WritePCAP(f, entries); err != nil {
		base.WithError(err).Warn("failed to write pcap dump")
		return fmt.Sprintf("bpdu capture ring: %d frames buffered (pcap dump failed: %v)\n", len(entries), err)
	}
	return fmt.Sprintf("bpdu capture ring: %d frames buffered, dumped to %s\n", len(entries), path)
}

func serveCtl(conn *net.UnixConn, d *ipc.Dispatcher, sched *scheduler.Scheduler, base *logrus.Entry) {
	buf := make([]byte, 65536)
	for {
		n, addr, err := conn.ReadFromUnix(buf)
		if err != nil {
			return
		}
		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		sched.IPCCh <- func() {
			reply, err := d.Handle(datagram)
			if err != nil || reply == nil {
				return
			}
			_, _ = conn.WriteToUnix(reply, addr)
		}
	}
}

func printHelp() {
	fmt.Printf("pvstd v%s - per-VLAN spanning tree daemon\n\n", version)
	fmt.Println("Usage:")
	fmt.Println("  pvstd [--config <file>]")
	fmt.Println("  pvstd version")
	fmt.Println("  pvstd help")
}
