// Package ipc implements the configuration/control datagram protocol of
// §6.1: a 5-byte magic, a msgType/msgLen header, and a
// fixed-layout little-endian payload per message type, dispatched into
// pkg/iface, pkg/stp and pkg/guard.
package ipc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic is the fixed 5-byte datagram prefix, reject if missing.
var Magic = [5]byte{'w', 'b', 'o', 's', 'b'}

// IfNameMax is the fixed width of embedded interface-name fields
// (IFNAMSIZ on Linux).
const IfNameMax = 16

// MsgType enumerates the datagram's msgType field.
type MsgType uint32

const (
	MsgInitReady MsgType = iota + 1
	MsgBridgeConfig
	MsgVlanConfig
	MsgVlanPortConfig
	MsgPortConfig
	MsgVlanMemConfig
	MsgStpCtl
)

// Header is the framing that precedes every message's data payload.
type Header struct {
	Type MsgType
	Len  uint32
}

// Frame splits a datagram into its header and payload bytes, verifying
// the magic and declared length.
func Frame(datagram []byte) (Header, []byte, error) {
	if len(datagram) < len(Magic)+8 {
		return Header{}, nil, ErrTooShort
	}
	if !bytes.Equal(datagram[:len(Magic)], Magic[:]) {
		return Header{}, nil, ErrBadMagic
	}
	rest := datagram[len(Magic):]
	h := Header{
		Type: MsgType(binary.LittleEndian.Uint32(rest[0:4])),
		Len:  binary.LittleEndian.Uint32(rest[4:8]),
	}
	data := rest[8:]
	if uint32(len(data)) < h.Len {
		return Header{}, nil, ErrTooShort
	}
	return h, data[:h.Len], nil
}

// Encode assembles a datagram from a header and payload, used by tests
// and by the StpCtl reply path (same transport, same framing).
func Encode(t MsgType, data []byte) []byte {
	buf := make([]byte, 0, len(Magic)+8+len(data))
	buf = append(buf, Magic[:]...)
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(t))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(data)))
	buf = append(buf, hdr[:]...)
	buf = append(buf, data...)
	return buf
}

func readCString(b []byte) string {
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		n = len(b)
	}
	return string(b[:n])
}

func putCString(b []byte, s string) {
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
}

func readI32(b []byte) int32  { return int32(binary.LittleEndian.Uint32(b)) }
func readU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func readU16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

// ErrTooShort / ErrBadMagic / ErrTruncatedPayload are framing-level
// rejections, returned to the caller; nothing here counts them.
var (
	ErrTooShort        = fmt.Errorf("ipc: datagram shorter than header")
	ErrBadMagic        = fmt.Errorf("ipc: missing %q magic", string(Magic[:]))
	ErrTruncatedPayload = fmt.Errorf("ipc: payload shorter than declared field layout")
)
