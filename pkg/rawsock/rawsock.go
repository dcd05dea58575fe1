// Package rawsock wraps the AF_PACKET raw sockets §6.2's
// transport layer needs: one per enabled port, bound to that port's
// kernel index, receiving every frame (including BPDUs destined to a
// multicast MAC the kernel bridge would otherwise consume) and writing
// already-encoded frames back out untouched.
package rawsock

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// Socket is one bound AF_PACKET(SOCK_RAW, ETH_P_ALL) descriptor.
type Socket struct {
	fd          int
	kernelIndex int
}

// Open creates and binds a non-blocking raw socket to kernelIndex.
func Open(kernelIndex int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("open packet socket: %w", err)
	}
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  kernelIndex,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind packet socket to ifindex %d: %w", kernelIndex, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblocking: %w", err)
	}
	return &Socket{fd: fd, kernelIndex: kernelIndex}, nil
}

// Fd exposes the descriptor for the scheduler's poll/epoll registration.
func (s *Socket) Fd() int { return s.fd }

// KernelIndex returns the ifindex this socket is bound to.
func (s *Socket) KernelIndex() int { return s.kernelIndex }

// Recv reads one frame into buf, returning the byte count. A nil error
// with n == 0 and no bytes read signals EAGAIN (nothing pending); the
// caller's read loop treats that as "no work" rather than an error.
func (s *Socket) Recv(buf []byte) (int, error) {
	n, _, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, fmt.Errorf("recvfrom: %w", err)
	}
	return n, nil
}

// Send writes frame out the bound interface.
func (s *Socket) Send(frame []byte) error {
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  s.kernelIndex,
		Halen:    6,
	}
	if len(frame) >= 6 {
		copy(sa.Addr[:6], frame[0:6])
	}
	if err := unix.Sendto(s.fd, frame, 0, sa); err != nil {
		return fmt.Errorf("sendto ifindex %d: %w", s.kernelIndex, err)
	}
	return nil
}

// Close releases the descriptor.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

func htons(v uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return binary.LittleEndian.Uint16(b)
}
