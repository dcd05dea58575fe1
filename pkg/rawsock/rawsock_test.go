package rawsock

import "testing"

func TestHtonsConvertsToNetworkByteOrder(t *testing.T) {
	cases := []struct {
		in   uint16
		want uint16
	}{
		{0x0000, 0x0000},
		{0x0003, 0x0300},
		{0xAABB, 0xBBAA},
	}
	for _, c := range cases {
		if got := htons(c.in); got != c.want {
			t.Errorf("htons(%#04x) = %#04x, want %#04x", c.in, got, c.want)
		}
	}
}
