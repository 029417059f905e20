package network

import (
	"net"
	"testing"
)

func TestInterfaceType(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"eth0", "ethernet"},
		{"enp3s0", "ethernet"},
		{"en0", "ethernet"},
		{"wlan0", "wifi"},
		{"wlp2s0", "wifi"},
		{"docker0", "other"},
		{"tun0", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interfaceType(tt.name); got != tt.expected {
				t.Errorf("interfaceType(%s) = %s, want %s", tt.name, got, tt.expected)
			}
		})
	}
}

func TestUsable(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"192.168.1.20", true},
		{"10.0.0.5", true},
		{"127.0.0.1", false},
		{"169.254.10.1", false},
		{"0.0.0.0", false},
		{"fe80::1", false},
		{"2001:db8::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := usable(net.ParseIP(tt.ip)); got != tt.expected {
				t.Errorf("usable(%s) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}

func TestSortAddresses(t *testing.T) {
	addrs := []Address{
		{Interface: "tun0", InterfaceType: "other"},
		{Interface: "wlan0", InterfaceType: "wifi"},
		{Interface: "eth1", InterfaceType: "ethernet"},
		{Interface: "eth0", InterfaceType: "ethernet"},
	}

	sortAddresses(addrs)

	want := []string{"eth0", "eth1", "wlan0", "tun0"}
	for i, name := range want {
		if addrs[i].Interface != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, addrs[i].Interface)
		}
	}
}

func TestAddressURL(t *testing.T) {
	a := Address{IP: "192.168.1.20"}
	if got := a.URL("4000"); got != "http://192.168.1.20:4000" {
		t.Errorf("Expected http://192.168.1.20:4000, got %s", got)
	}
}

func TestLANAddresses(t *testing.T) {
	addrs, err := LANAddresses()
	if err != nil {
		t.Fatalf("LANAddresses failed: %v", err)
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a.IP); ip == nil || !usable(ip) {
			t.Errorf("Unexpected address %+v", a)
		}
	}
}
