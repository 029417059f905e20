// Package network lists the addresses the server can be reached on from
// other devices on site (a tablet running the UI shell, for example).
package network

import (
	"fmt"
	"net"
	"sort"
	"strings"
)

// Address is one reachable IPv4 address.
type Address struct {
	Interface     string
	IP            string
	InterfaceType string // "ethernet", "wifi" or "other"
}

// URL returns the http URL of the server on this address.
func (a Address) URL(port string) string {
	return fmt.Sprintf("http://%s:%s", a.IP, port)
}

// interfaceType guesses the interface type from its name.
func interfaceType(ifaceName string) string {
	name := strings.ToLower(ifaceName)

	if strings.HasPrefix(name, "wlan") ||
		strings.HasPrefix(name, "wl") ||
		strings.Contains(name, "wifi") ||
		strings.Contains(name, "wireless") {
		return "wifi"
	}
	if strings.HasPrefix(name, "eth") || strings.HasPrefix(name, "en") {
		return "ethernet"
	}
	return "other"
}

var typeOrder = map[string]int{"ethernet": 0, "wifi": 1, "other": 2}

// usable reports whether ip is an address another device could dial.
func usable(ip net.IP) bool {
	ip4 := ip.To4()
	return ip4 != nil && !ip4.IsLoopback() && !ip4.IsLinkLocalUnicast() && !ip4.IsUnspecified()
}

// LANAddresses returns the IPv4 addresses of every interface that is up,
// wired interfaces first.
func LANAddresses() ([]Address, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	var out []Address
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || !usable(ipNet.IP) {
				continue
			}
			out = append(out, Address{
				Interface:     iface.Name,
				IP:            ipNet.IP.To4().String(),
				InterfaceType: interfaceType(iface.Name),
			})
		}
	}
	sortAddresses(out)
	return out, nil
}

func sortAddresses(addrs []Address) {
	sort.SliceStable(addrs, func(i, j int) bool {
		ti, tj := typeOrder[addrs[i].InterfaceType], typeOrder[addrs[j].InterfaceType]
		if ti != tj {
			return ti < tj
		}
		return addrs[i].Interface < addrs[j].Interface
	})
}
