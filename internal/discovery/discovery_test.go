package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestFromEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *mdns.ServiceEntry
		ok    bool
		addr  string
	}{
		{"nil", nil, false, ""},
		{"no address", &mdns.ServiceEntry{Port: 8080}, false, ""},
		{"no port", &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 2)}, false, ""},
		{"complete", &mdns.ServiceEntry{
			Name:       "studio._museboard._tcp.local.",
			Host:       "studio.local.",
			AddrV4:     net.IPv4(10, 0, 0, 2),
			Port:       8080,
			InfoFields: []string{"museboard"},
		}, true, "10.0.0.2:8080"},
	}
	for _, tt := range tests {
		got, ok := fromEntry(tt.entry)
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
			continue
		}
		if ok && got.Addr != tt.addr {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.addr, got.Addr)
		}
	}
}
