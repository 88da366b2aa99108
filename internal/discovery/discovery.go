// Package discovery advertises a board server on the local network over
// mDNS and finds other servers.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_museboard._tcp"

// Advertiser is a running mDNS advertisement.
type Advertiser struct {
	server *mdns.Server
}

// Advertise announces the server on port. An empty instance uses the host
// name.
func Advertise(instance string, port int, info ...string) (*Advertiser, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}

	slog.Info("advertising on mdns", "instance", instance, "service", ServiceType, "port", port)
	return &Advertiser{server: server}, nil
}

func (a *Advertiser) Shutdown() error {
	return a.server.Shutdown()
}

// Service is a board server found on the network.
type Service struct {
	Instance string   `json:"instance"`
	Host     string   `json:"host"`
	Addr     string   `json:"addr"`
	Info     []string `json:"info,omitempty"`
}

// Browse queries the network for board servers until timeout or ctx ends.
func Browse(ctx context.Context, timeout time.Duration) ([]Service, error) {
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []Service)
	go func() {
		var found []Service
		for e := range entries {
			if s, ok := fromEntry(e); ok {
				found = append(found, s)
			}
		}
		done <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)

	found := <-done
	if err != nil {
		return found, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}

func fromEntry(e *mdns.ServiceEntry) (Service, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Service{}, false
	}
	return Service{
		Instance: e.Name,
		Host:     e.Host,
		Addr:     fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
		Info:     e.InfoFields,
	}, true
}
