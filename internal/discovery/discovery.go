// Package discovery finds devices reachable over ssh or adb-over-tcp by
// scanning networks with nmap.
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"devtriage/internal/config"
)

// Well-known device ports
const (
	PortSSH = 22
	PortADB = 5555
)

// DefaultPorts is the port list scanned when none is configured
const DefaultPorts = "22,5555"

// Candidate is a host exposing a port that a device channel can use
type Candidate struct {
	Address   string           `json:"address" yaml:"address"`
	Hostname  string           `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Transport config.Transport `json:"transport" yaml:"transport"`
	Port      int              `json:"port" yaml:"port"`
	Service   string           `json:"service,omitempty" yaml:"service,omitempty"`
}

// Target returns a config target pointing at the candidate
func (c Candidate) Target(name string) config.Target {
	t := config.Target{Name: name, Transport: c.Transport}
	switch c.Transport {
	case config.TransportSSH:
		t.Host = c.Address
		t.Port = c.Port
	case config.TransportADB:
		t.Serial = net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
	}
	return t
}

// Scanner runs nmap against a list of targets
type Scanner struct {
	timeout           time.Duration
	ports             string
	serviceDetection  bool
	skipHostDiscovery bool
}

// NewScanner creates a scanner for the default device ports
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		timeout: 10 * time.Minute,
		ports:   DefaultPorts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromConfig creates a scanner from the discovery section of the config
func FromConfig(cfg config.DiscoveryConfig) *Scanner {
	opts := []Option{
		WithServiceDetection(cfg.ServiceDetection),
		WithSkipHostDiscovery(cfg.SkipHostDiscovery),
	}
	if cfg.Ports != "" {
		opts = append(opts, WithPorts(cfg.Ports))
	}
	return NewScanner(opts...)
}

// Ports returns the port list the scanner probes
func (s *Scanner) Ports() string {
	return s.ports
}

// Scan scans every target and returns the candidates found, ordered by
// address then port. A target that fails to scan is logged and skipped.
func (s *Scanner) Scan(ctx context.Context, targets []string) ([]Candidate, error) {
	expanded, err := expandTargets(targets)
	if err != nil {
		return nil, err
	}
	if len(expanded) == 0 {
		return nil, fmt.Errorf("no targets to scan")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Printf("Discovery: scanning %d targets (ports=%s, service_detection=%v)",
		len(expanded), s.ports, s.serviceDetection)

	var candidates []Candidate
	failed := 0
	for _, target := range expanded {
		result, err := s.scanTarget(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Discovery: error scanning %s: %v", target, err)
			failed++
			continue
		}
		candidates = append(candidates, candidatesFromRun(result)...)
	}
	if failed == len(expanded) {
		return nil, fmt.Errorf("all %d targets failed to scan", failed)
	}

	sortCandidates(candidates)
	log.Printf("Discovery: scan complete, %d candidates", len(candidates))
	return candidates, nil
}

// scanTarget performs an nmap scan on a single target
func (s *Scanner) scanTarget(ctx context.Context, target string) (*nmap.Run, error) {
	opts := []nmap.Option{
		nmap.WithTargets(target),
		nmap.WithPorts(s.ports),
	}
	if s.serviceDetection {
		opts = append(opts, nmap.WithServiceInfo())
	}
	if s.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	log.Printf("Discovery: scanning target %s", target)
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Printf("Discovery: warnings for %s: %v", target, *warnings)
	}
	return result, nil
}

// candidatesFromRun converts nmap results to candidates. Hosts that are not
// up and ports that are not open are skipped.
func candidatesFromRun(result *nmap.Run) []Candidate {
	if result == nil {
		return nil
	}

	var out []Candidate
	for _, host := range result.Hosts {
		if host.Status.State != "up" || len(host.Addresses) == 0 {
			continue
		}

		address := hostAddress(host)
		var hostname string
		if len(host.Hostnames) > 0 {
			hostname = host.Hostnames[0].Name
		}

		for _, port := range host.Ports {
			if port.State.State != "open" {
				continue
			}
			transport, ok := classify(port)
			if !ok {
				continue
			}
			out = append(out, Candidate{
				Address:   address,
				Hostname:  hostname,
				Transport: transport,
				Port:      int(port.ID),
				Service:   port.Service.Name,
			})
		}
	}
	return out
}

// hostAddress prefers the IPv4 address, then any non-MAC address
func hostAddress(host nmap.Host) string {
	for _, addr := range host.Addresses {
		if addr.AddrType == "ipv4" {
			return addr.Addr
		}
	}
	for _, addr := range host.Addresses {
		if addr.AddrType != "mac" {
			return addr.Addr
		}
	}
	return host.Addresses[0].Addr
}

// classify maps an open port to the transport that can use it.
// An ssh service detected on any port counts as ssh.
func classify(port nmap.Port) (config.Transport, bool) {
	switch {
	case port.ID == PortSSH, strings.EqualFold(port.Service.Name, "ssh"):
		return config.TransportSSH, true
	case port.ID >= PortADB && port.ID <= 5585:
		return config.TransportADB, true
	}
	return "", false
}

func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Address != c[j].Address {
			return c[i].Address < c[j].Address
		}
		return c[i].Port < c[j].Port
	})
}

// expandTargets validates CIDR targets and normalizes them
func expandTargets(targets []string) ([]string, error) {
	var expanded []string
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if strings.Contains(target, "/") {
			_, ipNet, err := net.ParseCIDR(target)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %s: %w", target, err)
			}
			// nmap expands CIDR ranges itself
			expanded = append(expanded, ipNet.String())
		} else {
			expanded = append(expanded, target)
		}
	}
	return expanded, nil
}

// parsePorts validates a port list in nmap format
func parsePorts(portRange string) (string, error) {
	if strings.TrimSpace(portRange) == "" {
		return "", fmt.Errorf("empty port list")
	}
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return "", fmt.Errorf("invalid port range: %s", part)
			}
			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil || start < 1 || start > 65535 {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil || end < 1 || end > 65535 || end < start {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[1])
			}
		} else {
			port, err := strconv.Atoi(part)
			if err != nil || port < 1 || port > 65535 {
				return "", fmt.Errorf("invalid port number: %s", part)
			}
		}
	}
	return portRange, nil
}
