package discovery

import "time"

// Option is a functional option for configuring a Scanner
type Option func(*Scanner)

// WithTimeout sets the timeout for the entire nmap scan
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithPorts sets the ports to scan.
// Format: "22,5555" or "5555-5585" or "22,5555-5585".
// An invalid list is ignored and the current ports are kept.
func WithPorts(ports string) Option {
	return func(s *Scanner) {
		if validated, err := parsePorts(ports); err == nil {
			s.ports = validated
		}
	}
}

// WithServiceDetection enables or disables service version detection (-sV)
func WithServiceDetection(enabled bool) Option {
	return func(s *Scanner) {
		s.serviceDetection = enabled
	}
}

// WithSkipHostDiscovery treats all hosts as online (-Pn).
// Useful for networks that block ICMP.
func WithSkipHostDiscovery(skip bool) Option {
	return func(s *Scanner) {
		s.skipHostDiscovery = skip
	}
}

// WithEmulatorPorts adds the adb ports used by local emulators (5555-5585)
func WithEmulatorPorts() Option {
	return func(s *Scanner) {
		s.ports = "22,5555-5585"
	}
}
