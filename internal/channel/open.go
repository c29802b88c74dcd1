package channel

import (
	"context"
	"fmt"
	"log"

	"devtriage/internal/config"
)

// Open connects to a configured target and returns a channel to it
func Open(ctx context.Context, target config.Target, timeouts config.TimeoutConfig) (Conn, error) {
	switch target.Transport {
	case config.TransportSSH:
		cred, err := target.Credential()
		if err != nil {
			return nil, fmt.Errorf("resolve credential for %s: %w", target.Name, err)
		}
		log.Printf("Channel: connecting to %s over ssh (%s:%d)", target.Name, target.Host, target.Port)
		return DialSSH(ctx, target.Host, target.Port, cred, SSHOptions{
			ConnectTimeout: timeouts.Connect.Duration(),
			CommandTimeout: timeouts.Command.Duration(),
			KnownHostsPath: target.KnownHostsPath,
		})
	case config.TransportADB:
		log.Printf("Channel: using adb for %s (serial=%q)", target.Name, target.Serial)
		return NewADB(target.ADBPath, target.Serial), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", target.Transport)
	}
}
