package channel

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ADB runs commands through the adb client binary
type ADB struct {
	path   string
	serial string
}

// NewADB creates an ADB channel. An empty serial lets adb pick the only
// attached device.
func NewADB(path, serial string) *ADB {
	if path == "" {
		path = "adb"
	}
	return &ADB{path: path, serial: serial}
}

// args builds the adb argument list for a shell command
func (a *ADB) args(cmd string) []string {
	var args []string
	if a.serial != "" {
		args = append(args, "-s", a.serial)
	}
	return append(args, "shell", cmd)
}

// Execute runs `adb shell cmd` and returns its stdout
func (a *ADB) Execute(ctx context.Context, cmd string) (string, error) {
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, a.path, a.args(cmd)...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("adb shell failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("adb shell failed: %w", err)
	}
	return stdout.String(), nil
}

// Close is a no-op; each Execute runs its own adb process
func (a *ADB) Close() error {
	return nil
}
