package channel

import "context"

// Channel executes a command on a device and returns its stdout
type Channel interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Conn is a Channel holding resources that must be released
type Conn interface {
	Channel
	Close() error
}

// Func adapts a function to the Channel interface
type Func func(ctx context.Context, command string) (string, error)

// Execute calls f
func (f Func) Execute(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}
