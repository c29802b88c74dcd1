// Package dumper retrieves the settings of every namespace from a device and
// assembles them into a snapshot.
//
// A dump is all-or-nothing: the first channel or parse failure aborts it and
// no partial snapshot is returned. Retrying transient failures is left to the
// caller.
package dumper

import (
	"context"
	"fmt"
	"log"

	"devtriage/internal/channel"
	"devtriage/internal/domain"
	"devtriage/internal/parser"
)

// ChannelError reports a retrieval command that could not be executed
type ChannelError struct {
	Namespace domain.Namespace
	Command   string
	Err       error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("failed to run: %q: %v", e.Command, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// ParseError reports device output that did not parse as settings
type ParseError struct {
	Namespace domain.Namespace
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse settings from device (namespace %s): %v", e.Namespace, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Command returns the retrieval command for a namespace
func Command(ns domain.Namespace) string {
	return fmt.Sprintf("settings list %s", ns)
}

// Dumper retrieves settings snapshots over a channel
type Dumper struct {
	parse parser.Func
}

// New creates a Dumper. A nil parse function selects parser.ParseSettings.
func New(parse parser.Func) *Dumper {
	if parse == nil {
		parse = parser.ParseSettings
	}
	return &Dumper{parse: parse}
}

// Dump retrieves every namespace in order and returns the assembled snapshot
func (d *Dumper) Dump(ctx context.Context, ch channel.Channel) (domain.Snapshot, error) {
	snapshot := domain.NewSnapshot()

	for _, ns := range domain.Namespaces() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cmd := Command(ns)
		log.Printf("Dumper: executing %q", cmd)

		output, err := ch.Execute(ctx, cmd)
		if err != nil {
			return nil, &ChannelError{Namespace: ns, Command: cmd, Err: err}
		}

		settings, err := d.parse(output)
		if err != nil {
			return nil, &ParseError{Namespace: ns, Err: err}
		}

		snapshot[ns] = settings
	}

	return snapshot, nil
}

// Dump retrieves a snapshot with the default parser
func Dump(ctx context.Context, ch channel.Channel) (domain.Snapshot, error) {
	return New(nil).Dump(ctx, ch)
}
