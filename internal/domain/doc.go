// Package domain defines the core types shared by the devtriage pipeline.
//
// This package contains the values that flow from the dumper into the audit
// engine and on to reporting and storage.
//
// # Settings
//
// Namespace is one of the three fixed configuration scopes on a device
// (system, secure, global). Settings holds the key/value pairs of a single
// namespace, and Snapshot holds one Settings per namespace after a dump.
//
// # Suspicions
//
// SuspicionLevel is an ordered severity from Good (protective configuration
// confirmed) to High (risky configuration found). Suspicion pairs a level with
// a human-readable description; Finding additionally records where the
// suspicion came from.
//
// # Credentials
//
// Credential carries the login material for an SSH channel to a device.
//
// # Design Principles
//
// - No I/O and no external dependencies
// - Closed enumerations as typed constants with explicit parsing
// - Values are owned by the caller once returned
package domain
