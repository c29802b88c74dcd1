// Package repository defines the data access interfaces for devtriage.
//
// Reports produced by an audit can be persisted so that earlier triage runs
// of a device can be listed and compared. The actual implementation is in
// the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores each report across three tables:
//
// - reports: one row per run with target, collection time and a summary
// - settings: every retrieved key/value, keyed by report and namespace
// - findings: the audit findings in their original order
//
// Deleting a report cascades to its settings and findings. The schema is
// created on startup.
package repository
