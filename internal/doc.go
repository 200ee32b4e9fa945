// Package internal documents the brewvote server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: short codes, voter registration, admin access, and event workflows
// - storage: Postgres repositories and migrations
// - auth, audit, config, metrics, telemetry, sanitize, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
