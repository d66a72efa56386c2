// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing core model objects (decisions,
// trials, sessions) and asserting behaviors. The RecordingSink captures the
// actuation timeline so ordering and dispatch-count invariants can be
// asserted directly. These helpers are intentionally minimal and are not
// intended for production usage.
package testutil
