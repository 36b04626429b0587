// Package services contains stateless domain services that coordinate
// behavior across aggregates.
//
// ConflictDetector inspects the active sessions of a delivery date for
// overlapping order claims and builds the Conflict descriptor returned to
// clients. Detection is intentionally read-only: ownership is never taken
// from another packer without an explicit takeover.
package services
