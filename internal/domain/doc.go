// Package domain defines the core types for the mirrorlab interrogation
// and topology-inference pipeline.
//
// # Core Types
//
// Device represents one inventory entry with its reachability status
// and collected hardware identity. Reachability and identity are each
// written by exactly one pipeline phase; a device demoted to
// unreachable at any phase is excluded from everything downstream.
//
// NeighborRecord is a raw neighbor-discovery table row, kept exactly as
// the device reported it.
//
// Link is an undirected edge between two device interfaces, identified
// by its unordered endpoint pair and flagged confirmed when both sides
// reported the adjacency.
//
// Topology is the deduplicated link-level graph handed to the
// containerlab renderer.
//
// # Failure Model
//
// Fault is the uniform per-device failure type: connection,
// authentication, timeout, or command error. Faults demote a single
// device and never abort the run; RunSummary attributes every exclusion
// to the phase and reason it happened at.
//
// # Design Principles
//
//   - Immutable value objects where possible
//   - No database or external dependencies
//   - Pure domain logic without infrastructure concerns
package domain
