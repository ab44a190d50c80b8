// Package core defines the shared language of the Launchpad system.
//
// This package contains:
//   - Domain entities (Connection, Pipeline, User, Session)
//   - Status variants for the simulated connection test and pipeline run
//   - The persisted application state layout (AppState)
//   - Service interfaces (KVStore)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
