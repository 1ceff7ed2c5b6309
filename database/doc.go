// Package database provides connection management for the supported dialects,
// migrations driven by the model registry, foreign key handling, SQL error
// classification, query hooks, logging and the unit-of-work Session used by
// the repositories. Everything is built on top of Bun.
package database
