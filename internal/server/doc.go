// Package server exposes the bot's read-only status surface: liveness and
// readiness probes, a status document with quota budgets and scheduler run
// state, and Prometheus metrics.
package server
