// Package domain holds the core model types, capability definitions, and
// interfaces shared across the bot. Components depend on these contracts
// rather than on each other's concrete types.
package domain
