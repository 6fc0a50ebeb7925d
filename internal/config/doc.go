// Package config loads and validates the bot's environment configuration.
// Invalid configuration is fatal at startup.
package config
