// Package gencache caches generated text by prompt with TTL expiry, so
// repeated prompts within the TTL window never reach the AI provider.
package gencache
