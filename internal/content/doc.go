// Package content selects what to post: weighted category choice with
// day-of-week theme overrides, prompt construction for the text generator,
// static template fallbacks, and the outbound moderation filter.
package content
