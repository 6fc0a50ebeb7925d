// Package scheduler drives the bot's three periodic loops: content posting,
// mention polling, and the engagement sweep. Every tick checks quota
// admission before doing external work, records its outcome in the
// interaction ledger, and retries transient failures with exponential
// backoff. Shutdown lets the in-flight unit of work finish before the loops
// exit.
package scheduler
