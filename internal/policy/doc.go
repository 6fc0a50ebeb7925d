// Package policy decides which engagement actions to take for a candidate
// post: like, repost, crosspost. Each action is checked independently and
// gated by quota admission; the reserved budget is released by the caller
// when an approved action is not executed.
package policy
