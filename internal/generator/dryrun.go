package generator

import "context"

// DryRun is a no-network TextGenerator for local runs and staging. It fails
// every generation, which exercises the template-fallback path end to end.
type DryRun struct{}

func NewDryRun() *DryRun {
	return &DryRun{}
}

func (DryRun) GenerateText(context.Context, string) (string, error) {
	return "", errUnconfigured
}

type unconfiguredError struct{}

func (unconfiguredError) Error() string { return "text generator not configured" }

var errUnconfigured = unconfiguredError{}
