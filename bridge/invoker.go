package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// CommandFactory builds a fresh command tree. Cobra commands accumulate
// parsed flag state, so every invocation executes against its own tree and
// concurrent invocations share nothing but the read-only catalog.
type CommandFactory func() *cobra.Command

// Result is the outcome of a single tool invocation. Every invocation yields
// a well-formed result; errors never escape the bridge boundary.
type Result struct {
	// Output is the text the command chain printed during execution.
	Output string
	// Succeeded reports whether the chain completed without error.
	Succeeded bool
	// FailureKind classifies the failure; empty on success.
	FailureKind string
	// Error carries the failure message; empty on success.
	Error string
}

// Bridge pairs a scanned catalog with the factory used to execute
// invocations. The catalog is computed once and read-only afterwards.
type Bridge struct {
	factory CommandFactory
	catalog *Catalog
}

// New scans one tree produced by factory and returns the bridge. Scan
// failures are discovery errors and fatal to startup: a silently degraded
// catalog is worse than no catalog.
func New(factory CommandFactory, options ...ScanOption) (*Bridge, error) {
	if factory == nil {
		return nil, errors.New("command factory is required")
	}
	catalog, scanErr := Scan(factory(), options...)
	if scanErr != nil {
		return nil, scanErr
	}
	return &Bridge{factory: factory, catalog: catalog}, nil
}

// Catalog exposes the tool catalog produced at construction time.
func (executionBridge *Bridge) Catalog() *Catalog {
	return executionBridge.catalog
}

// Invoke looks up the named tool, rebuilds its argument vector from the flat
// value map and executes the command chain with output captured per call.
func (executionBridge *Bridge) Invoke(ctx context.Context, toolName string, values map[string]any) Result {
	descriptor, found := executionBridge.catalog.Lookup(toolName)
	if !found {
		return failureResult(FailureKindUnknownTool, &UnknownToolError{Tool: toolName})
	}
	arguments, buildErr := BuildArguments(descriptor, values)
	if buildErr != nil {
		return failureResult(failureKindForError(buildErr), buildErr)
	}
	return executionBridge.run(ctx, arguments)
}

// run executes the constructed argument vector against a fresh tree in
// non-exiting mode. A panic in a command body is contained here: one bad
// tool call must not take down the process serving the rest of the catalog.
func (executionBridge *Bridge) run(ctx context.Context, arguments []string) (result Result) {
	var outputBuffer bytes.Buffer
	defer func() {
		if recovered := recover(); recovered != nil {
			result = failureResult(FailureKindExecution, fmt.Errorf("command panicked: %v", recovered))
			result.Output = outputBuffer.String()
		}
	}()

	root := executionBridge.factory()
	root.SetArgs(arguments)
	root.SetOut(&outputBuffer)
	root.SetErr(&outputBuffer)
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, flagErr error) error {
		return &UsageError{Err: flagErr}
	})

	if executionErr := root.ExecuteContext(ctx); executionErr != nil {
		kind := FailureKindExecution
		var usageErr *UsageError
		if errors.As(executionErr, &usageErr) || isFrameworkUsageError(executionErr) {
			kind = FailureKindUsage
		}
		failure := failureResult(kind, executionErr)
		failure.Output = outputBuffer.String()
		return failure
	}
	return Result{Output: outputBuffer.String(), Succeeded: true}
}

func failureResult(kind string, failure error) Result {
	return Result{FailureKind: kind, Error: failure.Error()}
}

func failureKindForError(buildErr error) string {
	var missingErr *MissingParameterError
	if errors.As(buildErr, &missingErr) {
		return FailureKindMissingParameter
	}
	return FailureKindUsage
}

// isFrameworkUsageError recognizes cobra's own resolution and validation
// errors, which are raised outside the flag error hook.
func isFrameworkUsageError(executionErr error) bool {
	message := executionErr.Error()
	switch {
	case strings.HasPrefix(message, "unknown command"),
		strings.HasPrefix(message, "accepts "),
		strings.HasPrefix(message, "requires at least"),
		strings.Contains(message, "required flag(s)"):
		return true
	default:
		return false
	}
}
