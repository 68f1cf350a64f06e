package bridge

import (
	"fmt"
	"strings"
)

// Failure kinds reported in invocation results. Discovery failures are not
// listed here: they abort startup instead of being reported per call.
const (
	// FailureKindUnknownTool identifies requests naming a tool absent from the catalog.
	FailureKindUnknownTool = "unknown_tool"
	// FailureKindMissingParameter identifies requests omitting a required parameter.
	FailureKindMissingParameter = "missing_parameter"
	// FailureKindUsage identifies parameter and usage rejections, whether detected
	// before building the argument vector or raised by the framework itself.
	FailureKindUsage = "usage"
	// FailureKindExecution identifies any other fault raised by the command body.
	FailureKindExecution = "execution"
)

// DuplicateToolError reports two command paths joining to the same tool name.
// Command names may contain the separator character, so distinct paths can
// collide; the scanner rejects the whole catalog rather than silently
// overwriting an entry.
type DuplicateToolError struct {
	Name       string
	FirstPath  []string
	SecondPath []string
}

func (duplicateError *DuplicateToolError) Error() string {
	return fmt.Sprintf(
		"tool name %q produced by both %q and %q",
		duplicateError.Name,
		strings.Join(duplicateError.FirstPath, " "),
		strings.Join(duplicateError.SecondPath, " "),
	)
}

// UnknownToolError reports an invocation naming a tool absent from the catalog.
type UnknownToolError struct {
	Tool string
}

func (unknownError *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", unknownError.Tool)
}

// MissingParameterError reports a required parameter absent from the supplied
// values, detected before any argument vector is constructed.
type MissingParameterError struct {
	Tool      string
	Parameter string
}

func (missingError *MissingParameterError) Error() string {
	return fmt.Sprintf("tool %q requires parameter %q", missingError.Tool, missingError.Parameter)
}

// UnknownParameterError reports a supplied parameter name declared at no
// level of the tool's command path.
type UnknownParameterError struct {
	Tool      string
	Parameter string
}

func (unknownParameterError *UnknownParameterError) Error() string {
	return fmt.Sprintf("tool %q has no parameter %q", unknownParameterError.Tool, unknownParameterError.Parameter)
}

// InvalidParameterError reports a supplied value that cannot be rendered for
// its declared parameter kind.
type InvalidParameterError struct {
	Tool      string
	Parameter string
	Err       error
}

func (invalidError *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid value for parameter %q of tool %q: %v", invalidError.Parameter, invalidError.Tool, invalidError.Err)
}

// Unwrap exposes the underlying rendering error.
func (invalidError *InvalidParameterError) Unwrap() error {
	return invalidError.Err
}

// UsageError wraps a structured usage rejection raised by the framework while
// parsing the constructed argument vector.
type UsageError struct {
	Err error
}

func (usageError *UsageError) Error() string {
	return usageError.Err.Error()
}

// Unwrap exposes the wrapped framework error.
func (usageError *UsageError) Unwrap() error {
	return usageError.Err
}
