package bridge

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	helpCommandName       = "help"
	completionCommandName = "completion"
)

// ScanOption adjusts how a command tree is scanned.
type ScanOption func(*scanSettings)

type scanSettings struct {
	excludedTools map[string]struct{}
}

// WithExcludedTools removes the named tools from the produced catalog while
// still traversing their subtrees.
func WithExcludedTools(names ...string) ScanOption {
	return func(settings *scanSettings) {
		for _, name := range names {
			settings.excludedTools[name] = struct{}{}
		}
	}
}

// Scan walks the command tree rooted at root and produces the tool catalog.
// Traversal is depth-first in cobra's declared child order, so repeated scans
// of an unchanged tree yield identical catalogs. Scanning reads command
// metadata only; no command body runs. A malformed tree or a tool name
// collision fails the whole scan.
func Scan(root *cobra.Command, options ...ScanOption) (*Catalog, error) {
	if root == nil {
		return nil, fmt.Errorf("scan requires a root command")
	}
	settings := scanSettings{excludedTools: map[string]struct{}{}}
	for _, option := range options {
		option(&settings)
	}
	var descriptors []ToolDescriptor
	if scanErr := scanCommand(root, nil, nil, settings, &descriptors); scanErr != nil {
		return nil, scanErr
	}
	return newCatalog(descriptors)
}

func scanCommand(
	command *cobra.Command,
	ancestorPath []string,
	ancestorLevels []CommandLevel,
	settings scanSettings,
	descriptors *[]ToolDescriptor,
) error {
	if strings.TrimSpace(command.Name()) == "" {
		return fmt.Errorf("command under %q has no name", strings.Join(ancestorPath, " "))
	}
	if command.Hidden || isSkipped(command) || isAuxiliaryCommand(command) {
		return nil
	}

	ownParameters, parameterErr := commandParameters(command)
	if parameterErr != nil {
		return parameterErr
	}

	path := append(append([]string{}, ancestorPath...), command.Name())
	levels := append(append([]CommandLevel{}, ancestorLevels...), CommandLevel{
		Name:       command.Name(),
		Parameters: ownParameters,
	})

	// Groups that only namespace children are not independently invocable
	// and produce no descriptor of their own.
	invocable := command.Runnable() || !command.HasSubCommands()
	toolName := toolNameFromPath(path)
	if _, excluded := settings.excludedTools[toolName]; invocable && !excluded {
		*descriptors = append(*descriptors, ToolDescriptor{
			Name:        toolName,
			Path:        path,
			Description: commandDescription(command),
			Levels:      levels,
		})
	}

	for _, child := range command.Commands() {
		if scanErr := scanCommand(child, path, levels, settings, descriptors); scanErr != nil {
			return scanErr
		}
	}
	return nil
}

// isAuxiliaryCommand filters cobra's generated helpers out of the catalog.
func isAuxiliaryCommand(command *cobra.Command) bool {
	if command.IsAdditionalHelpTopicCommand() {
		return true
	}
	parent := command.Parent()
	if parent == nil || parent.HasParent() {
		return false
	}
	switch command.Name() {
	case helpCommandName, completionCommandName:
		return true
	default:
		return false
	}
}

func commandDescription(command *cobra.Command) string {
	if command.Short != "" {
		return command.Short
	}
	return command.Long
}
