package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanradell/toolbridge/bridge"
	"github.com/tanradell/toolbridge/internal/services/clipboard"
)

const (
	toolsUse                   = "tools"
	toolsShortDescription      = "print the advertised tool catalog as JSON"
	copyFlagName               = "copy"
	copyFlagDescription        = "copy the catalog to the clipboard"
	catalogEncodeFailureFormat = "encode catalog: %w"
	clipboardCopyFailureFormat = "copy catalog to clipboard: %w"
)

// toolSummary is the JSON shape of one catalog entry printed by tools.
type toolSummary struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Path        []string           `json:"path"`
	Parameters  []parameterSummary `json:"parameters"`
}

type parameterSummary struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	ValueType string `json:"value_type"`
	Default   string `json:"default,omitempty"`
	Help      string `json:"help,omitempty"`
	Required  bool   `json:"required"`
}

func createToolsCommand() *cobra.Command {
	var copyEnabled bool
	toolsCommand := &cobra.Command{
		Use:   toolsUse,
		Short: toolsShortDescription,
		RunE: func(command *cobra.Command, _ []string) error {
			return runToolsListing(command, copyEnabled, clipboard.NewService())
		},
	}
	toolsCommand.Flags().BoolVar(&copyEnabled, copyFlagName, false, copyFlagDescription)
	bridge.MarkSkipped(toolsCommand)
	return toolsCommand
}

func runToolsListing(command *cobra.Command, copyEnabled bool, copier clipboard.Copier) error {
	executionBridge, bridgeError := bridge.New(NewRootCommand)
	if bridgeError != nil {
		return fmt.Errorf(scanFailureFormat, bridgeError)
	}

	summaries := make([]toolSummary, 0, executionBridge.Catalog().Len())
	for _, descriptor := range executionBridge.Catalog().Tools() {
		summaries = append(summaries, summarizeTool(descriptor))
	}

	encoded, encodeError := json.MarshalIndent(summaries, "", "  ")
	if encodeError != nil {
		return fmt.Errorf(catalogEncodeFailureFormat, encodeError)
	}
	command.Println(string(encoded))

	if copyEnabled {
		if copyError := copier.Copy(string(encoded)); copyError != nil {
			return fmt.Errorf(clipboardCopyFailureFormat, copyError)
		}
	}
	return nil
}

func summarizeTool(descriptor bridge.ToolDescriptor) toolSummary {
	parameters := descriptor.MergedParameters()
	summaries := make([]parameterSummary, 0, len(parameters))
	for _, parameter := range parameters {
		summaries = append(summaries, parameterSummary{
			Name:      parameter.Name,
			Kind:      parameter.Kind,
			ValueType: parameter.ValueType,
			Default:   parameter.Default,
			Help:      parameter.Help,
			Required:  parameter.Required,
		})
	}
	return toolSummary{
		Name:        descriptor.Name,
		Description: descriptor.Description,
		Path:        descriptor.Path,
		Parameters:  summaries,
	}
}
