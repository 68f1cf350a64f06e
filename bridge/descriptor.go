// Package bridge flattens a cobra command hierarchy into uniquely named tool
// descriptors and reconstructs framework-valid argument vectors from flat
// parameter maps, so that every command path can be invoked independently
// while parent commands still run and establish their shared state.
package bridge

import "strings"

// Parameter kinds recognized by the scanner and the argument builder.
const (
	// ParameterKindOption marks a parameter whose flag token is followed by a value.
	ParameterKindOption = "option"
	// ParameterKindFlag marks a boolean parameter emitted as a bare flag token.
	ParameterKindFlag = "flag"
	// ParameterKindArgument marks a positional parameter emitted as a bare value.
	ParameterKindArgument = "argument"
)

const toolNameSeparator = "_"

// Parameter describes a single parameter declared on one command node.
type Parameter struct {
	// Name is the externally exposed parameter name with dashes folded to underscores.
	Name string
	// FlagName is the declared flag name including dashes; empty for positional arguments.
	FlagName string
	// Kind is one of ParameterKindOption, ParameterKindFlag or ParameterKindArgument.
	Kind string
	// ValueType is the pflag value type name, for example "string" or "stringSlice".
	ValueType string
	// Default is the declared default in its string form.
	Default string
	// Help is the declared usage text.
	Help string
	// Required reports whether a caller must supply the parameter.
	Required bool
}

// CommandLevel captures one path segment together with the parameters
// declared at that level only, excluding anything inherited from ancestors.
type CommandLevel struct {
	Name       string
	Parameters []Parameter
}

// ToolDescriptor is the flattened, externally advertised representation of
// one invocable command path. Descriptors are created once during scanning
// and never mutated afterwards.
type ToolDescriptor struct {
	// Name uniquely identifies the tool; path segments joined by underscores.
	Name string
	// Path lists command names from the root to this node.
	Path []string
	// Description is the command's short help text.
	Description string
	// Levels holds per-segment parameter declarations in root-to-leaf order.
	Levels []CommandLevel
}

// MergedParameters returns the ancestor-accumulated parameter schema for the
// descriptor. When a descendant declares a parameter name an ancestor already
// used, the descendant's declaration wins while the original position in the
// sequence is preserved, keeping repeated scans byte-for-byte identical.
func (descriptor ToolDescriptor) MergedParameters() []Parameter {
	positions := make(map[string]int)
	var merged []Parameter
	for _, level := range descriptor.Levels {
		for _, parameter := range level.Parameters {
			if position, present := positions[parameter.Name]; present {
				merged[position] = parameter
				continue
			}
			positions[parameter.Name] = len(merged)
			merged = append(merged, parameter)
		}
	}
	return merged
}

// Catalog is the immutable set of tool descriptors produced by one scan,
// keyed by tool name. It holds no external resources and is safe for
// concurrent reads.
type Catalog struct {
	descriptors []ToolDescriptor
	index       map[string]int
}

func newCatalog(descriptors []ToolDescriptor) (*Catalog, error) {
	index := make(map[string]int, len(descriptors))
	for position, descriptor := range descriptors {
		if existingPosition, present := index[descriptor.Name]; present {
			return nil, &DuplicateToolError{
				Name:       descriptor.Name,
				FirstPath:  descriptors[existingPosition].Path,
				SecondPath: descriptor.Path,
			}
		}
		index[descriptor.Name] = position
	}
	return &Catalog{descriptors: descriptors, index: index}, nil
}

// Tools returns the cataloged descriptors in scan order.
func (catalog *Catalog) Tools() []ToolDescriptor {
	tools := make([]ToolDescriptor, len(catalog.descriptors))
	copy(tools, catalog.descriptors)
	return tools
}

// Lookup resolves a descriptor by its tool name.
func (catalog *Catalog) Lookup(name string) (ToolDescriptor, bool) {
	position, present := catalog.index[name]
	if !present {
		return ToolDescriptor{}, false
	}
	return catalog.descriptors[position], true
}

// Len reports the number of cataloged tools.
func (catalog *Catalog) Len() int {
	return len(catalog.descriptors)
}

// toolNameFromPath joins path segments into the advertised tool name.
func toolNameFromPath(path []string) string {
	exposed := make([]string, len(path))
	for index, segment := range path {
		exposed[index] = exposeName(segment)
	}
	return strings.Join(exposed, toolNameSeparator)
}
