package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// All cobra and pflag introspection is confined to this file. The rest of the
// package works exclusively with Parameter and CommandLevel values.

const (
	argumentsAnnotationKey = "toolbridge_arguments"
	skipAnnotationKey      = "toolbridge_skip"
	annotationTrueValue    = "true"
	helpFlagName           = "help"
	booleanFlagTypeName    = "bool"
)

// Argument declares a positional parameter for tool exposure. Cobra carries
// no per-name metadata for positional arguments, so commands that accept them
// declare the names explicitly through DeclareArguments.
type Argument struct {
	Name     string
	Help     string
	Required bool
}

// DeclareArguments records the positional parameters of a command in its
// annotations, in the relative order callers must supply them.
func DeclareArguments(command *cobra.Command, arguments ...Argument) error {
	for _, argument := range arguments {
		if strings.TrimSpace(argument.Name) == "" {
			return fmt.Errorf("positional argument on command %q has no name", command.Name())
		}
	}
	encoded, encodeErr := json.Marshal(arguments)
	if encodeErr != nil {
		return fmt.Errorf("encode positional arguments for %q: %w", command.Name(), encodeErr)
	}
	if command.Annotations == nil {
		command.Annotations = map[string]string{}
	}
	command.Annotations[argumentsAnnotationKey] = string(encoded)
	return nil
}

// MarkSkipped excludes a command and its subtree from scanning. The serve
// command uses this to keep itself out of the catalog it advertises.
func MarkSkipped(command *cobra.Command) {
	if command.Annotations == nil {
		command.Annotations = map[string]string{}
	}
	command.Annotations[skipAnnotationKey] = annotationTrueValue
}

func isSkipped(command *cobra.Command) bool {
	return command.Annotations[skipAnnotationKey] == annotationTrueValue
}

// commandParameters translates the flag and argument declarations of a single
// command into parameter descriptors: options and flags first in the order
// they were declared, positional arguments after them in declared order.
func commandParameters(command *cobra.Command) ([]Parameter, error) {
	var parameters []Parameter
	visitLocalFlagsInDeclarationOrder(command, func(declaredFlag *pflag.Flag) {
		if declaredFlag.Name == helpFlagName || declaredFlag.Hidden {
			return
		}
		parameters = append(parameters, parameterFromFlag(declaredFlag))
	})

	declaredArguments, decodeErr := decodeDeclaredArguments(command)
	if decodeErr != nil {
		return nil, decodeErr
	}
	for _, declaredArgument := range declaredArguments {
		parameters = append(parameters, Parameter{
			Name:      exposeName(declaredArgument.Name),
			Kind:      ParameterKindArgument,
			ValueType: "string",
			Help:      declaredArgument.Help,
			Required:  declaredArgument.Required,
		})
	}
	return parameters, nil
}

// visitLocalFlagsInDeclarationOrder visits the command's own flags in the
// order they were declared. pflag's VisitAll sorts lexically by default, so
// the underlying sets are walked unsorted and filtered to local names. The
// command's non-persistent flags come first, then its own persistent flags;
// flags inherited from ancestors belong to their declaring level and are
// never visited here.
func visitLocalFlagsInDeclarationOrder(command *cobra.Command, visit func(*pflag.Flag)) {
	localNames := make(map[string]struct{})
	command.LocalFlags().VisitAll(func(declaredFlag *pflag.Flag) {
		localNames[declaredFlag.Name] = struct{}{}
	})
	persistentFlags := command.PersistentFlags()
	visited := make(map[string]struct{})
	walkUnsorted := func(flagSet *pflag.FlagSet, skipPersistent bool) {
		sortedBefore := flagSet.SortFlags
		flagSet.SortFlags = false
		flagSet.VisitAll(func(declaredFlag *pflag.Flag) {
			if _, local := localNames[declaredFlag.Name]; !local {
				return
			}
			if skipPersistent && persistentFlags.Lookup(declaredFlag.Name) != nil {
				return
			}
			if _, seen := visited[declaredFlag.Name]; seen {
				return
			}
			visited[declaredFlag.Name] = struct{}{}
			visit(declaredFlag)
		})
		flagSet.SortFlags = sortedBefore
	}
	walkUnsorted(command.Flags(), true)
	walkUnsorted(persistentFlags, false)
}

func parameterFromFlag(declaredFlag *pflag.Flag) Parameter {
	kind := ParameterKindOption
	if declaredFlag.Value.Type() == booleanFlagTypeName {
		kind = ParameterKindFlag
	}
	return Parameter{
		Name:      exposeName(declaredFlag.Name),
		FlagName:  declaredFlag.Name,
		Kind:      kind,
		ValueType: declaredFlag.Value.Type(),
		Default:   declaredFlag.DefValue,
		Help:      declaredFlag.Usage,
		Required:  isFlagRequired(declaredFlag),
	}
}

func isFlagRequired(declaredFlag *pflag.Flag) bool {
	values, present := declaredFlag.Annotations[cobra.BashCompOneRequiredFlag]
	return present && len(values) > 0 && values[0] == annotationTrueValue
}

func decodeDeclaredArguments(command *cobra.Command) ([]Argument, error) {
	encoded, present := command.Annotations[argumentsAnnotationKey]
	if !present || encoded == "" {
		return nil, nil
	}
	var declaredArguments []Argument
	if decodeErr := json.Unmarshal([]byte(encoded), &declaredArguments); decodeErr != nil {
		return nil, fmt.Errorf("decode positional arguments for %q: %w", command.Name(), decodeErr)
	}
	return declaredArguments, nil
}

// exposeName folds dashes to underscores so parameter and tool names remain
// valid identifiers for protocol clients.
func exposeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
