package bridge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const flagTokenPrefix = "--"

// BuildArguments reconstructs the ordered argument vector a caller would have
// typed at a shell prompt for the descriptor's command path. Each level's own
// options come before that level's subcommand token: the framework parses
// strictly left to right and cannot attribute an option to an ancestor once a
// subcommand boundary has been crossed.
//
// Parameters absent from values are omitted entirely so the framework applies
// its declared defaults. Required parameters are checked before any token is
// emitted.
func BuildArguments(descriptor ToolDescriptor, values map[string]any) ([]string, error) {
	if validationErr := validateSuppliedValues(descriptor, values); validationErr != nil {
		return nil, validationErr
	}

	deepest := deepestDeclarations(descriptor)
	// The vector must never be nil: cobra treats a nil argument slice as an
	// instruction to parse the host process's own arguments.
	arguments := []string{}
	for levelIndex, level := range descriptor.Levels {
		levelTokens, levelErr := levelArguments(descriptor.Name, level, levelIndex, deepest, values)
		if levelErr != nil {
			return nil, levelErr
		}
		arguments = append(arguments, levelTokens...)
		if levelIndex+1 < len(descriptor.Levels) {
			arguments = append(arguments, descriptor.Levels[levelIndex+1].Name)
		}
	}
	return arguments, nil
}

func validateSuppliedValues(descriptor ToolDescriptor, values map[string]any) error {
	merged := descriptor.MergedParameters()
	declared := make(map[string]struct{}, len(merged))
	for _, parameter := range merged {
		declared[parameter.Name] = struct{}{}
	}
	for suppliedName := range values {
		if _, known := declared[suppliedName]; !known {
			return &UnknownParameterError{Tool: descriptor.Name, Parameter: suppliedName}
		}
	}
	for _, parameter := range merged {
		if !parameter.Required {
			continue
		}
		if _, supplied := values[parameter.Name]; !supplied {
			return &MissingParameterError{Tool: descriptor.Name, Parameter: parameter.Name}
		}
	}
	return nil
}

// deepestDeclarations maps each parameter name to the deepest level declaring
// it. A descendant redeclaring an ancestor's name owns the supplied value, so
// the value is emitted at the descendant's level only.
func deepestDeclarations(descriptor ToolDescriptor) map[string]int {
	deepest := make(map[string]int)
	for levelIndex, level := range descriptor.Levels {
		for _, parameter := range level.Parameters {
			deepest[parameter.Name] = levelIndex
		}
	}
	return deepest
}

func levelArguments(
	toolName string,
	level CommandLevel,
	levelIndex int,
	deepest map[string]int,
	values map[string]any,
) ([]string, error) {
	var optionTokens []string
	var positionalTokens []string
	for _, parameter := range level.Parameters {
		if deepest[parameter.Name] != levelIndex {
			continue
		}
		suppliedValue, supplied := values[parameter.Name]
		if !supplied {
			continue
		}
		switch parameter.Kind {
		case ParameterKindFlag:
			truthy, truthErr := truthyValue(suppliedValue)
			if truthErr != nil {
				return nil, &InvalidParameterError{Tool: toolName, Parameter: parameter.Name, Err: truthErr}
			}
			if truthy {
				optionTokens = append(optionTokens, flagTokenPrefix+parameter.FlagName)
			}
		case ParameterKindArgument:
			rendered, renderErr := renderValue(suppliedValue)
			if renderErr != nil {
				return nil, &InvalidParameterError{Tool: toolName, Parameter: parameter.Name, Err: renderErr}
			}
			positionalTokens = append(positionalTokens, rendered)
		default:
			renderedValues, renderErr := renderOptionValues(parameter, suppliedValue)
			if renderErr != nil {
				return nil, &InvalidParameterError{Tool: toolName, Parameter: parameter.Name, Err: renderErr}
			}
			for _, rendered := range renderedValues {
				optionTokens = append(optionTokens, flagTokenPrefix+parameter.FlagName, rendered)
			}
		}
	}
	return append(optionTokens, positionalTokens...), nil
}

// renderOptionValues expands slice-typed options into one token pair per
// element; scalar options render to a single value.
func renderOptionValues(parameter Parameter, suppliedValue any) ([]string, error) {
	elements, isList := suppliedValue.([]any)
	if isList && isSliceValueType(parameter.ValueType) {
		rendered := make([]string, 0, len(elements))
		for _, element := range elements {
			renderedElement, renderErr := renderValue(element)
			if renderErr != nil {
				return nil, renderErr
			}
			rendered = append(rendered, renderedElement)
		}
		return rendered, nil
	}
	rendered, renderErr := renderValue(suppliedValue)
	if renderErr != nil {
		return nil, renderErr
	}
	return []string{rendered}, nil
}

func isSliceValueType(valueType string) bool {
	return strings.HasSuffix(valueType, "Slice") || strings.HasSuffix(valueType, "Array")
}

// renderValue produces the shell-style string form of a supplied value.
// Protocol clients deliver JSON, so numbers arrive as float64.
func renderValue(value any) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case bool:
		return strconv.FormatBool(typed), nil
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(typed), nil
	case int64:
		return strconv.FormatInt(typed, 10), nil
	case json.Number:
		return typed.String(), nil
	case fmt.Stringer:
		return typed.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

func truthyValue(value any) (bool, error) {
	switch typed := value.(type) {
	case bool:
		return typed, nil
	case string:
		parsed, parseErr := strconv.ParseBool(typed)
		if parseErr != nil {
			return false, fmt.Errorf("not a boolean: %q", typed)
		}
		return parsed, nil
	case float64:
		return typed != 0, nil
	default:
		return false, fmt.Errorf("unsupported boolean type %T", value)
	}
}
