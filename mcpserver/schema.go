package mcpserver

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/tanradell/toolbridge/bridge"
)

const (
	schemaTypeObject  = "object"
	schemaTypeString  = "string"
	schemaTypeBoolean = "boolean"
	schemaTypeInteger = "integer"
	schemaTypeNumber  = "number"
	schemaTypeArray   = "array"
)

// inputSchemaForTool renders a descriptor's merged parameter schema as the
// JSON Schema object advertised in the tool listing.
func inputSchemaForTool(descriptor bridge.ToolDescriptor) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema)
	var required []string
	for _, parameter := range descriptor.MergedParameters() {
		properties[parameter.Name] = propertySchema(parameter)
		if parameter.Required {
			required = append(required, parameter.Name)
		}
	}
	return &jsonschema.Schema{
		Type:       schemaTypeObject,
		Properties: properties,
		Required:   required,
	}
}

func propertySchema(parameter bridge.Parameter) *jsonschema.Schema {
	property := &jsonschema.Schema{Description: parameter.Help}
	switch {
	case parameter.Kind == bridge.ParameterKindFlag:
		property.Type = schemaTypeBoolean
	case isSliceValueType(parameter.ValueType):
		property.Type = schemaTypeArray
		property.Items = &jsonschema.Schema{Type: elementSchemaType(parameter.ValueType)}
	default:
		property.Type = scalarSchemaType(parameter.ValueType)
	}
	if defaultValue, present := defaultJSON(parameter, property.Type); present {
		property.Default = defaultValue
	}
	return property
}

func isSliceValueType(valueType string) bool {
	return strings.HasSuffix(valueType, "Slice") || strings.HasSuffix(valueType, "Array")
}

func elementSchemaType(valueType string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(valueType, "Slice"), "Array")
	return scalarSchemaType(trimmed)
}

func scalarSchemaType(valueType string) string {
	switch valueType {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "count":
		return schemaTypeInteger
	case "float32", "float64":
		return schemaTypeNumber
	case "bool":
		return schemaTypeBoolean
	default:
		return schemaTypeString
	}
}

// defaultJSON encodes a parameter's declared default, when one exists, in the
// JSON type matching its schema type. Required parameters advertise no
// default; unparsable defaults are omitted rather than misadvertised.
func defaultJSON(parameter bridge.Parameter, schemaType string) (json.RawMessage, bool) {
	if parameter.Required || parameter.Default == "" {
		return nil, false
	}
	switch schemaType {
	case schemaTypeBoolean:
		parsed, parseErr := strconv.ParseBool(parameter.Default)
		if parseErr != nil {
			return nil, false
		}
		return mustMarshalJSON(parsed), true
	case schemaTypeInteger:
		parsed, parseErr := strconv.ParseInt(parameter.Default, 10, 64)
		if parseErr != nil {
			return nil, false
		}
		return mustMarshalJSON(parsed), true
	case schemaTypeNumber:
		parsed, parseErr := strconv.ParseFloat(parameter.Default, 64)
		if parseErr != nil {
			return nil, false
		}
		return mustMarshalJSON(parsed), true
	case schemaTypeString:
		return mustMarshalJSON(parameter.Default), true
	default:
		return nil, false
	}
}

func mustMarshalJSON(value any) json.RawMessage {
	encoded, encodeErr := json.Marshal(value)
	if encodeErr != nil {
		return nil
	}
	return encoded
}
