package bridge_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tanradell/toolbridge/bridge"
)

func TestBuildArgumentsOrdering(t *testing.T) {
	t.Parallel()

	catalog := mustScan(newParentTree())

	testCases := []struct {
		name     string
		tool     string
		values   map[string]any
		expected []string
	}{
		{
			name:     "parent_option_before_subcommand_token",
			tool:     "parent_child_a",
			values:   map[string]any{"env": "PRODUCTION"},
			expected: []string{"--env", "PRODUCTION", "child-a"},
		},
		{
			name:     "child_option_after_subcommand_token",
			tool:     "parent_child_b",
			values:   map[string]any{"env": "STAGING", "child_flag": "test"},
			expected: []string{"--env", "STAGING", "child-b", "--child-flag", "test"},
		},
		{
			name:     "positional_after_child_options",
			tool:     "parent_child_c",
			values:   map[string]any{"env": "DEVELOPMENT", "message": "hello world"},
			expected: []string{"--env", "DEVELOPMENT", "child-c", "hello world"},
		},
		{
			name:     "three_level_path_distributes_options_per_level",
			tool:     "parent_config_get",
			values:   map[string]any{"env": "PRODUCTION", "scope": "user", "key": "color"},
			expected: []string{"--env", "PRODUCTION", "config", "--scope", "user", "get", "color"},
		},
		{
			name:     "omitted_parameters_leave_no_tokens",
			tool:     "parent_child_a",
			values:   map[string]any{},
			expected: []string{"child-a"},
		},
		{
			name:     "false_flag_is_not_emitted",
			tool:     "parent_repeat",
			values:   map[string]any{"verbose": false},
			expected: []string{"repeat"},
		},
		{
			name:     "true_flag_is_emitted_bare",
			tool:     "parent_repeat",
			values:   map[string]any{"verbose": true},
			expected: []string{"repeat", "--verbose"},
		},
		{
			name:     "numeric_value_renders_without_fraction",
			tool:     "parent_repeat",
			values:   map[string]any{"count": float64(3)},
			expected: []string{"repeat", "--count", "3"},
		},
		{
			name:     "slice_option_repeats_flag_token",
			tool:     "parent_repeat",
			values:   map[string]any{"tag": []any{"alpha", "beta"}},
			expected: []string{"repeat", "--tag", "alpha", "--tag", "beta"},
		},
		{
			name:     "overridden_name_emits_at_deepest_level",
			tool:     "parent_override_env",
			values:   map[string]any{"env": "EDGE"},
			expected: []string{"override-env", "--env", "EDGE"},
		},
		{
			name:     "options_precede_positionals_within_level",
			tool:     "parent_config_get",
			values:   map[string]any{"scope": "user", "key": "color"},
			expected: []string{"config", "--scope", "user", "get", "color"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			descriptor := mustLookup(catalog, testCase.tool)
			arguments, buildErr := bridge.BuildArguments(descriptor, testCase.values)
			if buildErr != nil {
				t.Fatalf("build: %v", buildErr)
			}
			if !reflect.DeepEqual(arguments, testCase.expected) {
				t.Fatalf("argument vector mismatch: got %v, want %v", arguments, testCase.expected)
			}
		})
	}
}

func TestBuildArgumentsRootToolYieldsEmptyVector(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{
		Use:   "status",
		Short: "show overall status",
		RunE:  func(*cobra.Command, []string) error { return nil },
	}
	root.AddCommand(&cobra.Command{
		Use:  "detail",
		RunE: func(*cobra.Command, []string) error { return nil },
	})

	catalog := mustScan(root)
	descriptor := mustLookup(catalog, "status")

	arguments, buildErr := bridge.BuildArguments(descriptor, map[string]any{})
	if buildErr != nil {
		t.Fatalf("build: %v", buildErr)
	}
	if arguments == nil {
		t.Fatal("argument vector must not be nil")
	}
	if len(arguments) != 0 {
		t.Fatalf("expected an empty argument vector, got %v", arguments)
	}
}

func TestBuildArgumentsRejectsMissingRequired(t *testing.T) {
	t.Parallel()

	catalog := mustScan(newParentTree())
	descriptor := mustLookup(catalog, "parent_greet")

	_, buildErr := bridge.BuildArguments(descriptor, map[string]any{"formal": true})
	var missingErr *bridge.MissingParameterError
	if !errors.As(buildErr, &missingErr) {
		t.Fatalf("expected MissingParameterError, got %v", buildErr)
	}
	if missingErr.Parameter != "name" {
		t.Fatalf("missing parameter mismatch: got %q, want %q", missingErr.Parameter, "name")
	}
}

func TestBuildArgumentsRejectsUnknownParameter(t *testing.T) {
	t.Parallel()

	catalog := mustScan(newParentTree())
	descriptor := mustLookup(catalog, "parent_child_a")

	_, buildErr := bridge.BuildArguments(descriptor, map[string]any{"nonexistent": "value"})
	var unknownErr *bridge.UnknownParameterError
	if !errors.As(buildErr, &unknownErr) {
		t.Fatalf("expected UnknownParameterError, got %v", buildErr)
	}
}

func TestBuildArgumentsRejectsUnrenderableValue(t *testing.T) {
	t.Parallel()

	catalog := mustScan(newParentTree())
	descriptor := mustLookup(catalog, "parent_child_b")

	_, buildErr := bridge.BuildArguments(descriptor, map[string]any{"child_flag": map[string]any{"nested": true}})
	var invalidErr *bridge.InvalidParameterError
	if !errors.As(buildErr, &invalidErr) {
		t.Fatalf("expected InvalidParameterError, got %v", buildErr)
	}
}

func TestBuildArgumentsFlagAcceptsTruthyLiterals(t *testing.T) {
	t.Parallel()

	catalog := mustScan(newParentTree())
	descriptor := mustLookup(catalog, "parent_repeat")

	testCases := []struct {
		name     string
		value    any
		expected []string
	}{
		{name: "string_true", value: "true", expected: []string{"repeat", "--verbose"}},
		{name: "string_false", value: "false", expected: []string{"repeat"}},
		{name: "nonzero_number", value: float64(1), expected: []string{"repeat", "--verbose"}},
		{name: "zero_number", value: float64(0), expected: []string{"repeat"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			arguments, buildErr := bridge.BuildArguments(descriptor, map[string]any{"verbose": testCase.value})
			if buildErr != nil {
				t.Fatalf("build: %v", buildErr)
			}
			if !reflect.DeepEqual(arguments, testCase.expected) {
				t.Fatalf("argument vector mismatch: got %v, want %v", arguments, testCase.expected)
			}
		})
	}
}
