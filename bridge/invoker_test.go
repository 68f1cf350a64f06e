package bridge_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tanradell/toolbridge/bridge"
)

func newParentBridge(t *testing.T) *bridge.Bridge {
	t.Helper()
	parentBridge, newErr := bridge.New(newParentTree)
	if newErr != nil {
		t.Fatalf("new bridge: %v", newErr)
	}
	return parentBridge
}

func TestInvokePassesSharedStateToChildren(t *testing.T) {
	t.Parallel()

	parentBridge := newParentBridge(t)

	testCases := []struct {
		name            string
		tool            string
		values          map[string]any
		expectedOutputs []string
	}{
		{
			name:   "child_a_observes_parent_state",
			tool:   "parent_child_a",
			values: map[string]any{"env": "PRODUCTION"},
			expectedOutputs: []string{
				"Parent: Setting env to PRODUCTION",
				"Child A: Using env PRODUCTION",
			},
		},
		{
			name:   "child_b_combines_parent_state_and_own_option",
			tool:   "parent_child_b",
			values: map[string]any{"env": "STAGING", "child_flag": "test"},
			expectedOutputs: []string{
				"Parent: Setting env to STAGING",
				"Child B: Using env STAGING with flag test",
			},
		},
		{
			name:   "child_c_combines_parent_state_and_positional",
			tool:   "parent_child_c",
			values: map[string]any{"env": "DEVELOPMENT", "message": "hello world"},
			expectedOutputs: []string{
				"Parent: Setting env to DEVELOPMENT",
				"Child C: Message 'hello world' in env DEVELOPMENT",
			},
		},
		{
			name:   "omitted_parent_option_applies_declared_default",
			tool:   "parent_child_a",
			values: map[string]any{},
			expectedOutputs: []string{
				"Parent: Setting env to DEFAULT",
				"Child A: Using env DEFAULT",
			},
		},
		{
			name:   "three_level_chain_applies_every_level",
			tool:   "parent_config_get",
			values: map[string]any{"env": "PRODUCTION", "scope": "user", "key": "color"},
			expectedOutputs: []string{
				"user/color in env PRODUCTION",
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := parentBridge.Invoke(context.Background(), testCase.tool, testCase.values)
			if !result.Succeeded {
				t.Fatalf("invocation failed: kind=%s error=%s", result.FailureKind, result.Error)
			}
			for _, expectedOutput := range testCase.expectedOutputs {
				if !strings.Contains(result.Output, expectedOutput) {
					t.Fatalf("output %q missing from %q", expectedOutput, result.Output)
				}
			}
		})
	}
}

func TestInvokeFalseFlagLeavesDefaultBehavior(t *testing.T) {
	t.Parallel()

	parentBridge := newParentBridge(t)
	result := parentBridge.Invoke(context.Background(), "parent_repeat", map[string]any{"verbose": false})
	if !result.Succeeded {
		t.Fatalf("invocation failed: %s", result.Error)
	}
	if strings.Contains(result.Output, "done") {
		t.Fatalf("false flag must not trigger flag behavior: %q", result.Output)
	}
	if !strings.Contains(result.Output, "tick 1 in env DEFAULT") {
		t.Fatalf("default count must apply: %q", result.Output)
	}
}

// Not parallel: the test replaces os.Args to prove the invocation never
// falls back to the host process's own arguments.
func TestInvokeRootToolIgnoresProcessArguments(t *testing.T) {
	factory := func() *cobra.Command {
		root := &cobra.Command{
			Use: "app",
			RunE: func(command *cobra.Command, _ []string) error {
				command.Println("root body ran")
				return nil
			},
		}
		root.AddCommand(&cobra.Command{
			Use: "serve",
			RunE: func(command *cobra.Command, _ []string) error {
				command.Println("serve ran")
				return nil
			},
		})
		return root
	}

	originalArguments := os.Args
	os.Args = []string{"app", "serve"}
	defer func() { os.Args = originalArguments }()

	rootBridge, newErr := bridge.New(factory)
	if newErr != nil {
		t.Fatalf("new bridge: %v", newErr)
	}

	result := rootBridge.Invoke(context.Background(), "app", map[string]any{})
	if !result.Succeeded {
		t.Fatalf("expected success, got kind %q: %s", result.FailureKind, result.Error)
	}
	if !strings.Contains(result.Output, "root body ran") {
		t.Fatalf("expected the root body to run, got %q", result.Output)
	}
	if strings.Contains(result.Output, "serve ran") {
		t.Fatalf("process arguments leaked into the invocation: %q", result.Output)
	}
}

func TestInvokeUnknownToolIsIsolated(t *testing.T) {
	t.Parallel()

	parentBridge := newParentBridge(t)

	failure := parentBridge.Invoke(context.Background(), "no_such_tool", nil)
	if failure.Succeeded {
		t.Fatalf("unknown tool must fail")
	}
	if failure.FailureKind != bridge.FailureKindUnknownTool {
		t.Fatalf("failure kind mismatch: got %q", failure.FailureKind)
	}

	// The catalog and subsequent invocations are unaffected.
	followUp := parentBridge.Invoke(context.Background(), "parent_child_a", map[string]any{"env": "PRODUCTION"})
	if !followUp.Succeeded {
		t.Fatalf("follow-up invocation failed: %s", followUp.Error)
	}
}

func TestInvokeMissingRequiredParameter(t *testing.T) {
	t.Parallel()

	parentBridge := newParentBridge(t)
	result := parentBridge.Invoke(context.Background(), "parent_greet", map[string]any{})
	if result.Succeeded {
		t.Fatalf("missing required parameter must fail")
	}
	if result.FailureKind != bridge.FailureKindMissingParameter {
		t.Fatalf("failure kind mismatch: got %q", result.FailureKind)
	}
	if !strings.Contains(result.Error, "name") {
		t.Fatalf("error must name the missing parameter: %q", result.Error)
	}
}

func TestInvokeFrameworkUsageErrorIsReported(t *testing.T) {
	t.Parallel()

	parentBridge := newParentBridge(t)
	result := parentBridge.Invoke(context.Background(), "parent_repeat", map[string]any{"count": "not-a-number"})
	if result.Succeeded {
		t.Fatalf("invalid typed option must fail")
	}
	if result.FailureKind != bridge.FailureKindUsage {
		t.Fatalf("failure kind mismatch: got %q error=%s", result.FailureKind, result.Error)
	}
}

func TestInvokeContainsCommandPanic(t *testing.T) {
	t.Parallel()

	parentBridge := newParentBridge(t)
	result := parentBridge.Invoke(context.Background(), "parent_explode", map[string]any{})
	if result.Succeeded {
		t.Fatalf("panicking command must fail")
	}
	if result.FailureKind != bridge.FailureKindExecution {
		t.Fatalf("failure kind mismatch: got %q", result.FailureKind)
	}
	if !strings.Contains(result.Error, "boom") {
		t.Fatalf("panic message must be preserved: %q", result.Error)
	}
}

func TestInvokeConcurrentCallsDoNotInterleaveOutput(t *testing.T) {
	t.Parallel()

	parentBridge := newParentBridge(t)
	environments := []string{"ALPHA", "BETA", "GAMMA", "DELTA"}

	results := make(chan string, len(environments))
	for _, environment := range environments {
		environment := environment
		go func() {
			result := parentBridge.Invoke(context.Background(), "parent_child_a", map[string]any{"env": environment})
			results <- result.Output
		}()
	}

	outputsByEnvironment := map[string]string{}
	for range environments {
		output := <-results
		for _, environment := range environments {
			if strings.Contains(output, "Child A: Using env "+environment) {
				outputsByEnvironment[environment] = output
			}
		}
	}
	for _, environment := range environments {
		output, present := outputsByEnvironment[environment]
		if !present {
			t.Fatalf("no output captured for environment %s", environment)
		}
		if strings.Count(output, "Child A: Using env") != 1 {
			t.Fatalf("output for %s interleaved with another call: %q", environment, output)
		}
	}
}
