package bridge_test

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tanradell/toolbridge/bridge"
)

type environmentKeyType struct{}

var environmentKey environmentKeyType

const defaultEnvironment = "DEFAULT"

// newParentTree builds the command tree used across the package tests: a
// root group whose persistent pre-run establishes shared state, with child
// commands covering every parameter kind.
func newParentTree() *cobra.Command {
	root := &cobra.Command{
		Use:   "parent",
		Short: "parent command that sets up shared state",
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			environment, lookupErr := command.Flags().GetString("env")
			if lookupErr != nil {
				return lookupErr
			}
			command.SetContext(context.WithValue(command.Context(), environmentKey, environment))
			command.Printf("Parent: Setting env to %s\n", environment)
			return nil
		},
	}
	root.PersistentFlags().String("env", defaultEnvironment, "environment to use")

	childA := &cobra.Command{
		Use:   "child-a",
		Short: "child command that reads shared state",
		RunE: func(command *cobra.Command, _ []string) error {
			command.Printf("Child A: Using env %s\n", environmentFrom(command))
			return nil
		},
	}

	childB := &cobra.Command{
		Use:   "child-b",
		Short: "child command with its own option",
		RunE: func(command *cobra.Command, _ []string) error {
			childFlag, _ := command.Flags().GetString("child-flag")
			command.Printf("Child B: Using env %s with flag %s\n", environmentFrom(command), childFlag)
			return nil
		},
	}
	childB.Flags().String("child-flag", "", "child specific flag")

	childC := &cobra.Command{
		Use:   "child-c",
		Short: "child command with a positional argument",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			command.Printf("Child C: Message '%s' in env %s\n", arguments[0], environmentFrom(command))
			return nil
		},
	}
	mustDeclareArguments(childC, bridge.Argument{Name: "message", Help: "message to print", Required: true})

	greet := &cobra.Command{
		Use:   "greet",
		Short: "greet someone",
		RunE: func(command *cobra.Command, _ []string) error {
			name, _ := command.Flags().GetString("name")
			formal, _ := command.Flags().GetBool("formal")
			if formal {
				command.Printf("Good day, %s.\n", name)
				return nil
			}
			command.Printf("Hey %s!\n", name)
			return nil
		},
	}
	greet.Flags().String("name", "", "name to greet")
	greet.Flags().Bool("formal", false, "use formal greeting")
	_ = greet.MarkFlagRequired("name")

	repeat := &cobra.Command{
		Use:   "repeat",
		Short: "print a line a number of times",
		RunE: func(command *cobra.Command, _ []string) error {
			count, _ := command.Flags().GetInt("count")
			verbose, _ := command.Flags().GetBool("verbose")
			for iteration := 0; iteration < count; iteration++ {
				command.Printf("tick %d in env %s\n", iteration+1, environmentFrom(command))
			}
			if verbose {
				command.Println("done")
			}
			return nil
		},
	}
	repeat.Flags().Int("count", 1, "number of repetitions")
	repeat.Flags().Bool("verbose", false, "enable verbose output")
	repeat.Flags().StringSlice("tag", nil, "tags to attach")

	configGroup := &cobra.Command{Use: "config", Short: "configuration commands"}
	configGroup.PersistentFlags().String("scope", "local", "configuration scope")
	configGet := &cobra.Command{
		Use:   "get",
		Short: "read a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			scope, _ := command.Flags().GetString("scope")
			command.Printf("%s/%s in env %s\n", scope, arguments[0], environmentFrom(command))
			return nil
		},
	}
	mustDeclareArguments(configGet, bridge.Argument{Name: "key", Help: "configuration key", Required: true})
	configGroup.AddCommand(configGet)

	overrideEnv := &cobra.Command{
		Use:   "override-env",
		Short: "child command redeclaring an ancestor parameter",
		RunE: func(command *cobra.Command, _ []string) error {
			localEnvironment, _ := command.Flags().GetString("env")
			command.Printf("local env %s\n", localEnvironment)
			return nil
		},
	}
	overrideEnv.Flags().String("env", "CHILD", "environment override")

	explode := &cobra.Command{
		Use:   "explode",
		Short: "command that panics",
		RunE: func(*cobra.Command, []string) error {
			panic("boom")
		},
	}

	root.AddCommand(childA, childB, childC, greet, repeat, configGroup, overrideEnv, explode)
	return root
}

func mustDeclareArguments(command *cobra.Command, arguments ...bridge.Argument) {
	if declareErr := bridge.DeclareArguments(command, arguments...); declareErr != nil {
		panic(declareErr)
	}
}

func environmentFrom(command *cobra.Command) string {
	if value, ok := command.Context().Value(environmentKey).(string); ok {
		return value
	}
	return "UNKNOWN"
}

func mustScan(root *cobra.Command) *bridge.Catalog {
	catalog, scanErr := bridge.Scan(root)
	if scanErr != nil {
		panic(scanErr)
	}
	return catalog
}

func mustLookup(catalog *bridge.Catalog, toolName string) bridge.ToolDescriptor {
	descriptor, found := catalog.Lookup(toolName)
	if !found {
		panic("tool not found: " + toolName)
	}
	return descriptor
}
