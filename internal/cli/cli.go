// Package cli provides the command line interface of the demonstration
// application. The command tree it builds doubles as the tree served to
// protocol clients by the mcp subcommand.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanradell/toolbridge/bridge"
	"github.com/tanradell/toolbridge/internal/utils"
)

const (
	rootUse              = "toolbridge"
	rootShortDescription = "toolbridge command line interface"
	rootLongDescription  = `toolbridge demonstrates exposing a command tree to protocol clients.
Every subcommand is advertised as a callable tool preserving parent options
and shared state. Use the mcp subcommand to serve the tree, and tools to
inspect the advertised catalog.`

	versionFlagName        = "version"
	versionFlagDescription = "display application version"
	versionTemplate        = "toolbridge version: %s\n"

	environmentFlagName        = "env"
	environmentFlagDescription = "environment to use"
	defaultEnvironment         = "DEFAULT"

	greetUse              = "greet"
	greetShortDescription = "greet someone"
	nameFlagName          = "name"
	nameFlagDescription   = "name to greet"
	formalFlagName        = "formal"
	formalFlagDescription = "use formal greeting"

	statusUse               = "status"
	statusShortDescription  = "show status information"
	verboseFlagName         = "verbose"
	verboseFlagDescription  = "enable verbose output"
	statusOutputFormat      = "Status: OK (env %s)\n"
	statusVerboseDetail     = "all subsystems nominal"
	greetFormalFormat       = "Good day, %s.\n"
	greetCasualFormat       = "Hey %s!\n"
	processOutputFormat     = "Processing %s in %s format (env %s)\n"
	configSetOutputFormat   = "Setting %s=%s (scope %s)\n"
	configGetOutputFormat   = "Value for %s: example_value (scope %s, env %s)\n"
	invalidFormatMessage    = "invalid format value %q"
	unknownEnvironmentValue = "UNKNOWN"

	processUse              = "process"
	processShortDescription = "process a file in the specified format"
	formatFlagName          = "format"
	formatFlagDescription   = "output format"
	defaultProcessFormat    = "text"
	filenameArgumentName    = "filename"
	filenameArgumentHelp    = "file to process"
	configUse               = "config"
	configShortDescription  = "configuration commands"
	scopeFlagName           = "scope"
	scopeFlagDescription    = "configuration scope"
	defaultConfigScope      = "local"
	configSetUse            = "set"
	configSetDescription    = "set a configuration value"
	keyFlagName             = "key"
	keyFlagDescription      = "configuration key"
	valueFlagName           = "value"
	valueFlagDescription    = "configuration value"
	configGetUse            = "get"
	configGetDescription    = "get a configuration value"
	keyArgumentName         = "key"
	keyArgumentHelp         = "configuration key"

	deployUse                 = "deploy"
	deployShortDescription    = "deployment commands"
	clusterFlagName           = "cluster"
	clusterFlagDescription    = "target cluster"
	defaultCluster            = "default"
	deployPlanUse             = "plan"
	deployPlanDescription     = "show the deployment plan"
	deployRunUse              = "run"
	deployRunDescription      = "run a deployment"
	dryRunFlagName            = "dry-run"
	dryRunFlagDescription     = "plan without applying changes"
	deployRollbackUse         = "rollback"
	deployRollbackDescription = "roll back to a release"
	releaseArgumentName       = "release"
	releaseArgumentHelp       = "release identifier to restore"
	deployPlanOutputFormat    = "Plan for cluster %s (env %s)\n"
	deployRunOutputFormat     = "Deploying to cluster %s (env %s)\n"
	deployDryRunOutputFormat  = "Dry run against cluster %s (env %s)\n"
	deployRollbackFormat      = "Rolling back %s on cluster %s (env %s)\n"
)

type environmentKeyType struct{}

var environmentKey environmentKeyType

// Execute runs the toolbridge application.
func Execute() error {
	var showVersion bool
	rootCommand := NewRootCommand()
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.RunE = func(command *cobra.Command, _ []string) error {
		if showVersion {
			command.Printf(versionTemplate, utils.GetApplicationVersion())
			return nil
		}
		return command.Help()
	}
	return rootCommand.Execute()
}

// NewRootCommand builds the demonstration command tree. The mcp subcommand
// uses this same constructor as the factory for per-invocation trees, so the
// tree must be fully rebuilt on every call.
func NewRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			environment, lookupErr := command.Flags().GetString(environmentFlagName)
			if lookupErr != nil {
				return lookupErr
			}
			command.SetContext(context.WithValue(command.Context(), environmentKey, environment))
			return nil
		},
	}
	rootCommand.PersistentFlags().String(environmentFlagName, defaultEnvironment, environmentFlagDescription)
	rootCommand.AddCommand(
		createGreetCommand(),
		createStatusCommand(),
		createProcessCommand(),
		createConfigCommand(),
		createDeployCommand(),
		createServeCommand(),
		createToolsCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// environmentFromCommand reads the shared state the root established.
func environmentFromCommand(command *cobra.Command) string {
	if value, ok := command.Context().Value(environmentKey).(string); ok {
		return value
	}
	return unknownEnvironmentValue
}

func createGreetCommand() *cobra.Command {
	greetCommand := &cobra.Command{
		Use:   greetUse,
		Short: greetShortDescription,
		RunE: func(command *cobra.Command, _ []string) error {
			name, _ := command.Flags().GetString(nameFlagName)
			formal, _ := command.Flags().GetBool(formalFlagName)
			if formal {
				command.Printf(greetFormalFormat, name)
				return nil
			}
			command.Printf(greetCasualFormat, name)
			return nil
		},
	}
	greetCommand.Flags().String(nameFlagName, "", nameFlagDescription)
	greetCommand.Flags().Bool(formalFlagName, false, formalFlagDescription)
	_ = greetCommand.MarkFlagRequired(nameFlagName)
	return greetCommand
}

func createStatusCommand() *cobra.Command {
	statusCommand := &cobra.Command{
		Use:   statusUse,
		Short: statusShortDescription,
		RunE: func(command *cobra.Command, _ []string) error {
			command.Printf(statusOutputFormat, environmentFromCommand(command))
			verbose, _ := command.Flags().GetBool(verboseFlagName)
			if verbose {
				command.Println(statusVerboseDetail)
			}
			return nil
		},
	}
	statusCommand.Flags().Bool(verboseFlagName, false, verboseFlagDescription)
	return statusCommand
}

func createProcessCommand() *cobra.Command {
	processCommand := &cobra.Command{
		Use:   processUse,
		Short: processShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			format, _ := command.Flags().GetString(formatFlagName)
			if !isSupportedProcessFormat(format) {
				return fmt.Errorf(invalidFormatMessage, format)
			}
			command.Printf(processOutputFormat, arguments[0], format, environmentFromCommand(command))
			return nil
		},
	}
	processCommand.Flags().String(formatFlagName, defaultProcessFormat, formatFlagDescription)
	if declareErr := bridge.DeclareArguments(processCommand, bridge.Argument{
		Name:     filenameArgumentName,
		Help:     filenameArgumentHelp,
		Required: true,
	}); declareErr != nil {
		panic(declareErr)
	}
	return processCommand
}

func isSupportedProcessFormat(format string) bool {
	switch format {
	case "text", "json", "yaml":
		return true
	default:
		return false
	}
}

func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}
	configCommand.PersistentFlags().String(scopeFlagName, defaultConfigScope, scopeFlagDescription)

	setCommand := &cobra.Command{
		Use:   configSetUse,
		Short: configSetDescription,
		RunE: func(command *cobra.Command, _ []string) error {
			key, _ := command.Flags().GetString(keyFlagName)
			value, _ := command.Flags().GetString(valueFlagName)
			scope, _ := command.Flags().GetString(scopeFlagName)
			command.Printf(configSetOutputFormat, key, value, scope)
			return nil
		},
	}
	setCommand.Flags().String(keyFlagName, "", keyFlagDescription)
	setCommand.Flags().String(valueFlagName, "", valueFlagDescription)
	_ = setCommand.MarkFlagRequired(keyFlagName)
	_ = setCommand.MarkFlagRequired(valueFlagName)

	getCommand := &cobra.Command{
		Use:   configGetUse,
		Short: configGetDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			scope, _ := command.Flags().GetString(scopeFlagName)
			command.Printf(configGetOutputFormat, arguments[0], scope, environmentFromCommand(command))
			return nil
		},
	}
	if declareErr := bridge.DeclareArguments(getCommand, bridge.Argument{
		Name:     keyArgumentName,
		Help:     keyArgumentHelp,
		Required: true,
	}); declareErr != nil {
		panic(declareErr)
	}

	configCommand.AddCommand(setCommand, getCommand)
	return configCommand
}

func createDeployCommand() *cobra.Command {
	deployCommand := &cobra.Command{
		Use:   deployUse,
		Short: deployShortDescription,
	}
	deployCommand.PersistentFlags().String(clusterFlagName, defaultCluster, clusterFlagDescription)

	planCommand := &cobra.Command{
		Use:   deployPlanUse,
		Short: deployPlanDescription,
		RunE: func(command *cobra.Command, _ []string) error {
			cluster, _ := command.Flags().GetString(clusterFlagName)
			command.Printf(deployPlanOutputFormat, cluster, environmentFromCommand(command))
			return nil
		},
	}

	runCommand := &cobra.Command{
		Use:   deployRunUse,
		Short: deployRunDescription,
		RunE: func(command *cobra.Command, _ []string) error {
			cluster, _ := command.Flags().GetString(clusterFlagName)
			dryRun, _ := command.Flags().GetBool(dryRunFlagName)
			if dryRun {
				command.Printf(deployDryRunOutputFormat, cluster, environmentFromCommand(command))
				return nil
			}
			command.Printf(deployRunOutputFormat, cluster, environmentFromCommand(command))
			return nil
		},
	}
	runCommand.Flags().Bool(dryRunFlagName, false, dryRunFlagDescription)

	rollbackCommand := &cobra.Command{
		Use:   deployRollbackUse,
		Short: deployRollbackDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			cluster, _ := command.Flags().GetString(clusterFlagName)
			command.Printf(deployRollbackFormat, arguments[0], cluster, environmentFromCommand(command))
			return nil
		},
	}
	if declareErr := bridge.DeclareArguments(rollbackCommand, bridge.Argument{
		Name:     releaseArgumentName,
		Help:     releaseArgumentHelp,
		Required: true,
	}); declareErr != nil {
		panic(declareErr)
	}

	deployCommand.AddCommand(planCommand, runCommand, rollbackCommand)
	return deployCommand
}
