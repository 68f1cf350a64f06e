package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/tanradell/toolbridge/bridge"
	"github.com/tanradell/toolbridge/internal/config"
	"github.com/tanradell/toolbridge/internal/utils"
	"github.com/tanradell/toolbridge/mcpserver"
)

const (
	serveUse              = "mcp"
	serveShortDescription = "serve the command tree to protocol clients"
	serveLongDescription  = `mcp exposes every runnable command of this application as a callable tool.
Clients list the catalog, inspect parameter schemas and invoke commands with
named arguments. The stdio transport speaks the protocol over standard
input and output; the http transport serves a JSON API on a listen address.`

	transportFlagName        = "transport"
	transportFlagDescription = "transport to serve on (stdio or http)"
	listenFlagName           = "listen"
	listenFlagDescription    = "listen address for the http transport"
	configFlagName           = "config"
	configFlagDescription    = "path to an explicit configuration file"

	defaultServerName          = "toolbridge"
	unsupportedTransportFormat = "unsupported transport %q"
	scanFailureFormat          = "scan command tree: %w"
)

// serveSettings holds the effective serve parameters after merging the
// configuration file with command line flags. Flags win.
type serveSettings struct {
	serverName      string
	transportName   string
	listenAddress   string
	shutdownTimeout time.Duration
}

func createServeCommand() *cobra.Command {
	var transportName string
	var listenAddress string
	var configFilePath string
	serveCommand := &cobra.Command{
		Use:   serveUse,
		Short: serveShortDescription,
		Long:  serveLongDescription,
		RunE: func(command *cobra.Command, _ []string) error {
			return runServe(command.Context(), transportName, listenAddress, configFilePath)
		},
	}
	serveCommand.Flags().StringVar(&transportName, transportFlagName, "", transportFlagDescription)
	serveCommand.Flags().StringVar(&listenAddress, listenFlagName, "", listenFlagDescription)
	serveCommand.Flags().StringVar(&configFilePath, configFlagName, "", configFlagDescription)
	bridge.MarkSkipped(serveCommand)
	return serveCommand
}

func runServe(executionContext context.Context, transportName string, listenAddress string, configFilePath string) error {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError)
	}
	defer func() { _ = loggerInstance.Sync() }()

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: configFilePath,
	})
	if configurationError != nil {
		return configurationError
	}

	settings := resolveServeSettings(applicationConfiguration, transportName, listenAddress)

	executionBridge, bridgeError := bridge.New(
		NewRootCommand,
		bridge.WithExcludedTools(applicationConfiguration.Tools.Exclude...),
	)
	if bridgeError != nil {
		return fmt.Errorf(scanFailureFormat, bridgeError)
	}

	switch settings.transportName {
	case config.TransportHTTP:
		httpServer := mcpserver.NewHTTPServer(executionBridge, mcpserver.HTTPConfig{
			Address:         settings.listenAddress,
			ShutdownTimeout: settings.shutdownTimeout,
		}, loggerInstance)
		return httpServer.Run(executionContext, nil)
	case config.TransportStdio:
		protocolServer := mcpserver.NewServer(executionBridge, mcpserver.Config{
			Name:    settings.serverName,
			Version: utils.GetApplicationVersion(),
		}, loggerInstance)
		return protocolServer.Run(executionContext, &mcp.StdioTransport{})
	default:
		return fmt.Errorf(unsupportedTransportFormat, settings.transportName)
	}
}

func resolveServeSettings(applicationConfiguration config.ApplicationConfiguration, transportName string, listenAddress string) serveSettings {
	settings := serveSettings{
		serverName:    defaultServerName,
		transportName: config.TransportStdio,
	}
	if applicationConfiguration.Server.Name != "" {
		settings.serverName = applicationConfiguration.Server.Name
	}
	if applicationConfiguration.Server.Transport != "" {
		settings.transportName = applicationConfiguration.Server.Transport
	}
	if applicationConfiguration.Server.Listen != "" {
		settings.listenAddress = applicationConfiguration.Server.Listen
	}
	if applicationConfiguration.Server.ShutdownSeconds != nil {
		settings.shutdownTimeout = time.Duration(*applicationConfiguration.Server.ShutdownSeconds) * time.Second
	}
	if transportName != "" {
		settings.transportName = transportName
	}
	if listenAddress != "" {
		settings.listenAddress = listenAddress
	}
	return settings
}
