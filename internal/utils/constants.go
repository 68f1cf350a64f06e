package utils

const (
	// ConfigFileName is the name of the application configuration file.
	ConfigFileName = ".toolbridge.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home that
	// holds the global configuration file.
	GlobalConfigDirectoryName = ".config/toolbridge"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage reports a fatal application error.
	ApplicationExecutionFailedMessage = "application execution failed"
)
