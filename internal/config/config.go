// Package config loads layered application configuration for the serve
// command: a global file under the user's home merged under a local file in
// the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tanradell/toolbridge/internal/utils"
)

// Transport names accepted by the serve command.
const (
	// TransportStdio serves the Model Context Protocol over stdin/stdout.
	TransportStdio = "stdio"
	// TransportHTTP serves the catalog and invocations over plain HTTP.
	TransportHTTP = "http"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds serve-command configuration defaults.
type ApplicationConfiguration struct {
	Server ServerConfiguration `mapstructure:"server"`
	Tools  ToolsConfiguration  `mapstructure:"tools"`
}

// ServerConfiguration identifies and parameterizes the protocol server.
type ServerConfiguration struct {
	Name            string `mapstructure:"name"`
	Transport       string `mapstructure:"transport"`
	Listen          string `mapstructure:"listen"`
	ShutdownSeconds *int   `mapstructure:"shutdown_seconds"`
}

// ToolsConfiguration adjusts which commands the catalog advertises.
type ToolsConfiguration struct {
	Exclude []string `mapstructure:"exclude"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryErr := os.Getwd()
		if workingDirectoryErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryErr)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeErr := os.UserHomeDir(); homeErr == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var loaded ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&loaded); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return loaded, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Server = result.Server.merge(override.Server)
	result.Tools = result.Tools.merge(override.Tools)
	return result
}

func (configuration ServerConfiguration) merge(override ServerConfiguration) ServerConfiguration {
	result := configuration
	if override.Name != "" {
		result.Name = override.Name
	}
	if override.Transport != "" {
		result.Transport = override.Transport
	}
	if override.Listen != "" {
		result.Listen = override.Listen
	}
	if override.ShutdownSeconds != nil {
		result.ShutdownSeconds = cloneInt(override.ShutdownSeconds)
	}
	return result
}

func (configuration ToolsConfiguration) merge(override ToolsConfiguration) ToolsConfiguration {
	result := configuration
	if override.Exclude != nil {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	return result
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
