package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// GlobalConfig represents the client settings stored in config.json
type GlobalConfig struct {
	APIURL    string `json:"api_url"`
	TimeoutMS int64  `json:"timeout_ms,omitempty"`
}

var (
	getConfigDirFunc  = defaultGetConfigDir
	getConfigPathFunc = defaultGetConfigPath
)

func defaultGetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "noterag"), nil
}

func defaultGetConfigPath() (string, error) {
	configDir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetConfigDir returns the platform-specific configuration directory
func GetConfigDir() (string, error) {
	return getConfigDirFunc()
}

// GetConfigPath returns the full path to the config.json file
func GetConfigPath() (string, error) {
	return getConfigPathFunc()
}

// LoadGlobalConfig reads and parses the global config.json file.
// Returns nil config (not error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveGlobalConfig writes the config to config.json with 0600 permissions
func SaveGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DeleteGlobalConfig removes the config.json file
func DeleteGlobalConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.Remove(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}

// SettingSource represents where a client setting came from
type SettingSource string

const (
	SourceFlag         SettingSource = "flag"
	SourceEnv          SettingSource = "env"
	SourceGlobalConfig SettingSource = "global_config"
	SourceDefault      SettingSource = "default"
)

// Settings is the resolved client configuration.
type Settings struct {
	APIURL        string
	APIURLSource  SettingSource
	Timeout       time.Duration
	TimeoutSource SettingSource
}

// ResolveSettings walks the cascade flag -> env -> global config -> default for
// the API URL and the default timeout. Flags are read from cmd when it is non-nil.
func ResolveSettings(cmd *cobra.Command) (*Settings, error) {
	s := &Settings{}

	if cmd != nil {
		if v, err := cmd.Flags().GetString("api-url"); err == nil && v != "" {
			s.APIURL, s.APIURLSource = v, SourceFlag
		}
		if v, err := cmd.Flags().GetDuration("timeout"); err == nil && v > 0 {
			s.Timeout, s.TimeoutSource = v, SourceFlag
		}
	}

	if s.APIURL == "" {
		if v := os.Getenv(envAPIURL); v != "" {
			s.APIURL, s.APIURLSource = v, SourceEnv
		}
	}
	if s.Timeout == 0 {
		if v := os.Getenv(envTimeout); v != "" {
			d, err := parseTimeout(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", envTimeout, err)
			}
			s.Timeout, s.TimeoutSource = d, SourceEnv
		}
	}

	if s.APIURL == "" || s.Timeout == 0 {
		globalConfig, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if globalConfig != nil {
			if s.APIURL == "" && globalConfig.APIURL != "" {
				s.APIURL, s.APIURLSource = globalConfig.APIURL, SourceGlobalConfig
			}
			if s.Timeout == 0 && globalConfig.TimeoutMS > 0 {
				s.Timeout = time.Duration(globalConfig.TimeoutMS) * time.Millisecond
				s.TimeoutSource = SourceGlobalConfig
			}
		}
	}

	if s.APIURL == "" {
		s.APIURL, s.APIURLSource = DefaultAPIURL, SourceDefault
	}
	if s.Timeout == 0 {
		s.Timeout, s.TimeoutSource = DefaultTimeout, SourceDefault
	}

	return s, nil
}

// parseTimeout accepts either a Go duration ("30s") or a bare millisecond count.
func parseTimeout(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("timeout must be positive")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}
	return d, nil
}
