package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitCmd creates the init command.
func InitCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save the API URL and timeout to the global config",
		Long: `Resolves the API URL and default timeout (flag, NOTERAG_API_URL / NOTERAG_TIMEOUT,
existing config, default) and writes them to the global config.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", true, "Verify the API is reachable before saving")

	return cmd
}

func runInit(cmd *cobra.Command, check bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if check {
		if _, err := api.ListNotes(cmd.Context(), 1, 1); err != nil {
			return fmt.Errorf("API not reachable at %s: %w", api.BaseURL(), err)
		}
	}

	config := &GlobalConfig{
		APIURL:    api.BaseURL(),
		TimeoutMS: api.Timeout().Milliseconds(),
	}
	if err := SaveGlobalConfig(config); err != nil {
		return err
	}

	configPath, _ := GetConfigPath()
	out := cmd.OutOrStdout()

	if outputJSON(cmd) {
		return printJSON(out, map[string]any{
			"success":    true,
			"api_url":    config.APIURL,
			"timeout_ms": config.TimeoutMS,
			"config":     configPath,
		})
	}

	fmt.Fprintf(out, "API URL: %s\n", config.APIURL)
	fmt.Fprintf(out, "Timeout: %s\n", api.Timeout())
	fmt.Fprintf(out, "Config saved to %s\n", configPath)
	return nil
}
