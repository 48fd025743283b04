package cmd

import (
	"fmt"

	"github.com/samzong/cmg/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage cmg configuration",
		Long:  `Manage cmg configuration such as the model, API key and API base URL.`,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a configuration value and save it to the configuration file.\n\n" +
			"Valid keys: model, api_key, api_base, timeout, clipboard, prompt_template, log_level",
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.SettableKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			key, value := args[0], args[1]
			if err := config.SetFromString(key, value); err != nil {
				return err
			}
			if err := config.SaveConfig(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			if key == "api_key" {
				fmt.Fprintln(outWriter(), "API key saved")
				return nil
			}
			fmt.Fprintf(outWriter(), "Set %s to: %s\n", key, value)
			if key == "model" {
				fmt.Fprintln(outWriter(), "Tip: any model name works, suggested models are:")
				for _, m := range config.GetSuggestedModels() {
					fmt.Fprintf(outWriter(), "- %s\n", m)
				}
			}
			return nil
		},
	}

	configGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Show the current configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			return printConfig(cfg)
		},
	}
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

// displayConfig mirrors config.Config with the API key masked.
type displayConfig struct {
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	APIBase        string `yaml:"api_base"`
	Timeout        int    `yaml:"timeout"`
	Clipboard      bool   `yaml:"clipboard"`
	PromptTemplate string `yaml:"prompt_template,omitempty"`
	LogLevel       string `yaml:"log_level"`
}

func printConfig(cfg *config.Config) error {
	out, err := yaml.Marshal(displayConfig{
		Model:          cfg.Model,
		APIKey:         maskAPIKey(cfg.APIKey),
		APIBase:        cfg.EffectiveAPIBase(),
		Timeout:        cfg.Timeout,
		Clipboard:      cfg.Clipboard,
		PromptTemplate: cfg.PromptTemplate,
		LogLevel:       cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Fprint(outWriter(), string(out))
	return nil
}

func maskAPIKey(key string) string {
	switch {
	case key == "":
		return "<not set>"
	case len(key) <= 8:
		return "********"
	default:
		return key[:3] + "****" + key[len(key)-4:]
	}
}
