package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samzong/cmg/internal/config"
	"github.com/samzong/cmg/internal/llm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize cmg configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if err := runInitWizard(cmd.Context(), os.Stdin, outWriter(), cfg); err != nil {
				return err
			}
			fmt.Fprintln(outWriter(), "Initialization complete.")
			return nil
		},
	}

	// saveConfigValues persists the wizard answers. An empty apiKey keeps
	// whatever key is already in effect, including one from the environment.
	saveConfigValues = func(apiKey, model, apiBase string) error {
		if apiKey != "" {
			config.SetConfigValue("api_key", apiKey)
		}
		config.SetConfigValue("model", model)
		config.SetConfigValue("api_base", apiBase)
		return config.SaveConfig()
	}

	testLLMConnection = func(ctx context.Context, apiKey, apiBase, model string) error {
		client := llm.NewClient(llm.Options{APIKey: apiKey, APIBase: apiBase, Timeout: 30 * time.Second})
		return client.TestConnection(ctx, model)
	}

	// readSecret reads the API key without echo when in is a terminal.
	readSecret = func(in io.Reader, out io.Writer, readLine func() (string, error)) (string, error) {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(b)), nil
		}
		return readLine()
	}
)

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInitWizard(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config) error {
	readLine := newTrimmedLineReader(in)
	fmt.Fprintln(out, "cmg init - configure your LLM settings")

	apiKey, err := promptAPIKey(out, cfg, func() (string, error) { return readSecret(in, out, readLine) })
	if err != nil {
		return err
	}
	model, err := promptModel(out, cfg, readLine)
	if err != nil {
		return err
	}
	apiBase, err := promptAPIBase(out, cfg, readLine)
	if err != nil {
		return err
	}

	if err := saveConfigValues(apiKey, model, apiBase); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	return maybeTestConnection(ctx, out, apiKey, apiBase, model, readLine)
}

func newTrimmedLineReader(in io.Reader) func() (string, error) {
	reader := bufio.NewReader(in)
	return func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if errors.Is(err, io.EOF) && line == "" {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// promptAPIKey returns the entered key, or "" when the user keeps the current one.
func promptAPIKey(out io.Writer, cfg *config.Config, readKey func() (string, error)) (string, error) {
	for {
		if cfg.APIKey != "" {
			fmt.Fprint(out, "OpenAI API Key (leave blank to keep current): ")
		} else {
			fmt.Fprint(out, "OpenAI API Key (required): ")
		}

		line, err := readKey()
		if err != nil {
			return "", err
		}
		if line == "" {
			if cfg.APIKey != "" {
				return "", nil
			}
			fmt.Fprintln(out, "API key is required.")
			continue
		}
		return line, nil
	}
}

func promptModel(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	modelDefault := cfg.Model
	if modelDefault == "" {
		modelDefault = config.DefaultModel
	}
	fmt.Fprintf(out, "Model (default: %s): ", modelDefault)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return modelDefault, nil
	}
	return line, nil
}

func promptAPIBase(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	apiBaseLabel := cfg.APIBase
	if apiBaseLabel == "" {
		apiBaseLabel = config.DefaultAPIBase
	}
	fmt.Fprintf(out, "API Base URL (default: %s): ", apiBaseLabel)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return cfg.APIBase, nil
	}
	return line, nil
}

func maybeTestConnection(
	ctx context.Context, out io.Writer, apiKey, apiBase, model string, readLine func() (string, error),
) error {
	for {
		fmt.Fprint(out, "Test API connection now? [Y/n]: ")
		answer, err := readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			fmt.Fprintln(out, "Testing API connection...")
			if err := testLLMConnection(ctx, apiKey, apiBase, model); err != nil {
				fmt.Fprintf(out, "Connection test failed: %v\n", err)
				fmt.Fprintln(out, "You can re-run `cmg init` or update config with `cmg config set`.")
			} else {
				fmt.Fprintln(out, "Connection test succeeded.")
			}
			return nil
		case "n", "no":
			return nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}
