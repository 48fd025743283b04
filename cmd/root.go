package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samzong/cmg/internal/clipboard"
	"github.com/samzong/cmg/internal/config"
	"github.com/samzong/cmg/internal/git"
	"github.com/samzong/cmg/internal/llm"
	"github.com/samzong/cmg/internal/logger"
	"github.com/samzong/cmg/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	verbose     bool
	editMessage bool
	noClipboard bool
	modelFlag   string
	configErr   error
	rootCtx     = context.Background()
	rootCmd     = &cobra.Command{
		Use:   "cmg",
		Short: "cmg - commit message generator",
		Long: `cmg reads the staged changes of the current git repository, asks an ` +
			`OpenAI-compatible model for a commit message and copies it to the clipboard.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return runGenerate(cmd.Context())
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	newGitClient = func(verbose bool) workflow.GitClient {
		return git.NewClient(git.Options{Verbose: verbose})
	}
	newClipboardSink = func(out io.Writer) workflow.ClipboardSink {
		return clipboard.NewSink(out)
	}
)

// SetContext sets the context used for command execution.
func SetContext(ctx context.Context) {
	rootCtx = ctx
}

func Execute() error {
	return rootCmd.ExecuteContext(rootCtx)
}

// RootCmd exposes the root command for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $XDG_CONFIG_HOME/cmg/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Show debug logs and git commands")
	rootCmd.Flags().BoolVarP(&editMessage, "edit", "e", false, "Edit the generated message in $EDITOR before printing it")
	rootCmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "Do not copy the message to the clipboard")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Override the configured model for this run")

	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)

	var warning error
	if errors.Is(configErr, config.ErrConfigUnavailable) {
		warning, configErr = configErr, nil
	}

	level := config.DefaultLogLevel
	if configErr == nil {
		level = config.MustGetConfig().LogLevel
	}
	if verbose {
		level = "debug"
	}
	logger.Init(level, errWriter())

	if warning != nil {
		logger.Warnf("%v; using defaults and environment", warning)
	}
}

func runGenerate(ctx context.Context) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	prompt, err := llm.LoadPrompt(cfg.PromptTemplate)
	if err != nil {
		return err
	}

	llmClient := llm.NewClient(llm.Options{
		APIKey:  cfg.APIKey,
		APIBase: cfg.APIBase,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.Timeout) * time.Second,
		Prompt:  &prompt,
	})

	opts := workflow.CommitOptions{
		Edit:        editMessage,
		NoClipboard: noClipboard || !cfg.Clipboard,
		OutWriter:   outWriter(),
		ErrWriter:   errWriter(),
	}

	flow := workflow.NewCommitFlow(newGitClient(verbose), llmClient, newClipboardSink(outWriter()), opts)
	return flow.Run(ctx)
}

// HandleError reports err on w and returns the process exit code.
// Generation failures were already reported by the workflow.
func HandleError(err error, w io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "\nOperation cancelled")
		return 130
	case errors.Is(err, workflow.ErrGenerationFailed):
		return 1
	default:
		fmt.Fprintln(w, "An error occurred:", err)
		return 1
	}
}
