package cmd

import (
	"github.com/spf13/cobra"
)

var noCompletionDesc bool

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for cmg and print it to stdout.

  # Bash (~/.bashrc)
  source <(cmg completion bash)

  # Zsh (~/.zshrc)
  source <(cmg completion zsh)

  # Fish (~/.config/fish/config.fish)
  cmg completion fish | source

  # PowerShell
  cmg completion powershell | Out-String | Invoke-Expression`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE:                  runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&noCompletionDesc, "no-descriptions", false, "Omit command descriptions from completions")
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(_ *cobra.Command, args []string) error {
	out := outWriter()
	withDesc := !noCompletionDesc

	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, withDesc)
	case "zsh":
		if withDesc {
			return rootCmd.GenZshCompletion(out)
		}
		return rootCmd.GenZshCompletionNoDesc(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, withDesc)
	case "powershell":
		if withDesc {
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return rootCmd.GenPowerShellCompletion(out)
	}
	return nil
}
