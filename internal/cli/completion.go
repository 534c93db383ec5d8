package cli

import "github.com/spf13/cobra"

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lazydeps.

To load completions:

Bash:
  $ source <(lazydeps completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ lazydeps completion bash > /etc/bash_completion.d/lazydeps
  # macOS:
  $ lazydeps completion bash > $(brew --prefix)/etc/bash_completion.d/lazydeps

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ lazydeps completion zsh > "${fpath[1]}/_lazydeps"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ lazydeps completion fish | source

  # To load completions for each session, execute once:
  $ lazydeps completion fish > ~/.config/fish/completions/lazydeps.fish

PowerShell:
  PS> lazydeps completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> lazydeps completion powershell > lazydeps.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
