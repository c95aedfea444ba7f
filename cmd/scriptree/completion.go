// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/spf13/cobra"

// newCompletionCommand creates the `scriptree completion` command.
func newCompletionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for scriptree.

` + SubtitleStyle.Render("Bash:") + `
  eval "$(scriptree completion bash)"

` + SubtitleStyle.Render("Zsh:") + `
  scriptree completion zsh > "${fpath[1]}/_scriptree"

` + SubtitleStyle.Render("Fish:") + `
  scriptree completion fish > ~/.config/fish/completions/scriptree.fish

` + SubtitleStyle.Render("PowerShell:") + `
  scriptree completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(app.stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(app.stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(app.stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(app.stdout)
			}
			return nil
		},
	}
}
