package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/output"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available to your account",
	Long: `List the models the service offers. Pass an id to --model or set
api.model in the config to use one.

Examples:
  codemaker models
  codemaker models --format json`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	resp, err := client.ListModels(cmd.Context(), &codemaker.ListModelsRequest{})
	if err != nil {
		if codemaker.IsUnauthorized(err) {
			a.log.Error("not authorized", "hint", codemaker.UnauthorizedHint)
		}
		return err
	}

	out := output.ModelsOutput{Models: []output.ModelEntry{}}
	for _, m := range resp.Models {
		out.Models = append(out.Models, output.ModelEntry{ID: m.ID, Name: m.Name})
	}
	return writeOutput(cmd, out)
}
