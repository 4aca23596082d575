package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/output"
)

// assistantCmd represents the assistant command
var assistantCmd = &cobra.Command{
	Use:   "assistant <message>",
	Short: "Ask the assistant a question, optionally about a file",
	Long: `Send a message to the CodeMaker assistant and print the reply.

With --file the content of the file goes along with the message; add --apply
to write back the rewritten file when the assistant proposes one. With
--speech-out the spoken reply is saved as audio.

Examples:
  codemaker assistant "what does a context id identify?"
  codemaker assistant "add input validation" --file handler.go --apply
  codemaker assistant "summarize this module" --speech-out reply.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssistant,
}

var (
	assistantFile      string
	assistantApply     bool
	assistantSpeechOut string
)

func init() {
	rootCmd.AddCommand(assistantCmd)

	assistantCmd.Flags().StringVar(&assistantFile, "file", "", "Send this file along with the message")
	assistantCmd.Flags().BoolVar(&assistantApply, "apply", false, "Write the rewritten file back (requires --file)")
	assistantCmd.Flags().StringVar(&assistantSpeechOut, "speech-out", "", "Save the spoken reply to this file")
}

func runAssistant(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	if assistantApply && assistantFile == "" {
		return fmt.Errorf("--apply requires --file")
	}
	if assistantFile != "" && assistantSpeechOut != "" {
		return fmt.Errorf("--file and --speech-out are mutually exclusive")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	p := a.newProcessor(client, nil, nil)
	ctx := cmd.Context()

	switch {
	case assistantFile != "":
		reply, err := p.AssistantCode(ctx, assistantFile, message, assistantApply)
		if err != nil {
			return err
		}
		return writeOutput(cmd, output.AssistantOutput{
			Message: reply.Message,
			File:    assistantFile,
			Applied: reply.Applied,
		})

	case assistantSpeechOut != "":
		reply, audio, err := p.AssistantSpeech(ctx, message)
		if err != nil {
			return err
		}
		if err := os.WriteFile(assistantSpeechOut, audio, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", assistantSpeechOut, err)
		}
		return writeOutput(cmd, output.AssistantOutput{Message: reply, AudioFile: assistantSpeechOut})

	default:
		reply, err := p.Assistant(ctx, message)
		if err != nil {
			return err
		}
		return writeOutput(cmd, output.AssistantOutput{Message: reply})
	}
}
