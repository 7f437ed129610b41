package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bargom/eventc/internal/events"
	"github.com/bargom/eventc/internal/sentence"
)

var (
	sentenceCondition bool
	sentenceInverted  bool
)

func newSentenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentence <type> [parameters...]",
		Short: "Render the sentence of an instruction",
		Long: `Render the human readable sentence of an action, or of a condition with
--condition, with the given parameters substituted.`,
		Args: cobra.MinimumNArgs(1),
		Example: `  eventc sentence ModVarScene Score + 10
  eventc sentence --condition --inverted KeyPressed Space
  eventc sentence ModVarScene Score + 10 --output json`,
		RunE: runSentence,
	}

	cmd.Flags().BoolVar(&sentenceCondition, "condition", false, "look the type up among conditions")
	cmd.Flags().BoolVar(&sentenceInverted, "inverted", false, "render an inverted condition")

	return cmd
}

func runSentence(cmd *cobra.Command, args []string) error {
	b, err := newBuilder(cmd, nil)
	if err != nil {
		return err
	}
	defer b.Close()

	in := events.Instruction{Type: args[0], Parameters: args[1:], Inverted: sentenceInverted}
	segs, err := b.Renderer().Render(in, sentenceCondition)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return outputJSON(cmd, segs)
	}
	if colorEnabled() {
		fmt.Fprintln(cmd.OutOrStdout(), sentence.FormatANSI(segs))
		return nil
	}
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	fmt.Fprintln(cmd.OutOrStdout(), sb.String())
	return nil
}
