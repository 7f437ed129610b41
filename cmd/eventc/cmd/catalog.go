package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bargom/eventc/internal/catalog"
)

// catalogListing is the JSON form of the catalog command.
type catalogListing struct {
	Extensions  []string                      `json:"extensions"`
	Fingerprint string                        `json:"fingerprint"`
	Conditions  []catalog.InstructionMetadata `json:"conditions,omitempty"`
	Actions     []catalog.InstructionMetadata `json:"actions,omitempty"`
	Expressions []catalog.ExpressionMetadata  `json:"expressions,omitempty"`
}

var catalogSection string

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the known conditions, actions and expressions",
		Args:  cobra.NoArgs,
		Example: `  eventc catalog
  eventc catalog --section actions
  eventc catalog --config eventc.yaml --output json`,
		RunE: runCatalog,
	}

	cmd.Flags().StringVar(&catalogSection, "section", "all", "section to list (all|conditions|actions|expressions)")

	return cmd
}

func runCatalog(cmd *cobra.Command, args []string) error {
	switch catalogSection {
	case "all", "conditions", "actions", "expressions":
	default:
		return fmt.Errorf("unknown catalog section %q", catalogSection)
	}

	b, err := newBuilder(cmd, nil)
	if err != nil {
		return err
	}
	defer b.Close()
	cat := b.Catalog()

	show := func(section string) bool { return catalogSection == "all" || catalogSection == section }
	listing := catalogListing{Extensions: cat.Extensions(), Fingerprint: cat.Fingerprint()}
	if show("conditions") {
		listing.Conditions = cat.Conditions()
	}
	if show("actions") {
		listing.Actions = cat.Actions()
	}
	if show("expressions") {
		listing.Expressions = cat.Expressions()
	}

	if outputFormat == "json" {
		return outputJSON(cmd, listing)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	printInstructions := func(title string, list []catalog.InstructionMetadata) {
		if len(list) == 0 {
			return
		}
		fmt.Fprintf(w, "%s\n", title)
		for _, m := range list {
			fmt.Fprintf(w, "  %s\t%s\n", m.Type, m.Sentence)
		}
	}
	printInstructions("CONDITIONS", listing.Conditions)
	printInstructions("ACTIONS", listing.Actions)
	if len(listing.Expressions) > 0 {
		fmt.Fprintf(w, "EXPRESSIONS\n")
		for _, m := range listing.Expressions {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", m.Name, m.Call.Kind, m.Returns)
		}
	}
	return w.Flush()
}
