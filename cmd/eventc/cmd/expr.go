package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bargom/eventc/internal/catalog"
	"github.com/bargom/eventc/internal/events"
	"github.com/bargom/eventc/internal/expr"
)

var exprKind string

// exprResult is the JSON form of a checked expression.
type exprResult struct {
	Text     string   `json:"text"`
	Type     string   `json:"type,omitempty"`
	Tree     string   `json:"tree,omitempty"`
	Code     string   `json:"code,omitempty"`
	Includes []string `json:"includes,omitempty"`
	Error    string   `json:"error,omitempty"`
	Offset   *int     `json:"offset,omitempty"`
}

// cliScope emits expressions outside of any event: objects resolve to their
// whole pick list.
type cliScope struct {
	runtime string
}

func (s cliScope) Runtime() string                     { return s.runtime }
func (s cliScope) ObjectLists(object string) []string { return []string{events.ListVar(object)} }
func (s cliScope) Current(string) (string, bool)       { return "", false }

func newExprCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expr <text>",
		Short: "Parse an expression and print the generated Go code",
		Args:  cobra.ExactArgs(1),
		Example: `  eventc expr "abs(-2) * Random(10)"
  eventc expr --kind string '"Score: " + ToString(Variable(Score))'`,
		RunE: runExpr,
	}

	cmd.Flags().StringVar(&exprKind, "kind", "number", "expression kind (number|string)")

	return cmd
}

func runExpr(cmd *cobra.Command, args []string) error {
	var kind catalog.ParameterKind
	switch strings.ToLower(exprKind) {
	case "number", "expression":
		kind = catalog.KindExpression
	case "string", "text":
		kind = catalog.KindString
	default:
		return fmt.Errorf("unknown expression kind %q", exprKind)
	}

	b, err := newBuilder(cmd, nil)
	if err != nil {
		return err
	}
	defer b.Close()

	text := args[0]
	res := exprResult{Text: text}
	e, err := expr.NewParser(b.Catalog()).Parse(text, kind)
	if err != nil {
		res.Error = err.Error()
		var perr *expr.Error
		if errors.As(err, &perr) {
			offset := perr.Offset()
			res.Offset = &offset
		}
	} else {
		res.Type = e.Type().String()
		res.Tree = e.String()
		res.Code = e.Emit(cliScope{runtime: b.Generator().Config().RuntimeVar})
		res.Includes = e.Includes
	}

	if outputFormat == "json" {
		if err := outputJSON(cmd, res); err != nil {
			return err
		}
		return err
	}
	if err != nil {
		if res.Offset != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), text)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s^\n", strings.Repeat(" ", *res.Offset))
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Code)
	for _, inc := range res.Includes {
		fmt.Fprintf(out, "// import %q\n", inc)
	}
	return nil
}
