package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bargom/eventc/internal/build"
)

var (
	compileOut      string
	compilePackage  string
	compileNoFormat bool
	compileNoCache  bool
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <scene>",
		Short: "Compile a scene file into Go source",
		Long: `Compile a scene file into a Go source file.

Instructions that cannot be compiled are replaced by a comment in the output
and reported on stderr. The command fails when any error is reported.`,
		Args: cobra.ExactArgs(1),
		Example: `  eventc compile level1.yaml
  eventc compile level1.yaml -w level1_events.go --package level1
  eventc compile level1.yaml --output json`,
		RunE: runCompile,
	}

	cmd.Flags().StringVarP(&compileOut, "write", "w", "", "write the generated source to this file")
	cmd.Flags().StringVar(&compilePackage, "package", "", "package name of the generated file")
	cmd.Flags().BoolVar(&compileNoFormat, "no-format", false, "skip gofmt of the generated source")
	cmd.Flags().BoolVar(&compileNoCache, "no-cache", false, "bypass the build cache")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	b, err := newBuilder(cmd, func(c *build.Config) {
		if compilePackage != "" {
			c.Generator.Package = compilePackage
		}
		if compileNoFormat {
			c.Generator.Format = false
		}
		if compileNoCache {
			c.Cache.Type = "none"
		}
	})
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.CompileFile(cmd.Context(), args[0])
	if ferr := b.FlushMetrics(); ferr != nil {
		printError(cmd, "%v", ferr)
	}
	if err != nil {
		return err
	}
	prog := res.Program

	for _, d := range prog.Diagnostics.Items {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], d.Error())
	}

	if compileOut != "" {
		if err := os.WriteFile(compileOut, prog.Source, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	switch {
	case outputFormat == "json":
		if err := outputJSON(cmd, struct {
			*build.Result
			Source string `json:"source,omitempty"`
		}{res, sourceUnlessWritten(prog.Source)}); err != nil {
			return err
		}
	case compileOut == "":
		cmd.OutOrStdout().Write(prog.Source)
	}

	if prog.Diagnostics.HasErrors() {
		return errors.New("compilation failed")
	}
	return nil
}

func sourceUnlessWritten(src []byte) string {
	if compileOut != "" {
		return ""
	}
	return string(src)
}
