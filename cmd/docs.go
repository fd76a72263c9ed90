package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/signalnine/benchlit/internal/config"
	"github.com/signalnine/benchlit/internal/docs"
	"github.com/signalnine/benchlit/internal/snippet"
	"github.com/spf13/cobra"
)

var (
	flagOutput   string
	flagLanguage string
)

func newDocsCmd() *cobra.Command {
	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "Executable documentation commands",
	}
	build := &cobra.Command{
		Use:   "build <file.rst>",
		Short: "Render a document, running its exec directives",
		Args:  cobra.ExactArgs(1),
		RunE:  buildDocs,
	}
	build.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default stdout)")
	build.Flags().StringVar(&flagLanguage, "language", "", "default snippet language for exec directives")
	docsCmd.AddCommand(build)
	return docsCmd
}

func buildDocs(cmd *cobra.Command, args []string) error {
	opts, err := docsOptions()
	if err != nil {
		return err
	}
	if flagLanguage != "" {
		opts.Language = flagLanguage
	}

	src := args[0]
	text, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var buf bytes.Buffer
	if err := renderDocument(ctx, src, string(text), opts, &buf); err != nil {
		return err
	}
	if flagOutput == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(flagOutput, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", flagOutput, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", flagOutput)
	return nil
}

// docsOptions reads the docs section of the config. A missing config file
// is not an error for docs builds.
func docsOptions() (config.Docs, error) {
	cfg, err := config.Load(cfgFile)
	if err == nil {
		return cfg.Docs, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return config.Docs{}, err
	}
	log.Printf("no config at %s, using defaults", cfgFile)
	return config.Docs{Language: "sh", TabWidth: 8}, nil
}

// renderDocument parses text with exec support and writes the HTML to buf.
// Shell snippets run in the document's directory.
func renderDocument(ctx context.Context, src, text string, opts config.Docs, buf *bytes.Buffer) error {
	dir, err := filepath.Abs(filepath.Dir(src))
	if err != nil {
		return err
	}
	reg := docs.NewRegistry()
	exec := &docs.ExecDirective{
		Evaluators: snippet.Default(opts.Shell, dir),
		Language:   opts.Language,
	}
	if err := reg.Register("exec", exec); err != nil {
		return err
	}
	doc, err := docs.NewParser(reg, docs.Options{TabWidth: opts.TabWidth}).Parse(ctx, src, text)
	if err != nil {
		return err
	}
	return docs.RenderHTML(doc, buf)
}
