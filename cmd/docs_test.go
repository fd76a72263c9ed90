package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/benchlit/internal/config"
)

func TestRenderDocument(t *testing.T) {
	src := filepath.Join("testdata", "guide.rst")
	text, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	opts := config.Docs{Language: "sh", TabWidth: 8}
	if err := renderDocument(context.Background(), src, string(text), opts, &buf); err != nil {
		t.Fatalf("renderDocument: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<section id="benchmarks"><h1>Benchmarks</h1>`,
		`<code>rsbench</code>`,
		`<a href="#inputs">Inputs</a>`,
		`<section id="inputs"><h2>Inputs</h2>`,
		`<li>large.nef</li>`,
		`<section id="running"><h2>Running</h2>`,
		`<pre>benchlit run --test &#39;decode-*&#39;</pre>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDocsOptionsWithoutConfig(t *testing.T) {
	old := cfgFile
	t.Cleanup(func() { cfgFile = old })
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	opts, err := docsOptions()
	if err != nil {
		t.Fatalf("docsOptions: %v", err)
	}
	if opts.Language != "sh" || opts.TabWidth != 8 {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

func TestDocsOptionsInvalidConfig(t *testing.T) {
	old := cfgFile
	t.Cleanup(func() { cfgFile = old })
	cfgFile = filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgFile, []byte("tests: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := docsOptions(); err == nil {
		t.Fatal("expected error for invalid config")
	}
}
