// Command config-check validates a saved globe configuration against the
// closed configuration schema. The document is either a wire configuration
// object, a {"type":"config","config":{...}} message, or a snapshot loaded
// from the configured snapshot store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"globewidget/internal/core"
	"globewidget/pkg/config"
)

var exitFunc = os.Exit

// openStore is swapped in tests.
var openStore = core.OpenSnapshotStore

func main() {
	code := cli(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		path      string
		widgetID  string
		normalize bool
	)
	fs.StringVar(&path, "config", "-", "path to a wire configuration document, - for stdin")
	fs.StringVar(&widgetID, "widget", "", "load the snapshot saved for this widget instead of a file")
	fs.BoolVar(&normalize, "normalize", false, "print the canonical wire form on success")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var (
		g   config.Globe
		err error
	)
	if widgetID != "" {
		g, err = loadSnapshot(context.Background(), widgetID)
	} else {
		g, err = loadDocument(path, stdin)
	}
	if err != nil {
		if _, writeErr := fmt.Fprintf(stderr, "Configuration invalid: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}

	if normalize {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(g.Wire()); err != nil {
			return 1
		}
		return 0
	}
	sections, datums := summarize(g.Wire())
	if _, writeErr := fmt.Fprintf(stdout, "Configuration valid: %d sections (%s), %d datums.\n", len(sections), strings.Join(sections, ", "), datums); writeErr != nil {
		return 1
	}
	return 0
}

// validatePath rejects empty and path-traversing references.
func validatePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path")
	}
	clean := filepath.Clean(p)
	if slices.Contains(strings.Split(filepath.ToSlash(clean), "/"), "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", p)
	}
	return clean, nil
}

func loadDocument(path string, stdin io.Reader) (g config.Globe, err error) {
	var r io.Reader = stdin
	if path != "-" {
		safePath, vErr := validatePath(path)
		if vErr != nil {
			return config.Globe{}, vErr
		}
		file, err := os.Open(safePath) // #nosec G304: path validated by validatePath
		if err != nil {
			return config.Globe{}, fmt.Errorf("read config: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close config: %w", cerr)
			}
		}()
		r = file
	}
	return parseDocument(r)
}

func parseDocument(r io.Reader) (config.Globe, error) {
	var doc map[string]any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return config.Globe{}, fmt.Errorf("parse config: %w", err)
	}
	if doc == nil {
		return config.Globe{}, errors.New("document is empty")
	}
	if typ, _ := doc["type"].(string); typ == core.MsgConfig {
		inner, ok := doc["config"].(map[string]any)
		if !ok {
			return config.Globe{}, errors.New("config message without config object")
		}
		doc = inner
	}
	return config.FromWire(doc)
}

func loadSnapshot(ctx context.Context, widgetID string) (g config.Globe, err error) {
	store, err := openStore(ctx)
	if err != nil {
		return config.Globe{}, fmt.Errorf("open snapshot store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close snapshot store: %w", cerr)
		}
	}()
	g, ok, err := core.LoadSnapshot(ctx, store, widgetID)
	if err != nil {
		return config.Globe{}, err
	}
	if !ok {
		return config.Globe{}, fmt.Errorf("no snapshot for widget %s", widgetID)
	}
	return g, nil
}

// summarize lists the populated sections and counts datums across every
// collection.
func summarize(wire map[string]any) ([]string, int) {
	sections := make([]string, 0, len(wire))
	datums := 0
	for name, body := range wire {
		sections = append(sections, name)
		fields, _ := body.(map[string]any)
		for key, value := range fields {
			if !strings.HasSuffix(key, "Data") {
				continue
			}
			if items, ok := value.([]any); ok {
				datums += len(items)
			}
		}
	}
	slices.Sort(sections)
	return sections, datums
}
