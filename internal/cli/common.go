package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/docmerge/internal/config"
	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/engine"
	"github.com/danieljhkim/docmerge/internal/fsops"
	"github.com/danieljhkim/docmerge/internal/logging"
	"github.com/danieljhkim/docmerge/internal/metrics"
	"github.com/danieljhkim/docmerge/internal/remote"
	"github.com/danieljhkim/docmerge/internal/store"
)

// app bundles what a command needs: resolved settings, a logger, metrics
// and an open store.
type app struct {
	paths    *config.Paths
	settings *config.Settings
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    store.Store
}

// loadSettings resolves paths and config.yaml, then applies flag overrides.
func loadSettings(g *globalFlags) (*config.Paths, *config.Settings, error) {
	var paths *config.Paths
	if g.root != "" {
		paths = config.PathsAt(g.root)
	} else {
		p, err := config.DefaultPaths()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get config paths: %w", err)
		}
		paths = p
	}

	settings, err := config.LoadSettings(paths.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.backend != "" {
		settings.Backend = g.backend
	}
	if g.server != "" {
		settings.Server = g.server
		if g.backend == "" {
			settings.Backend = config.BackendHTTP
		}
	}
	if g.logLevel != "" {
		settings.Log.Level = g.logLevel
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}
	return paths, settings, nil
}

// newApp opens the configured store. The caller must call close.
func newApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	paths, settings, err := loadSettings(g)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  settings.Log.Level,
		Format: logging.Format(settings.Log.Format),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	a := &app{
		paths:    paths,
		settings: settings,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(reg),
	}

	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = st
	return a, nil
}

func (a *app) openStore() (store.Store, error) {
	opts := store.Options{Logger: a.logger, Metrics: a.metrics}

	switch a.settings.Backend {
	case config.BackendHTTP:
		c, err := remote.NewClient(a.settings.Server, remote.WithLogger(a.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create document service client: %w", err)
		}
		return c, nil

	case config.BackendBadger:
		if err := a.paths.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to ensure directories: %w", err)
		}
		st, err := store.OpenBadgerStore(store.BadgerConfig{
			Path:   a.paths.Badger,
			Logger: a.logger,
		}, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return st, nil

	default:
		if err := a.paths.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to ensure directories: %w", err)
		}
		return store.NewFileStore(fsops.NewRealFS(), a.paths.Documents, opts)
	}
}

func (a *app) engine() *engine.Engine {
	return engine.New(a.store,
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
	)
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", slog.Any("error", err))
	}
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, g *globalFlags, fn func(a *app) error) error {
	a, err := newApp(cmd, g)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// readDocument reads a document from path, or stdin for "-". Files ending
// in .yaml or .yml are decoded as YAML, anything else as JSON.
func readDocument(path string, stdin io.Reader) (*document.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc := &document.Document{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, doc)
	default:
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return doc, nil
}

// readContent returns the text to merge: the argument if given, else the
// file named by from ("-" for stdin).
func readContent(args []string, from string, stdin io.Reader) (string, error) {
	if len(args) > 0 && from != "" {
		return "", fmt.Errorf("give content as an argument or with --file, not both")
	}
	if len(args) > 0 {
		return args[0], nil
	}
	switch from {
	case "":
		return "", fmt.Errorf("no content: pass it as an argument, with --file, or --file - for stdin")
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(from)
		if err != nil {
			return "", fmt.Errorf("failed to read content: %w", err)
		}
		return string(data), nil
	}
}

// parseOccurrences turns repeated "id=n" flags into an override map.
func parseOccurrences(values []string) (map[string]int, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]int, len(values))
	for _, v := range values {
		id, n, ok := strings.Cut(v, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid occurrence %q (want id=n)", v)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid occurrence index in %q", v)
		}
		out[id] = idx
	}
	return out, nil
}

// boolSetting returns the flag value if it was set on the command line,
// else the configured default.
func boolSetting(cmd *cobra.Command, name string, flag, configured bool) bool {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return configured
}

// stringSetting is boolSetting for strings.
func stringSetting(cmd *cobra.Command, name, flag, configured string) string {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return configured
}
