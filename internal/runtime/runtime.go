package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	"github.com/rs/zerolog"

	"github.com/jward/heritage"
	"github.com/jward/heritage/internal/store"
)

// Runtime embeds a Risor VM and exposes the composition engine to
// scripts. Handles to objects, shapes and factories cross into scripts as
// opaque proxies that only the host functions understand.
type Runtime struct {
	cloner     *heritage.Cloner
	journal    *store.Store
	logger     zerolog.Logger
	scriptsDir string
	fsys       fs.FS
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithJournal records every composition a script performs and enables the
// history functions.
func WithJournal(s *store.Store) RuntimeOption {
	return func(r *Runtime) {
		r.journal = s
	}
}

// WithLogger routes engine traces and the script log object through l.
func WithLogger(l zerolog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime whose scripts resolve imports against
// scriptsDir. Accepts optional RuntimeOptions for configuration such as
// fs.FS-based script loading.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	copts := []heritage.Option{heritage.WithLogger(r.logger)}
	if r.journal != nil {
		copts = append(copts, heritage.WithJournal(r.journal))
	}
	r.cloner = heritage.New(copts...)
	return r
}

// Cloner returns the engine scripts compose with.
func (r *Runtime) Cloner() *heritage.Cloner {
	return r.cloner
}

// RunScript loads and executes a Risor script with all standard globals
// plus any extra globals provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly with all standard globals
// plus any extra globals. Useful for testing without script files.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	_, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on the embedded filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) && r.scriptsDir != "" {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	c := r.cloner
	globals := map[string]any{
		// Object model
		"object":             makeObjectFn(),
		"shape":              makeShapeFn(),
		"factory":            makeFactoryFn(),
		"new":                makeNewFn(),
		"define_value":       makeDefineValueFn(),
		"define_accessor":    makeDefineAccessorFn(),
		"define_method":      makeDefineMethodFn(),
		"get_member":         makeGetFn(),
		"set_member":         makeSetFn(),
		"call_method":        makeCallFn(),
		"members":            makeMembersFn(c),
		"freeze":             makeFreezeFn(),
		"prevent_extensions": makePreventExtensionsFn(),

		// Composition
		"extend":          makeExtendFn(c),
		"extend_instance": makeExtendInstanceFn(c),
		"is_member_of":    makeIsMemberOfFn(c),
		"extensions":      makeExtensionsFn(),
		"super":           makeSuperFn(c),
		"super_from":      makeSuperFromFn(c),

		"load_classes": makeLoadClassesFn(),
		"log":          mustProxy(&logObject{logger: r.logger.With().Str("component", "script").Logger()}),
	}

	// Journal functions only exist when compositions are recorded.
	if r.journal != nil {
		globals["history"] = makeHistoryFn(r.journal)
		globals["refusals"] = makeRefusalsFn(r.journal)
		globals["registrations"] = makeRegistrationsFn(r.journal)
		globals["db_query"] = makeDBQueryFn(r.journal)
	}

	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
