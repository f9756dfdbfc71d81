// Package generator runs one generation pass: crawl the compiled module
// descriptors once, then let each emitter render its artifact from the
// shared Inspection.
package generator

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/Alia5/interopgen/internal/codegen/crawler"
	"github.com/Alia5/interopgen/internal/codegen/generator/csharp"
	"github.com/Alia5/interopgen/internal/codegen/generator/typescript"
	"github.com/Alia5/interopgen/internal/codegen/meta"
	"github.com/Alia5/interopgen/internal/codegen/namespace"
)

// ErrEntryNotFound is returned when the entry module named in the options is
// not among the loaded modules.
var ErrEntryNotFound = errors.New("entry module not found")

// Emitter renders one artifact from an Inspection.
type Emitter func(in *meta.Inspection) (string, error)

type artifact struct {
	name string
	emit Emitter
	set  func(a *Artifacts, text string)
}

var artifacts = []artifact{
	{"declarations", typescript.GenerateDeclarations, func(a *Artifacts, s string) { a.Declarations = s }},
	{"bindings", typescript.GenerateBindings, func(a *Artifacts, s string) { a.Bindings = s }},
	{"serializer", csharp.GenerateSerializer, func(a *Artifacts, s string) { a.Serializer = s }},
}

// Artifacts holds the three generated texts.
type Artifacts struct {
	Declarations string
	Bindings     string
	Serializer   string
}

// Fingerprint is the hex BLAKE2b-256 digest of all three texts. Each text is
// length-prefixed so moving content between artifacts changes the digest.
func (a *Artifacts) Fingerprint() string {
	h, _ := blake2b.New256(nil)
	for _, text := range []string{a.Declarations, a.Bindings, a.Serializer} {
		fmt.Fprintf(h, "%d:", len(text))
		h.Write([]byte(text))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Paths are the output files of the three artifacts.
type Paths struct {
	Declarations string
	Bindings     string
	Serializer   string
}

func (p Paths) each(a *Artifacts) []struct{ path, text string } {
	return []struct{ path, text string }{
		{p.Declarations, a.Declarations},
		{p.Bindings, a.Bindings},
		{p.Serializer, a.Serializer},
	}
}

// Write stores the artifacts, creating parent directories as needed.
func (a *Artifacts) Write(logger *slog.Logger, paths Paths) error {
	for _, f := range paths.each(a) {
		if f.path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, []byte(f.text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
		logger.Info("Generated file", "file", f.path, "bytes", len(f.text))
	}
	return nil
}

// ReadArtifacts loads previously written artifacts. Missing files read as
// empty so a never-generated surface compares unequal to a non-empty one.
func ReadArtifacts(paths Paths) (*Artifacts, error) {
	read := func(path string) (string, error) {
		if path == "" {
			return "", nil
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}
	var a Artifacts
	var err error
	if a.Declarations, err = read(paths.Declarations); err != nil {
		return nil, err
	}
	if a.Bindings, err = read(paths.Bindings); err != nil {
		return nil, err
	}
	if a.Serializer, err = read(paths.Serializer); err != nil {
		return nil, err
	}
	return &a, nil
}

type Generator struct {
	entry  string
	logger *slog.Logger
}

// New returns a generator applying the namespace rules of the entry module.
// An empty entry selects the first loaded module.
func New(entry string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{entry: entry, logger: logger}
}

// EntryRules returns the namespace rules declared by the entry module.
func EntryRules(modules []meta.ModuleDescriptor, entry string) ([]meta.NamespaceRule, error) {
	if len(modules) == 0 {
		return nil, nil
	}
	if entry == "" {
		return modules[0].Rules, nil
	}
	for _, m := range modules {
		if m.Assembly == entry {
			return m.Rules, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
}

// Generate crawls modules and renders every artifact. Emitter failures are
// joined into the returned error; artifacts that rendered are still set.
func (g *Generator) Generate(modules []meta.ModuleDescriptor) (*Artifacts, error) {
	rules, err := EntryRules(modules, g.entry)
	if err != nil {
		return nil, err
	}
	resolver, err := namespace.New(rules)
	if err != nil {
		return nil, fmt.Errorf("namespace rules: %w", err)
	}

	g.logger.Debug("Crawling modules", "modules", len(modules), "rules", len(rules))
	in, err := crawler.New(resolver, g.logger).Crawl(modules)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}

	out := &Artifacts{}
	var errs []error
	for _, a := range artifacts {
		text, err := emit(a.emit, in)
		if err != nil {
			g.logger.Error("Artifact generation failed", "artifact", a.name, "error", err)
			errs = append(errs, fmt.Errorf("generate %s: %w", a.name, err))
			continue
		}
		a.set(out, text)
	}

	g.logger.Info("Interop surface generated",
		"methods", len(in.Methods()),
		"types", len(in.Types()),
		"namespaces", len(in.Spaces()),
		"registrations", strings.Count(out.Serializer, "[JsonSerializable("))
	return out, errors.Join(errs...)
}

// emit isolates a panicking emitter so the remaining artifacts still render.
func emit(fn Emitter, in *meta.Inspection) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("emitter panic: %v", r)
		}
	}()
	return fn(in)
}
