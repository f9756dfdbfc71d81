package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/interopgen/internal/codegen/generator"
	"github.com/Alia5/interopgen/internal/codegen/meta"
	"github.com/Alia5/interopgen/internal/codegen/scanner"
)

// Source selects the compiled-module descriptors to generate from.
type Source struct {
	Modules string   `help:"Directory holding compiled-module descriptors" default:"." env:"INTEROPGEN_MODULES"`
	Include []string `help:"Glob patterns selecting descriptor files, relative to the modules directory" env:"INTEROPGEN_INCLUDE"`
	Exclude []string `help:"Glob patterns excluding descriptor files" env:"INTEROPGEN_EXCLUDE"`
	Entry   string   `help:"Assembly whose namespace rules apply; the first module when empty" env:"INTEROPGEN_ENTRY"`
	Strict  bool     `help:"Fail when any descriptor file cannot be loaded" env:"INTEROPGEN_STRICT"`
}

// Output names the generated files.
type Output struct {
	Declarations string `help:"Type declaration output file" default:"./dist/types/interop.d.ts" env:"INTEROPGEN_OUT_DECLARATIONS"`
	Bindings     string `help:"Runtime binding output file" default:"./dist/interop.g.js" env:"INTEROPGEN_OUT_BINDINGS"`
	Serializer   string `help:"Serializer registration output file" default:"./dist/SerializerContext.g.cs" env:"INTEROPGEN_OUT_SERIALIZER"`
}

func (o Output) Paths() generator.Paths {
	return generator.Paths{Declarations: o.Declarations, Bindings: o.Bindings, Serializer: o.Serializer}
}

func (s *Source) matcher() (*scanner.Matcher, error) {
	return scanner.NewMatcher(s.Include, s.Exclude)
}

// load discovers and decodes descriptors. Broken files are logged and
// skipped unless Strict is set.
func (s *Source) load(logger *slog.Logger) ([]meta.ModuleDescriptor, error) {
	m, err := s.matcher()
	if err != nil {
		return nil, err
	}
	paths, err := scanner.Discover(s.Modules, m)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		logger.Warn("No module descriptors found", "dir", s.Modules)
	}

	mods, report := scanner.LoadModules(paths)
	for _, f := range report.Failures {
		logger.Warn("Skipping module descriptor", "file", f.Path, "error", f.Err)
	}
	if s.Strict {
		if err := report.Err(); err != nil {
			return nil, fmt.Errorf("load module descriptors: %w", err)
		}
	}
	logger.Info("Loaded module descriptors", "modules", len(mods), "failed", len(report.Failures))
	return mods, nil
}

func (s *Source) generate(logger *slog.Logger) (*generator.Artifacts, error) {
	mods, err := s.load(logger)
	if err != nil {
		return nil, err
	}
	return generator.New(s.Entry, logger).Generate(mods)
}
