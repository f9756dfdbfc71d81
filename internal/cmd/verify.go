package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/interopgen/internal/codegen/generator"
)

// ErrStale is returned by verify when files on disk differ from a fresh run.
var ErrStale = errors.New("generated files are out of date")

type Verify struct {
	Source `embed:""`
	Output Output `embed:"" prefix:"out."`
}

// Run is called by Kong when the verify command is executed.
func (v *Verify) Run(logger *slog.Logger) error {
	fresh, err := v.generate(logger)
	if err != nil {
		return err
	}
	onDisk, err := generator.ReadArtifacts(v.Output.Paths())
	if err != nil {
		return err
	}
	if fresh.Fingerprint() == onDisk.Fingerprint() {
		logger.Info("Generated files are up to date", "fingerprint", fresh.Fingerprint())
		return nil
	}

	var stale []string
	if fresh.Declarations != onDisk.Declarations {
		stale = append(stale, v.Output.Declarations)
	}
	if fresh.Bindings != onDisk.Bindings {
		stale = append(stale, v.Output.Bindings)
	}
	if fresh.Serializer != onDisk.Serializer {
		stale = append(stale, v.Output.Serializer)
	}
	logger.Warn("Generated files are stale", "files", stale, "expected", fresh.Fingerprint(), "actual", onDisk.Fingerprint())
	return fmt.Errorf("%w: %s", ErrStale, strings.Join(stale, ", "))
}
