package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Alia5/interopgen/internal/configpaths"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ErrDestinationExists is returned by config init when the target file is
// already present and --force was not given.
var ErrDestinationExists = errors.New("destination exists; use --force to overwrite")

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for a specific command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"generate,verify"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// encoders render a template per config format.
var encoders = map[string]func(any) ([]byte, error){
	"json": func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
	"yaml": yaml.Marshal,
	"toml": toml.Marshal,
}

// Run writes a template holding every flag of the command at its default.
func (c *ConfigInit) Run(logger *slog.Logger) error {
	format := strings.ToLower(c.Format)
	if format == "yml" {
		format = "yaml"
	}
	encode, ok := encoders[format]
	if !ok {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var grammar any
	switch c.Command {
	case "generate":
		grammar = &Generate{}
	case "verify":
		grammar = &Verify{}
	default:
		return fmt.Errorf("unknown command %q; expected generate or verify", c.Command)
	}
	tmpl, err := flagTemplate(grammar)
	if err != nil {
		return err
	}
	data, err := encode(tmpl)
	if err != nil {
		return fmt.Errorf("encode %s template: %w", format, err)
	}

	dest := c.Output
	if dest == "" {
		dest = "interopgen." + configpaths.Ext(format)
	}
	if _, err := os.Stat(dest); err == nil && !c.Force {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	logger.Info("Generated configuration template", "command", c.Command, "file", dest, "format", format)
	return nil
}

// flagTemplate lets kong build the flag model of grammar and nests each flag
// under its dotted name, which is how the configuration loaders look it up.
func flagTemplate(grammar any) (map[string]any, error) {
	parser, err := kong.New(grammar, kong.NoDefaultHelp(), kong.Exit(func(int) {}))
	if err != nil {
		return nil, fmt.Errorf("build flag model: %w", err)
	}
	root := map[string]any{}
	for _, f := range parser.Model.Flags {
		node := root
		path := strings.Split(f.Name, ".")
		for _, part := range path[:len(path)-1] {
			next, ok := node[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[part] = next
			}
			node = next
		}
		node[path[len(path)-1]] = flagDefault(f)
	}
	return root, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// flagDefault types the default of f the way a config file spells it.
// Unparsable defaults fall back to the zero value.
func flagDefault(f *kong.Flag) any {
	def := f.Default
	t := f.Target.Type()
	switch {
	case t == durationType:
		if def == "" {
			return "0s"
		}
		return def
	case f.IsBool():
		b, _ := strconv.ParseBool(def)
		return b
	case f.IsSlice():
		if def == "" {
			return []string{}
		}
		if f.Tag.Sep <= 0 {
			return []string{def}
		}
		return strings.Split(def, string(f.Tag.Sep))
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		n, _ := strconv.ParseFloat(def, 64)
		return n
	}
	return def
}
