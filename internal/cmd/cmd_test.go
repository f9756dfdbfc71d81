package cmd

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

const appDescriptor = `
assembly: App
namespaceRules:
  - pattern: '^App\.(.+)$'
    replacement: '$1'
types:
  - namespace: App.Models
    name: Info
    members:
      - name: Name
        type: string
methods:
  - kind: event
    namespace: App.Models
    owner: Program
    name: OnInfo
    arguments:
      - name: info
        type: Info
  - kind: invokable
    namespace: App
    owner: Program
    name: Greet
    arguments:
      - name: name
        type: string
    returns: string
`

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func fixture(t *testing.T) (Source, Output) {
	t.Helper()
	dir := t.TempDir()
	modules := filepath.Join(dir, "modules")
	require.NoError(t, os.MkdirAll(modules, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modules, "app.yaml"), []byte(appDescriptor), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(modules, "broken.json"), []byte("{"), 0o644))
	return Source{Modules: modules, Entry: "App"}, Output{
		Declarations: filepath.Join(dir, "out", "interop.d.ts"),
		Bindings:     filepath.Join(dir, "out", "interop.g.js"),
		Serializer:   filepath.Join(dir, "out", "SerializerContext.g.cs"),
	}
}

func TestGenerateWritesArtifacts(t *testing.T) {
	src, out := fixture(t)
	g := &Generate{Source: src, Output: out}
	require.NoError(t, g.Run(discard()))

	decl, err := os.ReadFile(out.Declarations)
	require.NoError(t, err)
	assert.Contains(t, string(decl), "export const onInfo: Event<[info: Info]>;")
	assert.Contains(t, string(decl), "export function greet(name: string): string;")

	bind, err := os.ReadFile(out.Bindings)
	require.NoError(t, err)
	assert.Contains(t, string(bind), "greet: (name) => getExports().App_Program.Greet(name)")

	ser, err := os.ReadFile(out.Serializer)
	require.NoError(t, err)
	assert.Contains(t, string(ser), "[JsonSerializable(typeof(global::App.Models.Info))]")
}

func TestGenerateStrictFailsOnBrokenDescriptor(t *testing.T) {
	src, out := fixture(t)
	src.Strict = true
	g := &Generate{Source: src, Output: out}
	err := g.Run(discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestVerifyDetectsStaleFiles(t *testing.T) {
	src, out := fixture(t)
	v := &Verify{Source: src, Output: out}
	assert.ErrorIs(t, v.Run(discard()), ErrStale)

	require.NoError(t, (&Generate{Source: src, Output: out}).Run(discard()))
	assert.NoError(t, v.Run(discard()))

	require.NoError(t, os.WriteFile(out.Bindings, []byte("// edited"), 0o644))
	err := v.Run(discard())
	assert.ErrorIs(t, err, ErrStale)
	assert.Contains(t, err.Error(), out.Bindings)
	assert.NotContains(t, err.Error(), out.Declarations)
}

func TestConfigInitWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "interopgen.yaml")
	c := &ConfigInit{Command: "generate", Format: "yaml", Output: dest}
	require.NoError(t, c.Run(discard()))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, ".", got["modules"])
	assert.Equal(t, "200ms", got["debounce"])
	out, ok := got["out"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "./dist/interop.g.js", out["bindings"])

	assert.Error(t, c.Run(discard()), "existing file without --force")
	c.Force = true
	assert.NoError(t, c.Run(discard()))
}

func TestConfigInitJSONVerify(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "verify.json")
	require.NoError(t, (&ConfigInit{Command: "verify", Format: "json", Output: dest}).Run(discard()))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got, "entry")
	assert.NotContains(t, got, "watch")
}

func TestConfigInitTemplateLoadsBack(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "interopgen.json")
	require.NoError(t, (&ConfigInit{Command: "generate", Format: "json", Output: dest}).Run(discard()))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var tmpl map[string]any
	require.NoError(t, json.Unmarshal(data, &tmpl))
	assert.Equal(t, []any{}, tmpl["include"])
	assert.Equal(t, false, tmpl["strict"])
	tmpl["debounce"] = "1s"
	tmpl["out"].(map[string]any)["bindings"] = "web/interop.js"
	data, err = json.Marshal(tmpl)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dest, data, 0o644))

	var g Generate
	parser, err := kong.New(&g, kong.Configuration(kong.JSON, dest), kong.Exit(func(int) {}))
	require.NoError(t, err)
	_, err = parser.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Second, g.Debounce)
	assert.Equal(t, "web/interop.js", g.Output.Bindings)
	assert.Equal(t, "./dist/types/interop.d.ts", g.Output.Declarations)
	assert.Equal(t, ".", g.Modules)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "verify.toml")
	c := &ConfigInit{Command: "verify", Format: "toml", Output: dest}
	require.NoError(t, c.Run(discard()))
	assert.ErrorIs(t, c.Run(discard()), ErrDestinationExists)
}

func TestConfigInitRejectsFormat(t *testing.T) {
	err := (&ConfigInit{Command: "generate", Format: "ini", Output: filepath.Join(t.TempDir(), "x")}).Run(discard())
	assert.Error(t, err)
}
