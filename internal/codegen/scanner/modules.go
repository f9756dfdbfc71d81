package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/interopgen/internal/codegen/meta"
)

// ErrUnsupportedFormat is returned for descriptor files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported descriptor format")

// ModuleFile is the on-disk schema of a compiled-module descriptor.
type ModuleFile struct {
	Assembly       string               `json:"assembly" yaml:"assembly" toml:"assembly"`
	NamespaceRules []meta.NamespaceRule `json:"namespaceRules,omitempty" yaml:"namespaceRules,omitempty" toml:"namespaceRules,omitempty"`
	Types          []TypeFile           `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
	Methods        []MethodFile         `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods,omitempty"`
}

// TypeFile describes a custom type declared by the module.
type TypeFile struct {
	Namespace  string       `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	Name       string       `json:"name" yaml:"name" toml:"name"`
	Kind       string       `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"` // "object" (default) or "enum"
	TypeParams []string     `json:"typeParams,omitempty" yaml:"typeParams,omitempty" toml:"typeParams,omitempty"`
	Extends    []string     `json:"extends,omitempty" yaml:"extends,omitempty" toml:"extends,omitempty"`
	Members    []MemberFile `json:"members,omitempty" yaml:"members,omitempty" toml:"members,omitempty"`
	Values     []ValueFile  `json:"values,omitempty" yaml:"values,omitempty" toml:"values,omitempty"`
}

type MemberFile struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Type     string `json:"type" yaml:"type" toml:"type"`
	Static   bool   `json:"static,omitempty" yaml:"static,omitempty" toml:"static,omitempty"`
	Computed bool   `json:"computed,omitempty" yaml:"computed,omitempty" toml:"computed,omitempty"`
}

// ValueFile is an enum member; a nil Value continues from the previous member.
type ValueFile struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value *int64 `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
}

type MethodFile struct {
	Kind      string         `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Namespace string         `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	Owner     string         `json:"owner" yaml:"owner" toml:"owner"`
	Name      string         `json:"name" yaml:"name" toml:"name"`
	Arguments []ArgumentFile `json:"arguments,omitempty" yaml:"arguments,omitempty" toml:"arguments,omitempty"`
	Returns   string         `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns,omitempty"`
}

type ArgumentFile struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type" yaml:"type" toml:"type"`
}

// FileError reports a descriptor file that could not be loaded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// Report lists descriptor files that failed to load.
type Report struct {
	Failures []*FileError
}

func (r *Report) add(path string, err error) {
	r.Failures = append(r.Failures, &FileError{Path: path, Err: err})
}

// Err joins every failure, or returns nil when all files loaded.
func (r *Report) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// DecodeModuleFile decodes descriptor data; format is a file extension
// ("json", "yaml", "yml", "toml", with or without the dot).
func DecodeModuleFile(data []byte, format string) (*ModuleFile, error) {
	var mf ModuleFile
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		err = json.Unmarshal(data, &mf)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &mf)
	case "toml":
		err = toml.Unmarshal(data, &mf)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return &mf, nil
}

// LoadModules reads every descriptor in paths, in order. Files that fail to
// read, decode, or convert are reported and skipped; the rest still load.
func LoadModules(paths []string) ([]meta.ModuleDescriptor, *Report) {
	report := &Report{}
	var files []*ModuleFile
	var loaded []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			report.add(path, err)
			continue
		}
		mf, err := DecodeModuleFile(data, filepath.Ext(path))
		if err != nil {
			report.add(path, err)
			continue
		}
		if mf.Assembly == "" {
			mf.Assembly = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		files = append(files, mf)
		loaded = append(loaded, path)
	}

	mods, errs := ConvertModules(files)
	var out []meta.ModuleDescriptor
	for i, mod := range mods {
		if errs[i] != nil {
			report.add(loaded[i], errs[i])
			continue
		}
		out = append(out, mod)
	}
	return out, report
}

// ConvertModules turns decoded files into module descriptors. Type names
// resolve across files, but only against types of files that convert
// cleanly: a dropped file takes its types with it, and references to them
// fall back to unknown. errs[i] is non-nil when files[i] is malformed.
func ConvertModules(files []*ModuleFile) (mods []meta.ModuleDescriptor, errs []error) {
	mods = make([]meta.ModuleDescriptor, len(files))
	errs = make([]error, len(files))
	for {
		known := make(map[string]bool)
		for i, mf := range files {
			if errs[i] != nil {
				continue
			}
			for _, tf := range mf.Types {
				known[typeID(tf).Key()] = true
			}
		}
		dropped := false
		for i, mf := range files {
			if errs[i] != nil {
				continue
			}
			if mods[i], errs[i] = convertModule(mf, known); errs[i] != nil {
				dropped = true
			}
		}
		if !dropped {
			return mods, errs
		}
	}
}

func typeID(tf TypeFile) meta.TypeID {
	return meta.TypeID{Namespace: tf.Namespace, Name: tf.Name, Arity: len(tf.TypeParams)}
}

func convertModule(mf *ModuleFile, known map[string]bool) (meta.ModuleDescriptor, error) {
	mod := meta.ModuleDescriptor{Assembly: mf.Assembly, Rules: mf.NamespaceRules}
	for _, tf := range mf.Types {
		t, err := convertType(tf, known)
		if err != nil {
			return mod, fmt.Errorf("type %s: %w", typeID(tf), err)
		}
		mod.Types = append(mod.Types, t)
	}
	for _, mfm := range mf.Methods {
		m, err := convertMethod(mf.Assembly, mfm, known)
		if err != nil {
			return mod, fmt.Errorf("method %s.%s: %w", mfm.Namespace, mfm.Name, err)
		}
		mod.Methods = append(mod.Methods, m)
	}
	return mod, nil
}

func convertType(tf TypeFile, known map[string]bool) (meta.CustomTypeDescriptor, error) {
	t := meta.CustomTypeDescriptor{ID: typeID(tf), TypeParams: tf.TypeParams}
	scope := Scope{Namespace: tf.Namespace, Params: tf.TypeParams, Known: known}

	switch strings.ToLower(tf.Kind) {
	case "", "object", "class", "struct", "record", "interface":
		t.Shape = meta.ShapeObject
	case "enum":
		t.Shape = meta.ShapeEnum
		var next int64
		for _, v := range tf.Values {
			if v.Value != nil {
				next = *v.Value
			}
			t.Values = append(t.Values, meta.EnumValue{Name: v.Name, Value: next})
			next++
		}
		return t, nil
	default:
		return t, fmt.Errorf("unknown type kind %q", tf.Kind)
	}

	for _, base := range tf.Extends {
		ref, err := ParseTypeExpr(base, scope)
		if err != nil {
			return t, err
		}
		t.Extends = append(t.Extends, ref)
	}
	for _, mem := range tf.Members {
		ref, err := ParseTypeExpr(mem.Type, scope)
		if err != nil {
			return t, fmt.Errorf("member %s: %w", mem.Name, err)
		}
		t.Members = append(t.Members, meta.Member{Name: mem.Name, Type: ref, Static: mem.Static, Computed: mem.Computed})
	}
	return t, nil
}

func convertMethod(assembly string, mf MethodFile, known map[string]bool) (meta.MethodDescriptor, error) {
	kind, err := meta.ParseMethodKind(mf.Kind)
	if err != nil {
		return meta.MethodDescriptor{}, err
	}
	m := meta.MethodDescriptor{
		Kind:   kind,
		Module: meta.ModuleIdentity{Assembly: assembly, Owner: mf.Owner},
		Space:  mf.Namespace,
		Name:   mf.Name,
	}
	scope := Scope{Namespace: mf.Namespace, Known: known}
	for _, a := range mf.Arguments {
		ref, err := ParseTypeExpr(a.Type, scope)
		if err != nil {
			return m, fmt.Errorf("argument %s: %w", a.Name, err)
		}
		m.Arguments = append(m.Arguments, meta.ArgumentDescriptor{Name: a.Name, Type: ref})
	}
	if mf.Returns == "" {
		m.Return.Type = meta.Void()
		return m, nil
	}
	ref, err := ParseTypeExpr(mf.Returns, scope)
	if err != nil {
		return m, fmt.Errorf("returns: %w", err)
	}
	m.Return.Type = ref
	return m, nil
}
