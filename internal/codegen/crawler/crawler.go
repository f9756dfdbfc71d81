// Package crawler discovers interop methods across compiled modules and the
// custom types transitively reachable from their signatures.
package crawler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/interopgen/internal/codegen/common"
	"github.com/Alia5/interopgen/internal/codegen/meta"
	"github.com/Alia5/interopgen/internal/codegen/namespace"
)

// ErrDuplicateMethod is returned when two methods claim the same key on a
// namespace's binding object, whatever their kinds.
var ErrDuplicateMethod = errors.New("duplicate interop method")

// Crawler walks module descriptors. It is single-use per Crawl call and holds
// no state between calls.
type Crawler struct {
	resolver *namespace.Resolver
	logger   *slog.Logger
}

func New(resolver *namespace.Resolver, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Crawler{resolver: resolver, logger: logger}
}

type state struct {
	registry map[string]meta.CustomTypeDescriptor
	visited  map[string]bool
	types    []meta.CustomTypeDescriptor
	spaces   []string
	seen     map[string]bool
}

// Crawl builds the Inspection for modules. Methods keep module order then
// declaration order; types and namespaces keep first-seen order.
func (c *Crawler) Crawl(modules []meta.ModuleDescriptor) (*meta.Inspection, error) {
	st := &state{
		registry: make(map[string]meta.CustomTypeDescriptor),
		visited:  make(map[string]bool),
		seen:     make(map[string]bool),
	}
	for _, mod := range modules {
		for _, t := range mod.Types {
			key := t.ID.Key()
			if _, dup := st.registry[key]; dup {
				c.logger.Debug("Type declared by several modules, keeping first", "type", key, "assembly", mod.Assembly)
				continue
			}
			st.registry[key] = t
		}
	}

	var methods []meta.MethodDescriptor
	names := make(map[string]meta.MethodDescriptor)
	for _, mod := range modules {
		for _, m := range mod.Methods {
			if m.Kind == meta.KindNone {
				continue
			}
			if m.Module.Assembly == "" {
				m.Module.Assembly = mod.Assembly
			}
			m.TargetSpace = c.resolver.Resolve(m.Space)
			m.TargetName = common.ToCamelCase(m.Name)
			if m.Return.Type == nil {
				m.Return.Type = meta.Void()
			}

			for _, k := range boundKeys(m) {
				key := m.TargetSpace + "|" + k
				if prev, dup := names[key]; dup {
					return nil, fmt.Errorf("%w: %s.%s (%s) collides with %s from %s",
						ErrDuplicateMethod, m.TargetSpace, k, m.Module.Assembly, prev.String(), prev.Module.Assembly)
				}
				names[key] = m
			}

			c.logger.Debug("Found interop method", "method", m.String(),
				"async", m.Return.Async(), "void", m.Return.Void(), "nullableReturn", m.Return.Nullable())
			st.addSpace(m.TargetSpace)
			for _, a := range m.Arguments {
				c.crawlRef(st, a.Type)
			}
			c.crawlRef(st, m.Return.Type)
			methods = append(methods, m)
		}
	}

	c.logger.Debug("Crawl complete", "methods", len(methods), "types", len(st.types), "spaces", len(st.spaces))
	return meta.NewInspection(methods, st.types, st.spaces), nil
}

// boundKeys lists the keys a method occupies on its namespace binding object.
// All kinds share that object, so names collide across kinds.
func boundKeys(m meta.MethodDescriptor) []string {
	switch m.Kind {
	case meta.Function:
		return []string{m.TargetName, m.TargetName + "Serialized", m.TargetName + "Handler", m.TargetName + "SerializedHandler"}
	case meta.Event:
		return []string{m.TargetName, m.TargetName + "Serialized"}
	default:
		return []string{m.TargetName}
	}
}

func (st *state) addSpace(space string) {
	if st.seen[space] {
		return
	}
	st.seen[space] = true
	st.spaces = append(st.spaces, space)
}

func (c *Crawler) crawlRef(st *state, ref *meta.TypeRef) {
	ref.Walk(func(r *meta.TypeRef) bool {
		switch r.Kind {
		case meta.KindCustom, meta.KindGeneric:
			c.visit(st, r.ID)
		}
		return true
	})
}

// visit marks id before descending so reference cycles terminate.
func (c *Crawler) visit(st *state, id meta.TypeID) {
	key := id.Key()
	if st.visited[key] {
		return
	}
	st.visited[key] = true

	t, ok := st.registry[key]
	if !ok {
		c.logger.Debug("Referenced type has no descriptor", "type", key)
		return
	}
	t.TargetSpace = c.resolver.Resolve(t.ID.Namespace)
	t.Members = instanceMembers(t.Members)
	st.addSpace(t.TargetSpace)
	st.types = append(st.types, t)

	for _, base := range t.Extends {
		c.crawlRef(st, base)
	}
	for _, m := range t.Members {
		c.crawlRef(st, m.Type)
	}
}

func instanceMembers(members []meta.Member) []meta.Member {
	out := make([]meta.Member, 0, len(members))
	for _, m := range members {
		if m.Static || m.Computed {
			continue
		}
		out = append(out, m)
	}
	return out
}
