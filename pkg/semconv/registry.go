// Semantic convention registry loading from YAML model files
// Indexes groups and attributes, and resolves attribute references across files
package semconv

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed model
var modelFS embed.FS

type groupsFile struct {
	Groups []Group `yaml:"groups"`
}

// Registry holds indexed semantic convention groups and attributes.
type Registry struct {
	groups    []Group
	byGroupID map[string]*Group
	byAttrID  map[string]*Attribute
	byMetric  map[string]*Group
	byDomain  map[string][]*Group
}

// Load parses every YAML file in fsys into a Registry.
// Files under a "deprecated" directory are skipped.
func Load(fsys fs.FS) (*Registry, error) {
	var groups []Group

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isDeprecated(path) {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var gf groupsFile
		if err := yaml.Unmarshal(data, &gf); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		domain := domainOf(path)
		for i := range gf.Groups {
			gf.Groups[i].domain = domain
		}
		groups = append(groups, gf.Groups...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking filesystem: %w", err)
	}

	return index(groups), nil
}

// LoadEmbedded loads the registry bundled with the binary.
func LoadEmbedded() (*Registry, error) {
	sub, err := fs.Sub(modelFS, "model")
	if err != nil {
		return nil, fmt.Errorf("accessing embedded model: %w", err)
	}
	return Load(sub)
}

// Group returns the group with the given ID, or nil.
func (r *Registry) Group(id string) *Group {
	return r.byGroupID[id]
}

// Attribute returns the attribute definition with the given ID, or nil.
func (r *Registry) Attribute(id string) *Attribute {
	return r.byAttrID[id]
}

// Metric returns the metric group defining the named instrument, or nil.
func (r *Registry) Metric(name string) *Group {
	return r.byMetric[name]
}

// Domains returns the sorted domain names.
func (r *Registry) Domains() []string {
	domains := make([]string, 0, len(r.byDomain))
	for d := range r.byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Domain returns the groups loaded from the named top-level directory.
func (r *Registry) Domain(name string) []*Group {
	return r.byDomain[name]
}

// Groups returns all groups in load order.
func (r *Registry) Groups() []Group {
	return r.groups
}

// Merge returns a registry holding the groups of r followed by those of other.
// Later definitions of the same ID win.
func (r *Registry) Merge(other *Registry) *Registry {
	combined := make([]Group, 0, len(r.groups)+len(other.groups))
	for _, src := range [][]Group{r.groups, other.groups} {
		for _, g := range src {
			g.Attributes = append([]Attribute(nil), g.Attributes...)
			combined = append(combined, g)
		}
	}
	return index(combined)
}

func index(groups []Group) *Registry {
	r := &Registry{
		groups:    groups,
		byGroupID: make(map[string]*Group, len(groups)),
		byAttrID:  make(map[string]*Attribute),
		byMetric:  make(map[string]*Group),
		byDomain:  make(map[string][]*Group),
	}

	for i := range r.groups {
		g := &r.groups[i]
		r.byGroupID[g.ID] = g
		if g.MetricName != "" {
			r.byMetric[g.MetricName] = g
		}
		if g.domain != "" {
			r.byDomain[g.domain] = append(r.byDomain[g.domain], g)
		}
		for j := range g.Attributes {
			if a := &g.Attributes[j]; a.ID != "" && a.Ref == "" {
				r.byAttrID[a.ID] = a
			}
		}
	}

	// References copy type and docs from their definition; a dangling
	// reference keeps its own ID so lookups still find it.
	for i := range r.groups {
		for j := range r.groups[i].Attributes {
			a := &r.groups[i].Attributes[j]
			if a.Ref == "" {
				continue
			}
			def, ok := r.byAttrID[a.Ref]
			if !ok {
				a.ID = a.Ref
				continue
			}
			a.ID = def.ID
			a.Type = def.Type
			a.Stability = def.Stability
			a.Examples = def.Examples
			a.Deprecated = def.Deprecated
			if a.Brief == "" {
				a.Brief = def.Brief
			}
		}
	}

	return r
}

func isDeprecated(path string) bool {
	for part := range strings.SplitSeq(filepath.ToSlash(path), "/") {
		if part == "deprecated" {
			return true
		}
	}
	return false
}

func domainOf(path string) string {
	if dir, _, ok := strings.Cut(filepath.ToSlash(path), "/"); ok {
		return dir
	}
	return ""
}
