package schema

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Module is a schema module: a namespace and the data nodes it defines.
type Module struct {
	Name      string    `yaml:"name"`
	Namespace string    `yaml:"namespace"`
	Revision  string    `yaml:"revision,omitempty"`
	Nodes     Nodes     `yaml:"nodes,omitempty"`
	Augments  []Augment `yaml:"augments,omitempty"`
}

// Augment adds nodes of the enclosing module beneath a node of another.
// Target is an absolute path of module-qualified node names, e.g.
// "/example-config:top/example-config:users".
type Augment struct {
	Target string `yaml:"target"`
	Nodes  Nodes  `yaml:"nodes"`
}

// Context is an immutable set of schema modules.
type Context struct {
	modules     []*Module
	byNamespace map[string]*Module
	roots       Nodes
	augmented   map[*Node]Nodes
	byLocal     map[string][]xml.Name
	byName      map[xml.Name]Nodes
}

// NewContext returns a Context of the modules provided. Module names and
// namespaces must be unique. The modules are copied.
func NewContext(modules ...*Module) (*Context, error) {
	c := &Context{
		byNamespace: map[string]*Module{},
		augmented:   map[*Node]Nodes{},
		byLocal:     map[string][]xml.Name{},
		byName:      map[xml.Name]Nodes{},
	}
	byName := map[string]*Module{}
	for _, m := range modules {
		if m == nil {
			continue
		}
		switch {
		case m.Name == "":
			return nil, errors.Errorf("module with namespace %q has no name", m.Namespace)
		case m.Namespace == "":
			return nil, errors.Errorf("module %q has no namespace", m.Name)
		case byName[m.Name] != nil:
			return nil, errors.Errorf("duplicate module name %q", m.Name)
		case c.byNamespace[m.Namespace] != nil:
			return nil, errors.Errorf("duplicate module namespace %q", m.Namespace)
		}
		cp := &Module{Name: m.Name, Namespace: m.Namespace, Revision: m.Revision, Nodes: own(m.Nodes, m.Namespace)}
		for _, aug := range m.Augments {
			cp.Augments = append(cp.Augments, Augment{Target: aug.Target, Nodes: own(aug.Nodes, m.Namespace)})
		}
		byName[cp.Name] = cp
		c.byNamespace[cp.Namespace] = cp
		c.modules = append(c.modules, cp)
		c.roots = append(c.roots, cp.Nodes...)
	}
	if err := c.augment(byName); err != nil {
		return nil, err
	}
	for _, m := range c.modules {
		c.index(m.Nodes)
		for _, aug := range m.Augments {
			c.index(aug.Nodes)
		}
	}
	return c, nil
}

// own returns a deep copy of nodes with unqualified names placed in
// namespace.
func own(nodes Nodes, namespace string) Nodes {
	if len(nodes) == 0 {
		return nil
	}
	out := make(Nodes, 0, len(nodes))
	for _, n := range nodes {
		name := n.Name
		if name.Space == "" {
			name.Space = namespace
		}
		out = append(out, &Node{Name: name, Children: own(n.Children, namespace)})
	}
	return out
}

// augment applies every module's augments. An augment may target nodes
// added by another, so augments are applied in passes until none remain.
func (c *Context) augment(modules map[string]*Module) error {
	type pending struct {
		module *Module
		aug    Augment
	}
	var todo []pending
	for _, m := range c.modules {
		for _, aug := range m.Augments {
			todo = append(todo, pending{m, aug})
		}
	}
	for len(todo) > 0 {
		var (
			next []pending
			err  error
		)
		for _, p := range todo {
			target, rerr := c.resolve(modules, p.aug.Target)
			if rerr != nil {
				if err == nil {
					err = errors.Wrapf(rerr, "module %q augment", p.module.Name)
				}
				next = append(next, p)
				continue
			}
			c.augmented[target] = append(c.augmented[target], p.aug.Nodes...)
		}
		if len(next) == len(todo) {
			return err
		}
		todo = next
	}
	return nil
}

func (c *Context) resolve(modules map[string]*Module, path string) (*Node, error) {
	steps := strings.Split(strings.TrimPrefix(path, "/"), "/")
	var target *Node
	scope := c.roots
	for _, step := range steps {
		i := strings.LastIndexByte(step, ':')
		if i < 0 {
			return nil, errors.Errorf("target %q: step %q is not module qualified", path, step)
		}
		m := modules[step[:i]]
		if m == nil {
			return nil, errors.Errorf("target %q: unknown module %q", path, step[:i])
		}
		name := xml.Name{Space: m.Namespace, Local: step[i+1:]}
		if target = scope.find(name); target == nil {
			return nil, errors.Errorf("target %q: no node %s", path, name.Local)
		}
		scope = c.children(target)
	}
	if target == nil {
		return nil, errors.Errorf("invalid augment target %q", path)
	}
	return target, nil
}

func (c *Context) index(nodes Nodes) {
	for _, root := range nodes {
		root.walk(func(n *Node) {
			byName := c.byName[n.Name]
			if len(byName) == 0 {
				c.byLocal[n.Name.Local] = append(c.byLocal[n.Name.Local], n.Name)
			}
			c.byName[n.Name] = append(byName, n)
		})
	}
}

// Modules returns the context's modules in declaration order.
func (c *Context) Modules() []*Module {
	return append([]*Module(nil), c.modules...)
}

// Module returns the module owning namespace.
func (c *Context) Module(namespace string) (*Module, bool) {
	m, ok := c.byNamespace[namespace]
	return m, ok
}

// Roots returns the top level data nodes of all modules.
func (c *Context) Roots() Nodes { return append(Nodes(nil), c.roots...) }

// Candidates returns every name in the context with the local name local,
// ordered by module declaration order and then node order.
func (c *Context) Candidates(local string) []xml.Name {
	return append([]xml.Name(nil), c.byLocal[local]...)
}

// Find returns every node named name, wherever it occurs.
func (c *Context) Find(name xml.Name) Nodes {
	return append(Nodes(nil), c.byName[name]...)
}

// Children returns the nodes named local, in any namespace, beneath the
// parent nodes. A nil parents list refers to the top level.
func (c *Context) Children(parents Nodes, local string) Nodes {
	if parents == nil {
		var out Nodes
		for _, n := range c.roots {
			if n.Name.Local == local {
				out = append(out, n)
			}
		}
		return out
	}
	var out Nodes
	seen := map[*Node]bool{}
	for _, p := range parents {
		for _, n := range c.children(p) {
			if n.Name.Local == local && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// children returns the children of n, including those added by augments.
func (c *Context) children(n *Node) Nodes {
	aug := c.augmented[n]
	if len(aug) == 0 {
		return n.Children
	}
	return append(append(Nodes(nil), n.Children...), aug...)
}

type file struct {
	Modules []*Module `yaml:"modules"`
}

// Load reads a YAML schema context document from r.
func Load(r io.Reader) (*Context, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding schema")
	}
	return NewContext(f.Modules...)
}

// LoadFile reads a YAML schema context document from the file at path.
func LoadFile(path string) (*Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	c, err := Load(f)
	return c, errors.Wrapf(err, "schema file %s", path)
}

// Marshal encodes the context's modules as a YAML schema context document.
func (c *Context) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(file{Modules: c.Modules()})
	return b, errors.WithStack(err)
}
