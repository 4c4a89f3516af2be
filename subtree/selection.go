package subtree

import (
	"encoding/xml"
	"strings"

	"github.com/andaru/netconf-core/xmlutil"
)

// NamespaceSelection selects the elements a filter node applies to.
// Implementations are Exact and Wildcard.
type NamespaceSelection interface {
	// LocalName returns the local name of the selected elements.
	LocalName() string
	// Matches reports whether an element named name is selected.
	Matches(name xml.Name) bool
	String() string

	equal(NamespaceSelection) bool
}

// Exact selects elements by their qualified name.
type Exact struct {
	Name xml.Name
}

// ExactName returns an Exact selection of the name {space}local.
func ExactName(space, local string) Exact { return Exact{Name: xml.Name{Space: space, Local: local}} }

func (e Exact) LocalName() string { return e.Name.Local }

func (e Exact) Matches(name xml.Name) bool { return name == e.Name }

func (e Exact) String() string { return xmlutil.Clark(e.Name) }

func (e Exact) equal(o NamespaceSelection) bool {
	x, ok := o.(Exact)
	return ok && x == e
}

// Wildcard selects elements by local name, for a filter element given
// without a namespace. Candidates lists the qualified names the element
// may refer to; when it is empty elements in any namespace are selected.
type Wildcard struct {
	Local      string
	Candidates []xml.Name
}

func (w Wildcard) LocalName() string { return w.Local }

func (w Wildcard) Matches(name xml.Name) bool {
	if name.Local != w.Local {
		return false
	}
	if len(w.Candidates) == 0 {
		return true
	}
	for _, c := range w.Candidates {
		if c.Space == name.Space {
			return true
		}
	}
	return false
}

func (w Wildcard) String() string {
	cs := make([]string, len(w.Candidates))
	for i, c := range w.Candidates {
		cs[i] = xmlutil.Clark(c)
	}
	return "*:" + w.Local + "[" + strings.Join(cs, " ") + "]"
}

func (w Wildcard) equal(o NamespaceSelection) bool {
	x, ok := o.(Wildcard)
	if !ok || x.Local != w.Local || len(x.Candidates) != len(w.Candidates) {
		return false
	}
	for i := range w.Candidates {
		if x.Candidates[i] != w.Candidates[i] {
			return false
		}
	}
	return true
}

func checkSelection(sel NamespaceSelection) error {
	switch sel := sel.(type) {
	case nil:
		return constructionError("namespace selection is nil")
	case Exact:
		if sel.Name.Local == "" {
			return constructionError("exact selection has no local name")
		}
	case Wildcard:
		if sel.Local == "" {
			return constructionError("wildcard selection has no local name")
		}
		seen := map[xml.Name]bool{}
		for _, c := range sel.Candidates {
			switch {
			case c.Local != sel.Local:
				return constructionError("wildcard %q candidate %s has a different local name", sel.Local, xmlutil.Clark(c))
			case seen[c]:
				return constructionError("wildcard %q candidate %s is repeated", sel.Local, xmlutil.Clark(c))
			}
			seen[c] = true
		}
	default:
		return constructionError("unsupported namespace selection %T", sel)
	}
	return nil
}
