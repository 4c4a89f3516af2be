package xmlutil

import (
	"encoding/xml"
	"sort"
	"strings"
)

// PrefixMap is a prefix to namespace URI map
type PrefixMap map[string]string

// NewPrefixMap returns a PrefixMap, containing the passed XML attributes
func NewPrefixMap(attrs ...xml.Attr) PrefixMap {
	pmap := PrefixMap{}
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" {
			pmap[attr.Name.Local] = attr.Value
		}
	}
	return pmap
}

// Attr returns the prefix map contents as a series of xmlns:<prefix>=<nsuri> attributes,
// sorted lexically by prefix.
func (m PrefixMap) Attr() (a []xml.Attr) {
	for k, v := range m {
		a = append(a, xml.Attr{Name: xml.Name{Space: "xmlns", Local: k}, Value: v})
	}
	if len(a) > 0 {
		// sort lexically by prefix
		sort.Slice(a, func(i int, j int) bool { return a[i].Name.Local < a[j].Name.Local })
	}
	return a
}

// Namespace returns the namespace URI for the given prefix
func (m PrefixMap) Namespace(prefix string) string { return m[prefix] }

// Prefix returns any prefixes found for the namespace URI, sorted lexically.
func (m PrefixMap) Prefix(nsURI string) (pfxes []string) {
	for k, v := range m {
		if nsURI == v {
			pfxes = append(pfxes, k)
		}
	}
	sort.Strings(pfxes)
	return pfxes
}

// PrefixAllocator hands out generated prefixes ("a", "b", ... "z", "aa",
// "ab", ...) to namespaces in first-request order. A namespace keeps its
// prefix for the allocator's lifetime. Prefixes beginning with "xml" are
// reserved and never generated.
//
// The zero value is ready to use. PrefixAllocator is not safe for
// concurrent use.
type PrefixAllocator struct {
	byNamespace map[string]string
	next        int
}

// Prefix returns the prefix allocated to namespace, allocating the next
// free prefix if namespace has not been seen before.
func (p *PrefixAllocator) Prefix(namespace string) string {
	if pfx, ok := p.byNamespace[namespace]; ok {
		return pfx
	}
	if p.byNamespace == nil {
		p.byNamespace = map[string]string{}
	}
	var pfx string
	for {
		pfx = generatedPrefix(p.next)
		p.next++
		if !strings.HasPrefix(pfx, "xml") {
			break
		}
	}
	p.byNamespace[namespace] = pfx
	return pfx
}

// Len returns the number of namespaces allocated a prefix.
func (p *PrefixAllocator) Len() int { return len(p.byNamespace) }

// generatedPrefix returns the bijective base-26 lowercase string for n.
func generatedPrefix(n int) string {
	var b []byte
	for n++; n > 0; n = (n - 1) / 26 {
		b = append(b, byte('a'+(n-1)%26))
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
