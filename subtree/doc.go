/*
Package subtree implements RFC6241 section 6 subtree filters.

A Filter is an ordered list of filter nodes. Each node selects an element
by a NamespaceSelection, either an Exact qualified name or a Wildcard
local name with the candidate qualified names a schema context offered
for it. Nodes take one of three roles:

	*SelectionNode    returns the selected element and its whole subtree
	*ContainmentNode  descends into the element, applying child nodes
	*ContentMatchNode requires a leaf element to carry a given value

Filters are built with the builders in this package, by Read from XML,
or by ReadNode from a parsed document. Built filters are immutable and
may be shared by any number of goroutines.

Write serializes a filter as a <filter type="subtree"> element. Matches
and MatchNode evaluate a filter against a data tree, and Apply builds
the filtered result a <get> or <get-config> returns.
*/
package subtree
