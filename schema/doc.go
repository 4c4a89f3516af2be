/*
Package schema provides the schema context subtree filters are resolved
against.

A Context is built from Modules. Each module owns a namespace and a tree
of data nodes, and may augment the trees of other modules. The subtree
filter reader uses a Context to find the fully qualified names a filter
element given without a namespace may refer to.

Contexts are usually loaded from YAML:

	modules:
	  - name: example-config
	    namespace: http://example.com/schema/1.2/config
	    revision: "2025-03-31"
	    nodes:
	      top:
	        users:
	          user: [name, type, id]
	  - name: example-config2
	    namespace: http://example.com/schema/1.2/config2
	    augments:
	      - target: /example-config:top
	        nodes:
	          users:
	            user: [id]

Mapping keys and sequence items are node names; a node's value is its
children. A Context is immutable and safe for concurrent use.
*/
package schema
