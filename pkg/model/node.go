package model

// Kind classifies a node in the dependency graph.
type Kind string

const (
	KindFile     Kind = "file"
	KindModule   Kind = "module"
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindExternal Kind = "external"
	KindVirtual  Kind = "virtual"
)

// Valid reports whether k is one of the known node kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFile, KindModule, KindFunction, KindClass, KindExternal, KindVirtual:
		return true
	}
	return false
}

// Node is a typed vertex in the dependency graph. Functions carry their
// argument list and the raw call names as written in the source; classes
// carry their base-class list and method names. External nodes are
// synthesized placeholders for references that resolved to no definition
// and carry only a name.
type Node struct {
	ID        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	Name      string   `json:"name"`
	Path      string   `json:"path,omitempty"`
	Args      []string `json:"args,omitempty"`
	Calls     []string `json:"calls,omitempty"`
	Bases     []string `json:"bases,omitempty"`
	Methods   []string `json:"methods,omitempty"`
	Synthetic bool     `json:"synthetic,omitempty"`
}
