package resolver

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/model"
)

// Resolver converts a flat structural record into a dependency graph,
// matching unqualified call and base-class names against definitions across
// every analyzed file. Resolution is eager and happens exactly once per
// analysis; the returned graph is not mutated afterwards.
//
// Name matching is deliberately permissive: a call to "helper" links to
// every function named helper in any file, with no disambiguation by import
// binding. Import-aware resolution is a possible future tightening, not a
// defect in this policy.
type Resolver struct {
	log logging.Logger

	// Strict makes internal invariant violations (dangling edge references,
	// which the create-before-reference ordering should rule out) fail the
	// whole resolution instead of being skipped with a warning.
	Strict bool
}

// New creates a resolver. A nil logger disables logging.
func New(log logging.Logger) *Resolver {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Resolver{log: log.With(logging.Component("resolver"))}
}

// state carries the lookup tables for one Resolve call.
type state struct {
	graph *model.Graph
	next  int

	fileNode     map[string]string   // file path -> node id
	fileByModule map[string]string   // file base name without extension -> node id
	funcsByName  map[string][]string // function name -> node ids, creation order
	classByName  map[string][]string // class name -> node ids, creation order
	// Keyed by full path so files sharing a base name (src/a.py, lib/a.py)
	// keep distinct caller ids.
	qualified map[string]string // "<filePath>.<entityName>" -> node id
	externals    map[string]string   // unresolved name -> placeholder node id
}

func (s *state) newID() string {
	id := fmt.Sprintf("n%d", s.next)
	s.next++
	return id
}

// Resolve builds a graph from the structural record. The input is never
// mutated. Per-file parse errors degrade that file to a bare file node and
// are surfaced in the graph's file-error metadata; Resolve itself fails only
// in Strict mode on an internal invariant violation.
func (r *Resolver) Resolve(structure Structure) (*model.Graph, error) {
	s := &state{
		graph:        model.NewGraph(),
		fileNode:     make(map[string]string),
		fileByModule: make(map[string]string),
		funcsByName:  make(map[string][]string),
		classByName:  make(map[string][]string),
		qualified:    make(map[string]string),
		externals:    make(map[string]string),
	}

	// Sorted traversal keeps node ids stable across repeated calls with the
	// same input.
	paths := make([]string, 0, len(structure))
	for p := range structure {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	// Pass 1: definitions. Every node referenced by a later edge exists by
	// the end of this pass.
	for _, filePath := range paths {
		r.registerFile(s, filePath, structure[filePath])
	}

	// Pass 2: references.
	for _, filePath := range paths {
		if err := r.linkFile(s, filePath, structure[filePath]); err != nil {
			return nil, err
		}
	}

	r.log.Info("structure resolved",
		logging.Files(len(paths)),
		logging.Int("nodes", s.graph.NodeCount()),
		logging.Int("edges", s.graph.EdgeCount()),
		logging.Int("placeholders", len(s.externals)),
	)
	return s.graph, nil
}

// registerFile creates the file node and a node per function and class,
// wiring the contains edges and filling the lookup tables.
func (r *Resolver) registerFile(s *state, filePath string, rec FileRecord) {
	base := path.Base(filePath)
	fileID := s.newID()
	s.graph.AddNode(&model.Node{
		ID:   fileID,
		Kind: model.KindFile,
		Name: base,
		Path: filePath,
	})
	s.fileNode[filePath] = fileID

	moduleName := strings.TrimSuffix(base, path.Ext(base))
	if _, taken := s.fileByModule[moduleName]; !taken {
		s.fileByModule[moduleName] = fileID
	}

	for _, msg := range rec.Errors {
		s.graph.RecordFileError(filePath, msg)
	}

	for _, name := range sortedKeys(rec.Functions) {
		fn := rec.Functions[name]
		id := s.newID()
		s.graph.AddNode(&model.Node{
			ID:    id,
			Kind:  model.KindFunction,
			Name:  name,
			Path:  filePath,
			Args:  append([]string(nil), fn.Args...),
			Calls: append([]string(nil), fn.Calls...),
		})
		s.funcsByName[name] = append(s.funcsByName[name], id)
		s.qualified[filePath+"."+name] = id
		r.addEdge(s, model.Edge{Source: fileID, Target: id, Relation: model.RelationContains})
	}

	for _, name := range sortedKeys(rec.Classes) {
		cl := rec.Classes[name]
		id := s.newID()
		s.graph.AddNode(&model.Node{
			ID:      id,
			Kind:    model.KindClass,
			Name:    name,
			Path:    filePath,
			Bases:   append([]string(nil), cl.Bases...),
			Methods: append([]string(nil), cl.Methods...),
		})
		s.classByName[name] = append(s.classByName[name], id)
		s.qualified[filePath+"."+name] = id
		r.addEdge(s, model.Edge{Source: fileID, Target: id, Relation: model.RelationContains})
	}
}

// linkFile emits calls, inherits, and imports edges for one file.
func (r *Resolver) linkFile(s *state, filePath string, rec FileRecord) error {
	fileID := s.fileNode[filePath]

	for _, name := range sortedKeys(rec.Functions) {
		callerID := s.qualified[filePath+"."+name]
		for _, called := range rec.Functions[name].Calls {
			targets := s.funcsByName[called]
			if len(targets) == 0 {
				targets = []string{s.placeholder(called)}
			}
			// Ambiguity policy: a name defined in several files links to
			// every match.
			for _, target := range targets {
				if err := r.addEdge(s, model.Edge{Source: callerID, Target: target, Relation: model.RelationCalls}); err != nil {
					return err
				}
			}
		}
	}

	for _, name := range sortedKeys(rec.Classes) {
		classID := s.qualified[filePath+"."+name]
		for _, baseName := range rec.Classes[name].Bases {
			targets := s.classByName[baseName]
			if len(targets) == 0 {
				targets = []string{s.placeholder(baseName)}
			}
			for _, target := range targets {
				if err := r.addEdge(s, model.Edge{Source: classID, Target: target, Relation: model.RelationInherits}); err != nil {
					return err
				}
			}
		}
	}

	for _, binding := range sortedKeys(rec.Imports) {
		source := rec.Imports[binding]
		root := source
		if i := strings.IndexByte(root, '.'); i >= 0 {
			root = root[:i]
		}
		target, ok := s.fileByModule[root]
		if !ok {
			target = s.placeholder(root)
		}
		if target == fileID {
			continue
		}
		if err := r.addEdge(s, model.Edge{Source: fileID, Target: target, Relation: model.RelationImports}); err != nil {
			return err
		}
	}

	return nil
}

// placeholder returns the external node standing in for an unresolved name,
// creating it on first use. Repeated unresolved references to the same name
// share one node.
func (s *state) placeholder(name string) string {
	if id, ok := s.externals[name]; ok {
		return id
	}
	id := s.newID()
	s.graph.AddNode(&model.Node{
		ID:        id,
		Kind:      model.KindExternal,
		Name:      name,
		Synthetic: true,
	})
	s.externals[name] = id
	return id
}

func (r *Resolver) addEdge(s *state, e model.Edge) error {
	err := s.graph.AddEdge(e)
	if err == nil {
		return nil
	}
	if r.Strict {
		return err
	}
	// A dangling reference here is a resolver bug; skip the edge and keep
	// the rest of the graph usable.
	r.log.Warn("skipping edge", logging.String("edge", e.Key()), logging.Error(err))
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
