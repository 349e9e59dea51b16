// Package graphql exposes a read-only GraphQL query surface over a
// resolved graph: node lookup, kind filtering, neighborhood expansion,
// and substring search.
package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/codeatlas/codeatlas/pkg/model"
)

// GraphProvider yields the graph queries run against. Indirection lets the
// API serve whichever analysis is currently loaded.
type GraphProvider func() *model.Graph

var kindEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "Kind",
	Values: graphql.EnumValueConfigMap{
		"FILE":     &graphql.EnumValueConfig{Value: string(model.KindFile)},
		"MODULE":   &graphql.EnumValueConfig{Value: string(model.KindModule)},
		"FUNCTION": &graphql.EnumValueConfig{Value: string(model.KindFunction)},
		"CLASS":    &graphql.EnumValueConfig{Value: string(model.KindClass)},
		"EXTERNAL": &graphql.EnumValueConfig{Value: string(model.KindExternal)},
		"VIRTUAL":  &graphql.EnumValueConfig{Value: string(model.KindVirtual)},
	},
})

var relationEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "Relation",
	Values: graphql.EnumValueConfigMap{
		"CONTAINS": &graphql.EnumValueConfig{Value: string(model.RelationContains)},
		"CALLS":    &graphql.EnumValueConfig{Value: string(model.RelationCalls)},
		"INHERITS": &graphql.EnumValueConfig{Value: string(model.RelationInherits)},
		"IMPORTS":  &graphql.EnumValueConfig{Value: string(model.RelationImports)},
	},
})

func nodeField(fn func(n *model.Node) (any, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if n, ok := p.Source.(*model.Node); ok {
			return fn(n)
		}
		return nil, nil
	}
}

// BuildSchema builds the query schema over the provider's graph.
func BuildSchema(provider GraphProvider) (graphql.Schema, error) {
	nodeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.ID),
				Resolve: nodeField(func(n *model.Node) (any, error) { return n.ID, nil }),
			},
			"kind": &graphql.Field{
				Type:    graphql.NewNonNull(kindEnum),
				Resolve: nodeField(func(n *model.Node) (any, error) { return string(n.Kind), nil }),
			},
			"name": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: nodeField(func(n *model.Node) (any, error) { return n.Name, nil }),
			},
			"path": &graphql.Field{
				Type:    graphql.String,
				Resolve: nodeField(func(n *model.Node) (any, error) { return n.Path, nil }),
			},
			"synthetic": &graphql.Field{
				Type:    graphql.Boolean,
				Resolve: nodeField(func(n *model.Node) (any, error) { return n.Synthetic, nil }),
			},
			"degree": &graphql.Field{
				Type: graphql.Int,
				Resolve: nodeField(func(n *model.Node) (any, error) {
					return provider().Degree(n.ID), nil
				}),
			},
		},
	})

	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Edge",
		Fields: graphql.Fields{
			"source": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if e, ok := p.Source.(model.Edge); ok {
						return e.Source, nil
					}
					return nil, nil
				},
			},
			"target": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if e, ok := p.Source.(model.Edge); ok {
						return e.Target, nil
					}
					return nil, nil
				},
			},
			"relation": &graphql.Field{
				Type: graphql.NewNonNull(relationEnum),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if e, ok := p.Source.(model.Edge); ok {
						return string(e.Relation), nil
					}
					return nil, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, ok := p.Args["id"].(string)
					if !ok {
						return nil, fmt.Errorf("id argument is required")
					}
					n, found := provider().Node(id)
					if !found {
						return nil, nil
					}
					return n, nil
				},
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"kind": &graphql.ArgumentConfig{Type: kindEnum},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					g := provider()
					if kind, ok := p.Args["kind"].(string); ok {
						return g.NodesByKind(model.Kind(kind)), nil
					}
					return g.Nodes(), nil
				},
			},
			"edges": &graphql.Field{
				Type: graphql.NewList(edgeType),
				Args: graphql.FieldConfigArgument{
					"relation": &graphql.ArgumentConfig{Type: relationEnum},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					edges := provider().Edges()
					rel, ok := p.Args["relation"].(string)
					if !ok {
						return edges, nil
					}
					var out []model.Edge
					for _, e := range edges {
						if e.Relation == model.Relation(rel) {
							out = append(out, e)
						}
					}
					return out, nil
				},
			},
			"neighbors": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, ok := p.Args["id"].(string)
					if !ok {
						return nil, fmt.Errorf("id argument is required")
					}
					g := provider()
					if _, found := g.Node(id); !found {
						return nil, fmt.Errorf("node %s not found", id)
					}
					var out []*model.Node
					for _, nid := range g.Neighbors(id, model.DirectionBoth) {
						if n, found := g.Node(nid); found {
							out = append(out, n)
						}
					}
					return out, nil
				},
			},
			"search": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					name, ok := p.Args["name"].(string)
					if !ok || name == "" {
						return nil, fmt.Errorf("name argument is required")
					}
					needle := strings.ToLower(name)
					var out []*model.Node
					for _, n := range provider().Nodes() {
						if strings.Contains(strings.ToLower(n.Name), needle) {
							out = append(out, n)
						}
					}
					return out, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// ExecuteQuery runs a query without variables.
func ExecuteQuery(query string, schema graphql.Schema) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
	})
}

// ExecuteQueryWithVariables runs a query with variables.
func ExecuteQueryWithVariables(query string, schema graphql.Schema, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
	})
}
