// Package graph serves the public GraphQL API used by the booking frontend.
package graph

import (
	_ "embed"

	"github.com/gdg-garage/convention-booking/internal/notifier"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaString string

// Resolver is the root of the schema. Notifier may be nil.
type Resolver struct {
	store    *store.Store
	files    storage.Storage
	notifier notifier.Notifier
}

func NewResolver(s *store.Store, files storage.Storage, n notifier.Notifier) *Resolver {
	return &Resolver{store: s, files: files, notifier: n}
}

// NewSchema parses the schema and binds it to the resolver. It panics when
// the resolver does not match the schema.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(schemaString, r, graphql.UseFieldResolvers())
}
