package vector

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient covers the index lifecycle operations of the vector engine.
type SchemaClient interface {
	CreateClass(ctx context.Context, class *models.Class) error
	DeleteClass(ctx context.Context, className string) error
	ListClasses(ctx context.Context) ([]string, error)
}

// DataClient covers the record-level operations of the vector engine.
type DataClient interface {
	BatchUpsert(ctx context.Context, objects []*models.Object) error
	NearVector(ctx context.Context, className string, vector []float32, limit int, sourceFilter string) (*models.GraphQLResponse, error)
	Aggregate(ctx context.Context, className string) (*models.GraphQLResponse, error)
}

// WeaviateAdapter implements SchemaClient and DataClient against the fluent
// weaviate client, keeping the Store mockable.
type WeaviateAdapter struct {
	Client *weaviate.Client
}

func NewWeaviateAdapter(client *weaviate.Client) *WeaviateAdapter {
	return &WeaviateAdapter{Client: client}
}

func (a *WeaviateAdapter) CreateClass(ctx context.Context, class *models.Class) error {
	return a.Client.Schema().ClassCreator().WithClass(class).Do(ctx)
}

func (a *WeaviateAdapter) DeleteClass(ctx context.Context, className string) error {
	return a.Client.Schema().ClassDeleter().WithClassName(className).Do(ctx)
}

func (a *WeaviateAdapter) ListClasses(ctx context.Context) ([]string, error) {
	dump, err := a.Client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(dump.Classes))
	for _, c := range dump.Classes {
		names = append(names, c.Class)
	}
	return names, nil
}

func (a *WeaviateAdapter) BatchUpsert(ctx context.Context, objects []*models.Object) error {
	resp, err := a.Client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch object %s: %s", r.ID, r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func (a *WeaviateAdapter) NearVector(ctx context.Context, className string, vec []float32, limit int, sourceFilter string) (*models.GraphQLResponse, error) {
	nearVector := a.Client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "contentPreview"},
		{Name: "source"},
		{Name: "chunkId"},
		{Name: "chunkKey"},
		{Name: "startChar"},
		{Name: "endChar"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	query := a.Client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...)

	if sourceFilter != "" {
		query = query.WithWhere(filters.Where().
			WithPath([]string{"source"}).
			WithOperator(filters.Equal).
			WithValueString(sourceFilter))
	}

	return query.Do(ctx)
}

func (a *WeaviateAdapter) Aggregate(ctx context.Context, className string) (*models.GraphQLResponse, error) {
	return a.Client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
}
