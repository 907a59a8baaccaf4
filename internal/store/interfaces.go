package store

import (
	"context"

	"github.com/mosgamer/promptplay/internal/model"
)

// ArtifactReader provides read access to artifacts.
type ArtifactReader interface {
	Get(ctx context.Context, id string) (*model.Artifact, error)
	List(ctx context.Context) ([]model.Summary, error)
}

// ArtifactWriter provides write access to artifacts.
type ArtifactWriter interface {
	Insert(ctx context.Context, a model.Artifact) error
	Delete(ctx context.Context, id string) (bool, error)
	Rename(ctx context.Context, id, title string) (bool, error)
	AdjustVotes(ctx context.Context, id string, delta int) (bool, error)
	SetUserRating(ctx context.Context, id string, rating int) (bool, error)
}

// AnalysisUpdater provides the queries and writes used to recompute derived
// fields on rows that predate them.
type AnalysisUpdater interface {
	MissingComplexity(ctx context.Context) ([]model.Artifact, error)
	MissingTags(ctx context.Context) ([]model.Artifact, error)
	SetComplexity(ctx context.Context, id string, value int) (bool, error)
	SetTags(ctx context.Context, id string, tags []string) (bool, error)
}

// ArtifactRepository combines all artifact operations for the API layer.
type ArtifactRepository interface {
	ArtifactReader
	ArtifactWriter
}
