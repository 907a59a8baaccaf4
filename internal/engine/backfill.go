package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mosgamer/promptplay/internal/model"
)

// BackfillStore is the slice of the store the startup backfill needs.
type BackfillStore interface {
	MissingComplexity(ctx context.Context) ([]model.Artifact, error)
	MissingTags(ctx context.Context) ([]model.Artifact, error)
	SetComplexity(ctx context.Context, id string, value int) (bool, error)
	SetTags(ctx context.Context, id string, tags []string) (bool, error)
}

// Backfill recomputes missing derived fields for previously persisted
// artifacts. One-shot and idempotent: recomputation is pure and overwriting,
// so an interrupted run simply leaves rows for the next startup.
func Backfill(ctx context.Context, st BackfillStore) error {
	unscored, err := st.MissingComplexity(ctx)
	if err != nil {
		return fmt.Errorf("scan missing complexity: %w", err)
	}
	if len(unscored) > 0 {
		slog.Info("backfilling complexity", "count", len(unscored))
		for _, a := range unscored {
			if _, err := st.SetComplexity(ctx, a.ID, ScoreComplexity(a.Document)); err != nil {
				return fmt.Errorf("backfill complexity %s: %w", a.ID, err)
			}
		}
	}

	untagged, err := st.MissingTags(ctx)
	if err != nil {
		return fmt.Errorf("scan missing tags: %w", err)
	}
	if len(untagged) > 0 {
		slog.Info("backfilling tags", "count", len(untagged))
		for _, a := range untagged {
			if _, err := st.SetTags(ctx, a.ID, ClassifyTags(a.Prompt)); err != nil {
				return fmt.Errorf("backfill tags %s: %w", a.ID, err)
			}
		}
	}

	return nil
}
