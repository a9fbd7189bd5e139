package importer

import (
	"context"

	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/models"
)

// ActivityImporter loads the activity catalogue.
type ActivityImporter struct {
	deps     Deps
	seedPath string
	log      *logger.Logger
}

// NewActivityImporter creates an ActivityImporter reading seedPath.
func NewActivityImporter(d Deps, seedPath string) *ActivityImporter {
	return &ActivityImporter{deps: d, seedPath: seedPath, log: d.logger("activity")}
}

// ImportSeed inserts the seeded activities.
func (i *ActivityImporter) ImportSeed(ctx context.Context) (Result, error) {
	return importSeed(ctx, i.deps, i.log, models.TableActivities, i.seedPath)
}
