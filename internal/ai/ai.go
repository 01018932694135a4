package ai

import (
	"context"

	"github.com/campusvoice/backend/internal/models"
)

type Classifier interface {
	ClassifyGrievance(ctx context.Context, text string) (models.Classification, int64, error)
}
