package transformRepository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/transform"
	"BiasLens/internal/entity"
	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/redis"
)

const snapshotKeyPrefix = "run:"

func snapshotKey(runID string) string {
	return snapshotKeyPrefix + runID
}

func (r *repository) SaveSnapshot(ctx context.Context, snapshot entity.RunSnapshot) error {
	if err := r.redis.SetJSON(ctx, snapshotKey(snapshot.ID), snapshot, r.snapshotTTL); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"run_id":     snapshot.ID,
			"error":      err.Error(),
		}).Error("Failed to persist run snapshot")
		return fmt.Errorf("save run snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}

func (r *repository) GetSnapshot(ctx context.Context, runID string) (entity.RunSnapshot, error) {
	var snapshot entity.RunSnapshot
	if err := r.redis.GetJSON(ctx, snapshotKey(runID), &snapshot); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return entity.RunSnapshot{}, transform.ErrRunNotFound
		}
		return entity.RunSnapshot{}, fmt.Errorf("get run snapshot %s: %w", runID, err)
	}
	return snapshot, nil
}
