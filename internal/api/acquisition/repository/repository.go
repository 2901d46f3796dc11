package acquisitionRepository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/acquisition"
	"BiasLens/internal/entity"
	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/redis"
)

const keyPrefix = "image_set:"

type Repository interface {
	SaveImageSet(ctx context.Context, set entity.ImageSet) error
	GetImageSet(ctx context.Context, id string) (entity.ImageSet, error)
}

type repository struct {
	redis redis.IRedis
	ttl   time.Duration
	log   *logrus.Logger
}

func New(redis redis.IRedis, ttl time.Duration, log *logrus.Logger) Repository {
	return &repository{
		redis: redis,
		ttl:   ttl,
		log:   log,
	}
}

func imageSetKey(id string) string {
	return keyPrefix + id
}

func (r *repository) SaveImageSet(ctx context.Context, set entity.ImageSet) error {
	if err := r.redis.SetJSON(ctx, imageSetKey(set.ID), set, r.ttl); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":   contextPkg.GetRequestID(ctx),
			"image_set_id": set.ID,
			"error":        err.Error(),
		}).Error("Failed to save image set")
		return fmt.Errorf("save image set %s: %w", set.ID, err)
	}
	return nil
}

func (r *repository) GetImageSet(ctx context.Context, id string) (entity.ImageSet, error) {
	var set entity.ImageSet
	if err := r.redis.GetJSON(ctx, imageSetKey(id), &set); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return entity.ImageSet{}, acquisition.ErrImageSetNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id":   contextPkg.GetRequestID(ctx),
			"image_set_id": id,
			"error":        err.Error(),
		}).Error("Failed to load image set")
		return entity.ImageSet{}, fmt.Errorf("get image set %s: %w", id, err)
	}
	return set, nil
}
