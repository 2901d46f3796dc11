package transformRepository

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"BiasLens/internal/entity"
	"BiasLens/pkg/redis"
)

func New(db *sqlx.DB, redis redis.IRedis, snapshotTTL time.Duration, log *logrus.Logger) Repository {
	return &repository{
		DB:          db,
		redis:       redis,
		snapshotTTL: snapshotTTL,
		log:         log,
	}
}

type repository struct {
	DB          *sqlx.DB
	redis       redis.IRedis
	snapshotTTL time.Duration
	log         *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
	SaveSnapshot(ctx context.Context, snapshot entity.RunSnapshot) error
	GetSnapshot(ctx context.Context, runID string) (entity.RunSnapshot, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var db sqlx.ExtContext
	var commitFunc, rollbackFunc func() error

	db = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		db = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Results:  &resultRepository{q: db, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Results interface {
		CreateResult(ctx context.Context, result entity.TransformResult) error
		GetByImageSetID(ctx context.Context, imageSetID string) (entity.TransformResult, error)
		DeleteByImageSetID(ctx context.Context, imageSetID string) error
	}

	Commit   func() error
	Rollback func() error
}

type resultRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}
