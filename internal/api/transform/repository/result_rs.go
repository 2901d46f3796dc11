package transformRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/transform"
	"BiasLens/internal/entity"
	contextPkg "BiasLens/pkg/context"
)

type ResultDB struct {
	ID         string    `db:"id"`
	ImageSetID string    `db:"image_set_id"`
	RunID      string    `db:"run_id"`
	Model      string    `db:"model"`
	Payload    []byte    `db:"payload"`
	CreatedAt  time.Time `db:"created_at"`
}

// resultPayload is the JSONB body of a transform_results row.
type resultPayload struct {
	Attributes  entity.Attributes          `json:"attributes"`
	Occupations []string                   `json:"occupations"`
	Originals   []entity.OriginalImage     `json:"originals"`
	Records     []entity.TransformedRecord `json:"records"`
}

func (r *resultRepository) CreateResult(c context.Context, result entity.TransformResult) error {
	requestID := contextPkg.GetRequestID(c)

	payload, err := jsoniter.Marshal(resultPayload{
		Attributes:  result.Attributes,
		Occupations: result.Occupations,
		Originals:   result.Originals,
		Records:     result.Records,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode transform result payload")
		return err
	}

	argsKV := map[string]interface{}{
		"id":           result.ID,
		"image_set_id": result.ImageSetID,
		"run_id":       result.RunID,
		"model":        result.Model,
		"payload":      string(payload),
		"created_at":   result.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateResult, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateResult")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"image_set_id": result.ImageSetID,
			"error":        err.Error(),
		}).Error("Database error when creating transform result")
		return err
	}

	return nil
}

func (r *resultRepository) GetByImageSetID(c context.Context, imageSetID string) (entity.TransformResult, error) {
	requestID := contextPkg.GetRequestID(c)
	var row ResultDB

	argsKV := map[string]interface{}{
		"image_set_id": imageSetID,
	}

	query, args, err := sqlx.Named(queryGetResultByImageSetID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByImageSetID named query preparation err")
		return entity.TransformResult{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.TransformResult{}, transform.ErrResultNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByImageSetID execution err")
		return entity.TransformResult{}, err
	}

	return r.makeResult(row)
}

func (r *resultRepository) DeleteByImageSetID(c context.Context, imageSetID string) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"image_set_id": imageSetID,
	}

	query, args, err := sqlx.Named(queryDeleteResultByImageSetID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for DeleteByImageSetID")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"image_set_id": imageSetID,
			"error":        err.Error(),
		}).Error("Database error when deleting transform result")
		return err
	}

	return nil
}

func (r *resultRepository) makeResult(row ResultDB) (entity.TransformResult, error) {
	var payload resultPayload
	if err := jsoniter.Unmarshal(row.Payload, &payload); err != nil {
		return entity.TransformResult{}, err
	}

	return entity.TransformResult{
		ID:          row.ID,
		ImageSetID:  row.ImageSetID,
		RunID:       row.RunID,
		Model:       row.Model,
		Attributes:  payload.Attributes,
		Occupations: payload.Occupations,
		Originals:   payload.Originals,
		Records:     payload.Records,
		CreatedAt:   row.CreatedAt,
	}, nil
}
