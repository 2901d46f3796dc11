package analysisRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/analysis"
	"BiasLens/internal/entity"
	contextPkg "BiasLens/pkg/context"
)

type AnalysisDB struct {
	ID         string    `db:"id"`
	ImageSetID string    `db:"image_set_id"`
	ResultID   string    `db:"result_id"`
	JobID      string    `db:"job_id"`
	Payload    []byte    `db:"payload"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *analysisRepository) CreateAnalysis(c context.Context, a entity.Analysis) error {
	requestID := contextPkg.GetRequestID(c)

	payload, err := jsoniter.Marshal(a.Payload)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode analysis payload")
		return err
	}

	argsKV := map[string]interface{}{
		"id":           a.ID,
		"image_set_id": a.ImageSetID,
		"result_id":    a.ResultID,
		"job_id":       a.JobID,
		"payload":      string(payload),
		"created_at":   a.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateAnalysis, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateAnalysis")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating analysis")
		return err
	}

	return nil
}

func (r *analysisRepository) GetByID(c context.Context, id string) (entity.Analysis, error) {
	requestID := contextPkg.GetRequestID(c)
	var row AnalysisDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetAnalysisByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.Analysis{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id":  requestID,
				"analysis_id": id,
			}).Warn("GetByID no rows found")
			return entity.Analysis{}, analysis.ErrAnalysisNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.Analysis{}, err
	}

	return r.makeAnalysis(c, row)
}

func (r *analysisRepository) ListByImageSetID(c context.Context, imageSetID string) ([]entity.Analysis, error) {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"image_set_id": imageSetID,
	}

	query, args, err := sqlx.Named(queryListAnalysesByImageSetID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByImageSetID named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByImageSetID execution err")
		return nil, err
	}
	defer rows.Close()

	var analyses []entity.Analysis
	for rows.Next() {
		var row AnalysisDB
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		a, err := r.makeAnalysis(c, row)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}

func (r *analysisRepository) makeAnalysis(c context.Context, row AnalysisDB) (entity.Analysis, error) {
	var payload entity.AnalysisResult
	if err := jsoniter.Unmarshal(row.Payload, &payload); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":  contextPkg.GetRequestID(c),
			"analysis_id": row.ID,
			"error":       err.Error(),
		}).Error("Failed to decode stored analysis payload")
		return entity.Analysis{}, analysis.ErrCorruptAnalysis
	}

	return entity.Analysis{
		ID:         row.ID,
		ImageSetID: row.ImageSetID,
		ResultID:   row.ResultID,
		JobID:      row.JobID,
		Payload:    payload,
		CreatedAt:  row.CreatedAt,
	}, nil
}
