package transformRepository

const (
	queryCreateResult = `
INSERT INTO transform_results (id, image_set_id, run_id, model, payload, created_at)
VALUES (:id, :image_set_id, :run_id, :model, :payload, :created_at)`

	queryGetResultByImageSetID = `
SELECT id, image_set_id, run_id, model, payload, created_at
FROM transform_results
    WHERE image_set_id = :image_set_id`

	queryDeleteResultByImageSetID = `
DELETE FROM transform_results
    WHERE image_set_id = :image_set_id`
)
