package analysisRepository

const (
	queryCreateAnalysis = `
INSERT INTO analyses (id, image_set_id, result_id, job_id, payload, created_at)
VALUES (:id, :image_set_id, :result_id, :job_id, :payload, :created_at)`

	queryGetAnalysisByID = `
SELECT id, image_set_id, result_id, job_id, payload, created_at
FROM analyses
    WHERE id = :id`

	queryListAnalysesByImageSetID = `
SELECT id, image_set_id, result_id, job_id, payload, created_at
FROM analyses
    WHERE image_set_id = :image_set_id
ORDER BY created_at DESC`
)
