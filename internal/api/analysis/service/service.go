package analysisService

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	analysisRepository "BiasLens/internal/api/analysis/repository"
	"BiasLens/internal/entity"
	"BiasLens/pkg/biasservice"
	"BiasLens/pkg/utils"
)

type IAnalysisService interface {
	CreateAnalysis(ctx context.Context, imageSetID string) (entity.Analysis, error)
	GetAnalysis(ctx context.Context, id string) (entity.Analysis, error)
	ListAnalyses(ctx context.Context, imageSetID string) ([]entity.Analysis, error)
	GetResults(ctx context.Context, id string) (entity.GroupedResult, error)
	GetFailures(ctx context.Context, id string) ([]entity.FailedItem, error)
	GetStats(ctx context.Context, id string) (entity.BiasStats, error)
	Export(ctx context.Context, id string) ([]byte, bool, error)
}

// ResultReader loads the committed transformation result of an image set.
type ResultReader interface {
	GetResult(ctx context.Context, imageSetID string) (entity.TransformResult, error)
}

type analysisService struct {
	log        *logrus.Logger
	repository analysisRepository.Repository
	results    ResultReader
	bias       biasservice.IBiasService
	utils      utils.IUtils
	now        func() time.Time
}

func NewAnalysisService(
	log *logrus.Logger,
	repository analysisRepository.Repository,
	results ResultReader,
	bias biasservice.IBiasService,
	utils utils.IUtils,
) IAnalysisService {
	return &analysisService{
		log:        log,
		repository: repository,
		results:    results,
		bias:       bias,
		utils:      utils,
		now:        time.Now,
	}
}
