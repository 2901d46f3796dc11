package transformService

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/transform"
	transformRepository "BiasLens/internal/api/transform/repository"
	"BiasLens/internal/entity"
	"BiasLens/pkg/imagemodel"
	"BiasLens/pkg/utils"
)

type ITransformService interface {
	StartRun(ctx context.Context, req transform.StartRunRequest) (entity.RunSnapshot, error)
	GetRun(ctx context.Context, runID string) (entity.RunSnapshot, error)
	Subscribe(ctx context.Context, runID string) (<-chan entity.RunSnapshot, func(), error)
	GetResult(ctx context.Context, imageSetID string) (entity.TransformResult, error)
	DiscardResult(ctx context.Context, imageSetID string) error
	Options() transform.OptionsResponse
	Wait()
}

// ImageSetReader loads the image set a run transforms.
type ImageSetReader interface {
	GetImageSet(ctx context.Context, id string) (entity.ImageSet, error)
}

type transformService struct {
	log         *logrus.Logger
	repository  transformRepository.Repository
	imageSets   ImageSetReader
	transformer imagemodel.ITransformer
	utils       utils.IUtils
	now         func() time.Time

	mu     sync.Mutex
	runs   map[string]*run
	active map[string]string
	wg     sync.WaitGroup
}

func NewTransformService(
	log *logrus.Logger,
	repository transformRepository.Repository,
	imageSets ImageSetReader,
	transformer imagemodel.ITransformer,
	utils utils.IUtils,
) ITransformService {
	return &transformService{
		log:         log,
		repository:  repository,
		imageSets:   imageSets,
		transformer: transformer,
		utils:       utils,
		now:         time.Now,
		runs:        make(map[string]*run),
		active:      make(map[string]string),
	}
}

func (s *transformService) Options() transform.OptionsResponse {
	return transform.OptionsResponse{
		Models:         imagemodel.Catalog(),
		Occupations:    append([]string(nil), transform.Occupations...),
		MaxOccupations: transform.MaxOccupations,
	}
}

// Wait blocks until every in-flight run has reached a terminal state.
func (s *transformService) Wait() {
	s.wg.Wait()
}
