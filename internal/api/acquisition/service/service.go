package acquisitionService

import (
	"context"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/acquisition"
	acquisitionRepository "BiasLens/internal/api/acquisition/repository"
	"BiasLens/internal/entity"
	"BiasLens/pkg/s3"
	"BiasLens/pkg/utils"
)

type IAcquisitionService interface {
	RandomImages(ctx context.Context, req acquisition.RandomImagesRequest) (entity.ImageSet, error)
	UploadImages(ctx context.Context, req acquisition.UploadImagesRequest) (entity.ImageSet, error)
	RefreshImage(ctx context.Context, imageSetID string, name string) (entity.ImageSet, error)
	RemoveImage(ctx context.Context, imageSetID string, name string) (entity.ImageSet, error)
	GetImageSet(ctx context.Context, imageSetID string) (entity.ImageSet, error)
}

// ResultDiscarder drops the committed transformation result of an image set whose images changed.
type ResultDiscarder interface {
	DiscardResult(ctx context.Context, imageSetID string) error
}

type acquisitionService struct {
	log        *logrus.Logger
	repository acquisitionRepository.Repository
	store      s3.ItfS3
	faces      FaceChecker
	discarder  ResultDiscarder
	utils      utils.IUtils
	shuffle    func(n int, swap func(i, j int))
	intn       func(n int) int
}

func NewAcquisitionService(
	log *logrus.Logger,
	repository acquisitionRepository.Repository,
	store s3.ItfS3,
	faces FaceChecker,
	discarder ResultDiscarder,
	utils utils.IUtils,
) IAcquisitionService {
	return &acquisitionService{
		log:        log,
		repository: repository,
		store:      store,
		faces:      faces,
		discarder:  discarder,
		utils:      utils,
		shuffle:    rand.Shuffle,
		intn:       rand.IntN,
	}
}
