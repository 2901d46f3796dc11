package acquisitionService

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/acquisition"
	"BiasLens/internal/entity"
	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/utils"
)

var whitespace = regexp.MustCompile(`\s+`)

// FolderFor maps demographic attributes to the image-store folder holding their originals.
func FolderFor(attrs entity.Attributes) string {
	return whitespace.ReplaceAllString(fmt.Sprintf("%s_%s_%s", attrs.Gender, attrs.Age, attrs.Race), "-")
}

func folderPrefix(folder string) string {
	return "originals/" + folder + "/"
}

func (s *acquisitionService) RandomImages(ctx context.Context, req acquisition.RandomImagesRequest) (entity.ImageSet, error) {
	requestID := contextPkg.GetRequestID(ctx)
	attrs := entity.Attributes{Gender: req.Gender, Age: req.Age, Race: req.Race}
	folder := FolderFor(attrs)

	keys, err := s.listImageKeys(ctx, folder)
	if err != nil {
		return entity.ImageSet{}, err
	}

	if len(keys) == 0 {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"folder":     folder,
		}).Warn("No images found in image store folder")
		return entity.ImageSet{}, acquisition.ErrNoImagesFound
	}

	s.shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	if len(keys) > req.Num {
		keys = keys[:req.Num]
	}

	images := make([]entity.OriginalImage, 0, len(keys))
	for _, key := range keys {
		img, err := s.presign(ctx, key)
		if err != nil {
			return entity.ImageSet{}, err
		}
		images = append(images, img)
	}

	set, err := s.newImageSet(entity.ModeDefault, attrs, images)
	if err != nil {
		return entity.ImageSet{}, err
	}
	set.Folder = folder

	if err := s.save(ctx, &set); err != nil {
		return entity.ImageSet{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"image_set_id": set.ID,
		"folder":       folder,
		"count":        len(set.Images),
	}).Info("Created generated image set")

	return set, nil
}

func (s *acquisitionService) UploadImages(ctx context.Context, req acquisition.UploadImagesRequest) (entity.ImageSet, error) {
	requestID := contextPkg.GetRequestID(ctx)

	uploads := make([]UploadedImage, 0, len(req.Images))
	for i, img := range req.Images {
		data, err := s.utils.DecodeImageDataURL(img.Base64)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"index":      i,
				"error":      err.Error(),
			}).Warn("Rejected uploaded image")
			return entity.ImageSet{}, acquisition.ErrInvalidImageData
		}
		uploads = append(uploads, UploadedImage{MimeType: mimeTypeOf(img.Base64), Data: data})
	}

	var stored []string
	for i := range uploads {
		key, location, err := s.store.UploadPNG(ctx, uploads[i].Data)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to upload image")
			s.cleanup(ctx, stored)
			return entity.ImageSet{}, acquisition.ErrImageStoreFailure
		}
		stored = append(stored, key)
		uploads[i].Ref = entity.ImageRef{Name: path.Base(key), URL: location}
	}

	faces, err := s.faces.CheckFaces(ctx, uploads)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Face check failed")
		s.cleanup(ctx, stored)
		return entity.ImageSet{}, acquisition.ErrFaceCheckFailed
	}

	images := make([]entity.OriginalImage, len(uploads))
	for i, up := range uploads {
		hasFace, ok := faces[up.Ref.Name]
		if !ok {
			s.cleanup(ctx, stored)
			return entity.ImageSet{}, acquisition.ErrFaceCheckIncomplete
		}
		images[i] = entity.OriginalImage{
			Name:    up.Ref.Name,
			URL:     up.Ref.URL,
			Key:     stored[i],
			HasFace: &hasFace,
		}
	}

	set, err := s.newImageSet(entity.ModeCustom, entity.UndefinedAttributes(), images)
	if err != nil {
		return entity.ImageSet{}, err
	}

	if err := s.save(ctx, &set); err != nil {
		return entity.ImageSet{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"image_set_id": set.ID,
		"count":        len(set.Images),
		"validated":    set.Validated,
	}).Info("Created uploaded image set")

	return set, nil
}

func (s *acquisitionService) RefreshImage(ctx context.Context, imageSetID string, name string) (entity.ImageSet, error) {
	requestID := contextPkg.GetRequestID(ctx)

	set, err := s.repository.GetImageSet(ctx, imageSetID)
	if err != nil {
		return entity.ImageSet{}, err
	}

	if set.Mode != entity.ModeDefault {
		return entity.ImageSet{}, acquisition.ErrNotDefaultSet
	}

	idx, ok := set.ImageByName(name)
	if !ok {
		return entity.ImageSet{}, acquisition.ErrImageNotInSet
	}

	folder := set.Folder
	if folder == "" {
		folder = FolderFor(set.Attributes)
	}

	keys, err := s.listImageKeys(ctx, folder)
	if err != nil {
		return entity.ImageSet{}, err
	}

	current := make(map[string]struct{}, len(set.Images))
	for _, img := range set.Images {
		current[img.Name] = struct{}{}
	}

	available := keys[:0]
	for _, key := range keys {
		if _, taken := current[path.Base(key)]; !taken {
			available = append(available, key)
		}
	}

	if len(available) == 0 {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"image_set_id": imageSetID,
			"folder":       folder,
		}).Warn("No replacement images available")
		return entity.ImageSet{}, acquisition.ErrNoReplacementImage
	}

	replacement, err := s.presign(ctx, available[s.intn(len(available))])
	if err != nil {
		return entity.ImageSet{}, err
	}

	if err := s.discarder.DiscardResult(ctx, set.ID); err != nil {
		return entity.ImageSet{}, err
	}

	set.Images[idx] = replacement
	if err := s.save(ctx, &set); err != nil {
		return entity.ImageSet{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"image_set_id": set.ID,
		"replaced":     name,
		"replacement":  replacement.Name,
	}).Info("Refreshed image")

	return set, nil
}

func (s *acquisitionService) RemoveImage(ctx context.Context, imageSetID string, name string) (entity.ImageSet, error) {
	set, err := s.repository.GetImageSet(ctx, imageSetID)
	if err != nil {
		return entity.ImageSet{}, err
	}

	if set.Mode != entity.ModeCustom {
		return entity.ImageSet{}, acquisition.ErrNotCustomSet
	}

	idx, ok := set.ImageByName(name)
	if !ok {
		return entity.ImageSet{}, acquisition.ErrImageNotInSet
	}

	if err := s.discarder.DiscardResult(ctx, set.ID); err != nil {
		return entity.ImageSet{}, err
	}

	removed := set.Images[idx]
	set.Images = append(set.Images[:idx], set.Images[idx+1:]...)

	if err := s.save(ctx, &set); err != nil {
		return entity.ImageSet{}, err
	}

	if removed.Key != "" {
		s.cleanup(ctx, []string{removed.Key})
	}

	return set, nil
}

func (s *acquisitionService) GetImageSet(ctx context.Context, imageSetID string) (entity.ImageSet, error) {
	return s.repository.GetImageSet(ctx, imageSetID)
}

func (s *acquisitionService) listImageKeys(ctx context.Context, folder string) ([]string, error) {
	keys, err := s.store.ListKeys(ctx, folderPrefix(folder))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"folder":     folder,
			"error":      err.Error(),
		}).Error("Failed to list image store folder")
		return nil, acquisition.ErrImageStoreFailure
	}

	images := make([]string, 0, len(keys))
	for _, key := range keys {
		if utils.IsImageKey(key) {
			images = append(images, key)
		}
	}
	return images, nil
}

func (s *acquisitionService) presign(ctx context.Context, key string) (entity.OriginalImage, error) {
	url, err := s.store.PresignUrl(key)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"key":        key,
			"error":      err.Error(),
		}).Error("Failed to presign image")
		return entity.OriginalImage{}, acquisition.ErrImageStoreFailure
	}
	return entity.OriginalImage{Name: path.Base(key), URL: url, Key: key}, nil
}

func (s *acquisitionService) newImageSet(mode entity.ImageSetMode, attrs entity.Attributes, images []entity.OriginalImage) (entity.ImageSet, error) {
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		if _, dup := seen[img.URL]; dup {
			return entity.ImageSet{}, acquisition.ErrDuplicateImageURL
		}
		seen[img.URL] = struct{}{}
	}

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.ImageSet{}, err
	}

	return entity.ImageSet{
		ID:         id,
		Mode:       mode,
		Attributes: attrs,
		Images:     images,
		CreatedAt:  now,
	}, nil
}

func (s *acquisitionService) save(ctx context.Context, set *entity.ImageSet) error {
	set.Revalidate()
	set.UpdatedAt = time.Now()

	if err := s.repository.SaveImageSet(ctx, *set); err != nil {
		return acquisition.ErrSaveImageSet
	}
	return nil
}

func (s *acquisitionService) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.DeleteFile(ctx, key); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"key":        key,
				"error":      err.Error(),
			}).Warn("Failed to delete uploaded image")
		}
	}
}

func mimeTypeOf(dataURL string) string {
	header, _, _ := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ",")
	mime, _, _ := strings.Cut(header, ";")
	return mime
}
