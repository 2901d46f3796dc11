package transformService

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BiasLens/internal/api/acquisition"
	"BiasLens/internal/api/transform"
	transformRepository "BiasLens/internal/api/transform/repository"
	"BiasLens/internal/entity"
	"BiasLens/pkg/imagemodel"
	"BiasLens/pkg/utils"
)

type memoryStore struct {
	mu        sync.Mutex
	results   map[string]entity.TransformResult
	snapshots []entity.RunSnapshot
	deletes   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{results: make(map[string]entity.TransformResult)}
}

func (m *memoryStore) NewClient(bool) (transformRepository.Client, error) {
	return transformRepository.Client{
		Results:  &memoryResults{store: m},
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func (m *memoryStore) SaveSnapshot(_ context.Context, snapshot entity.RunSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *memoryStore) GetSnapshot(_ context.Context, runID string) (entity.RunSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].ID == runID {
			return m.snapshots[i], nil
		}
	}
	return entity.RunSnapshot{}, transform.ErrRunNotFound
}

func (m *memoryStore) persisted() []entity.RunSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.RunSnapshot(nil), m.snapshots...)
}

type memoryResults struct {
	store *memoryStore
}

func (r *memoryResults) CreateResult(_ context.Context, result entity.TransformResult) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.results[result.ImageSetID] = result
	return nil
}

func (r *memoryResults) GetByImageSetID(_ context.Context, imageSetID string) (entity.TransformResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result, ok := r.store.results[imageSetID]
	if !ok {
		return entity.TransformResult{}, transform.ErrResultNotFound
	}
	return result, nil
}

func (r *memoryResults) DeleteByImageSetID(_ context.Context, imageSetID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.deletes++
	delete(r.store.results, imageSetID)
	return nil
}

type imageSets map[string]entity.ImageSet

func (s imageSets) GetImageSet(_ context.Context, id string) (entity.ImageSet, error) {
	set, ok := s[id]
	if !ok {
		return entity.ImageSet{}, acquisition.ErrImageSetNotFound
	}
	return set, nil
}

type call struct {
	model      imagemodel.Model
	occupation string
	image      string
}

type fakeTransformer struct {
	mu    sync.Mutex
	calls []call
	fn    func(n int, occupation string, image entity.ImageRef) (string, error)
}

func (f *fakeTransformer) Transform(_ context.Context, model imagemodel.Info, occupation string, image entity.ImageRef) (string, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, call{model: model.Name, occupation: occupation, image: image.Name})
	f.mu.Unlock()
	return f.fn(n, occupation, image)
}

func (f *fakeTransformer) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func validatedSet(id string, n int) entity.ImageSet {
	images := make([]entity.OriginalImage, 0, n)
	for i := 0; i < n; i++ {
		name := string(rune('a'+i)) + "1.jpg"
		images = append(images, entity.OriginalImage{Name: name, URL: "https://cdn/" + name})
	}
	return entity.ImageSet{
		ID:         id,
		Mode:       entity.ModeDefault,
		Attributes: entity.Attributes{Gender: "female", Age: "young", Race: "asian"},
		Images:     images,
		Validated:  true,
	}
}

func newTestService(store *memoryStore, sets imageSets, transformer *fakeTransformer) *transformService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewTransformService(log, store, sets, transformer, utils.New()).(*transformService)
}

func TestStartRunCompletes(t *testing.T) {
	store := newMemoryStore()
	transformer := &fakeTransformer{fn: func(n int, occupation string, image entity.ImageRef) (string, error) {
		return "https://out/" + occupation + "/" + image.Name, nil
	}}
	svc := newTestService(store, imageSets{"set-1": validatedSet("set-1", 2)}, transformer)

	started, err := svc.StartRun(context.Background(), transform.StartRunRequest{
		ImageSetID:  "set-1",
		Model:       "InstructPix2Pix",
		Occupations: []string{"Doctor", "Nurse"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RunRunning, started.State)
	assert.True(t, started.IsGenerating)
	assert.Equal(t, 4, started.Total)
	assert.Equal(t, "loading-Doctor-0", started.Records[0].Key)
	assert.Equal(t, "loading-Nurse-1", started.Records[3].Key)

	svc.Wait()

	assert.Equal(t, []call{
		{imagemodel.InstructPix2Pix, "Doctor", "a1.jpg"},
		{imagemodel.InstructPix2Pix, "Doctor", "b1.jpg"},
		{imagemodel.InstructPix2Pix, "Nurse", "a1.jpg"},
		{imagemodel.InstructPix2Pix, "Nurse", "b1.jpg"},
	}, transformer.recorded())

	final, err := svc.GetRun(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunCompleted, final.State)
	assert.False(t, final.IsGenerating)
	assert.NotNil(t, final.CompletedAt)
	assert.Equal(t, entity.ProgressMap{"Doctor": 2, "Nurse": 2}, final.Progress)
	require.Len(t, final.Records, 4)
	assert.Equal(t, entity.TransformedRecord{
		Occupation:  "Nurse",
		Original:    "https://cdn/b1.jpg",
		Transformed: "https://out/Nurse/b1.jpg",
		Key:         "final-Nurse-1",
	}, final.Records[3])

	result, err := svc.GetResult(context.Background(), "set-1")
	require.NoError(t, err)
	assert.Equal(t, started.ID, result.RunID)
	assert.Equal(t, "InstructPix2Pix", result.Model)
	assert.Equal(t, "young", result.Attributes.Age)
	assert.False(t, result.Incomplete())
}

func TestStartRunAbortsOnFirstFailure(t *testing.T) {
	store := newMemoryStore()
	transformer := &fakeTransformer{fn: func(n int, occupation string, image entity.ImageRef) (string, error) {
		if n == 2 {
			return "", errors.New("model returned 503")
		}
		return "https://out/" + image.Name, nil
	}}
	svc := newTestService(store, imageSets{"set-1": validatedSet("set-1", 2)}, transformer)

	started, err := svc.StartRun(context.Background(), transform.StartRunRequest{
		ImageSetID:  "set-1",
		Model:       "MagicBrush",
		Occupations: []string{"Doctor", "Nurse", "Chef"},
	})
	require.NoError(t, err)
	svc.Wait()

	assert.Len(t, transformer.recorded(), 3)

	final, err := svc.GetRun(context.Background(), started.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunFailed, final.State)
	assert.False(t, final.IsGenerating)
	assert.Equal(t, transform.HaltMessage, final.Error)
	assert.Equal(t, entity.ProgressMap{"Doctor": 2, "Nurse": 2, "Chef": 2}, final.Progress)
	require.Len(t, final.Records, 6)
	for _, rec := range final.Records {
		assert.True(t, rec.Failed)
		assert.False(t, rec.IsLoading)
		assert.Empty(t, rec.Transformed)
	}
	assert.Equal(t, "failed-Chef-1", final.Records[5].Key)
	assert.Equal(t, "https://cdn/b1.jpg", final.Records[5].Original)

	_, err = svc.GetResult(context.Background(), "set-1")
	assert.ErrorIs(t, err, transform.ErrResultNotFound)
}

func TestProgressIsMonotonic(t *testing.T) {
	store := newMemoryStore()
	transformer := &fakeTransformer{fn: func(int, string, entity.ImageRef) (string, error) {
		return "https://out/x.png", nil
	}}
	svc := newTestService(store, imageSets{"set-1": validatedSet("set-1", 3)}, transformer)

	_, err := svc.StartRun(context.Background(), transform.StartRunRequest{
		ImageSetID:  "set-1",
		Model:       "Img2Img",
		Occupations: []string{"Pilot", "Judge"},
	})
	require.NoError(t, err)
	svc.Wait()

	last := entity.ProgressMap{}
	for _, snap := range store.persisted() {
		for occ, p := range snap.Progress {
			assert.GreaterOrEqual(t, p, last[occ])
			assert.LessOrEqual(t, p, 3)
			last[occ] = p
		}
	}
	assert.Equal(t, entity.ProgressMap{"Pilot": 3, "Judge": 3}, last)
}

func TestStartRunValidation(t *testing.T) {
	notValidated := validatedSet("raw", 2)
	notValidated.Validated = false
	sets := imageSets{
		"set-1": validatedSet("set-1", 2),
		"raw":   notValidated,
		"empty": {ID: "empty", Validated: true},
	}

	tests := []struct {
		name string
		req  transform.StartRunRequest
		err  error
	}{
		{"missing model", transform.StartRunRequest{ImageSetID: "set-1", Occupations: []string{"Doctor"}}, transform.ErrModelRequired},
		{"unknown model", transform.StartRunRequest{ImageSetID: "set-1", Model: "DallE", Occupations: []string{"Doctor"}}, transform.ErrUnknownModel},
		{"no occupations", transform.StartRunRequest{ImageSetID: "set-1", Model: "Img2Img"}, transform.ErrNoOccupations},
		{"too many occupations", transform.StartRunRequest{ImageSetID: "set-1", Model: "Img2Img", Occupations: []string{"Doctor", "Nurse", "Chef", "Pilot"}}, transform.ErrTooManyOccupations},
		{"duplicate occupation", transform.StartRunRequest{ImageSetID: "set-1", Model: "Img2Img", Occupations: []string{"Doctor", "Doctor"}}, transform.ErrDuplicateOccupation},
		{"unknown occupation", transform.StartRunRequest{ImageSetID: "set-1", Model: "Img2Img", Occupations: []string{"Astronaut"}}, transform.ErrUnknownOccupation},
		{"unknown image set", transform.StartRunRequest{ImageSetID: "nope", Model: "Img2Img", Occupations: []string{"Doctor"}}, acquisition.ErrImageSetNotFound},
		{"unvalidated image set", transform.StartRunRequest{ImageSetID: "raw", Model: "Img2Img", Occupations: []string{"Doctor"}}, transform.ErrImageSetNotValidated},
		{"empty image set", transform.StartRunRequest{ImageSetID: "empty", Model: "Img2Img", Occupations: []string{"Doctor"}}, transform.ErrEmptyImageSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			transformer := &fakeTransformer{fn: func(int, string, entity.ImageRef) (string, error) { return "x", nil }}
			svc := newTestService(store, sets, transformer)

			_, err := svc.StartRun(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.err)

			svc.Wait()
			assert.Empty(t, transformer.recorded())
			assert.Empty(t, store.persisted())
			assert.Zero(t, store.deletes)
		})
	}
}

func TestStartRunRequiresOverwriteConfirmation(t *testing.T) {
	store := newMemoryStore()
	store.results["set-1"] = entity.TransformResult{ID: "old", ImageSetID: "set-1", RunID: "old-run"}
	transformer := &fakeTransformer{fn: func(int, string, entity.ImageRef) (string, error) { return "https://out/x.png", nil }}
	svc := newTestService(store, imageSets{"set-1": validatedSet("set-1", 1)}, transformer)

	req := transform.StartRunRequest{ImageSetID: "set-1", Model: "Img2Img", Occupations: []string{"Doctor"}}
	_, err := svc.StartRun(context.Background(), req)
	assert.ErrorIs(t, err, transform.ErrOverwriteNotConfirmed)
	assert.Equal(t, "old", store.results["set-1"].ID)

	req.ConfirmOverwrite = true
	started, err := svc.StartRun(context.Background(), req)
	require.NoError(t, err)
	svc.Wait()

	result, err := svc.GetResult(context.Background(), "set-1")
	require.NoError(t, err)
	assert.Equal(t, started.ID, result.RunID)
}

func TestConcurrentRunRejected(t *testing.T) {
	store := newMemoryStore()
	release := make(chan struct{})
	transformer := &fakeTransformer{fn: func(int, string, entity.ImageRef) (string, error) {
		<-release
		return "https://out/x.png", nil
	}}
	svc := newTestService(store, imageSets{"set-1": validatedSet("set-1", 1)}, transformer)

	req := transform.StartRunRequest{ImageSetID: "set-1", Model: "Img2Img", Occupations: []string{"Doctor"}}
	_, err := svc.StartRun(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.StartRun(context.Background(), req)
	assert.ErrorIs(t, err, transform.ErrRunInProgress)
	assert.ErrorIs(t, svc.DiscardResult(context.Background(), "set-1"), transform.ErrRunInProgress)

	close(release)
	svc.Wait()

	assert.NoError(t, svc.DiscardResult(context.Background(), "set-1"))
	_, err = svc.GetResult(context.Background(), "set-1")
	assert.ErrorIs(t, err, transform.ErrResultNotFound)
}

func TestSubscribeReceivesTerminalSnapshot(t *testing.T) {
	store := newMemoryStore()
	release := make(chan struct{})
	transformer := &fakeTransformer{fn: func(int, string, entity.ImageRef) (string, error) {
		<-release
		return "https://out/x.png", nil
	}}
	svc := newTestService(store, imageSets{"set-1": validatedSet("set-1", 2)}, transformer)

	started, err := svc.StartRun(context.Background(), transform.StartRunRequest{
		ImageSetID:  "set-1",
		Model:       "Img2Img",
		Occupations: []string{"Doctor"},
	})
	require.NoError(t, err)

	updates, cancel, err := svc.Subscribe(context.Background(), started.ID)
	require.NoError(t, err)
	defer cancel()

	close(release)

	var last entity.RunSnapshot
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case snap, ok := <-updates:
			if !ok {
				done = true
				break
			}
			last = snap
		case <-timeout:
			t.Fatal("subscription never closed")
		}
	}
	svc.Wait()

	assert.Equal(t, entity.RunCompleted, last.State)
	assert.Equal(t, 2, last.Progress["Doctor"])

	replay, _, err := svc.Subscribe(context.Background(), started.ID)
	require.NoError(t, err)
	snap, ok := <-replay
	require.True(t, ok)
	assert.Equal(t, entity.RunCompleted, snap.State)
	_, ok = <-replay
	assert.False(t, ok)
}

func TestGetRunUnknown(t *testing.T) {
	svc := newTestService(newMemoryStore(), imageSets{}, &fakeTransformer{})
	_, err := svc.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, transform.ErrRunNotFound)
}

func TestOptions(t *testing.T) {
	svc := newTestService(newMemoryStore(), imageSets{}, &fakeTransformer{})
	opts := svc.Options()
	assert.Len(t, opts.Models, 3)
	assert.Len(t, opts.Occupations, 25)
	assert.Equal(t, 3, opts.MaxOccupations)
}
