package transformService

import (
	"fmt"
	"sync"
	"time"

	"BiasLens/internal/entity"
	"BiasLens/pkg/imagemodel"
)

type transformJob struct {
	occupation string
	index      int
	image      entity.OriginalImage
}

// run owns the mutable state of one transformation run. Every transition
// publishes a deep-copied snapshot to the subscribers.
type run struct {
	mu sync.Mutex

	id        string
	imageSet  entity.ImageSet
	model     imagemodel.Info
	queue     []transformJob
	snapshot  entity.RunSnapshot
	subs      map[int]chan entity.RunSnapshot
	nextSubID int
	now       func() time.Time
}

// newRun builds the Init state: placeholders in occupation-major, image-minor order.
func newRun(id string, set entity.ImageSet, model imagemodel.Info, occupations []string, now func() time.Time) *run {
	created := now()
	records := make([]entity.TransformedRecord, 0, len(occupations)*len(set.Images))
	queue := make([]transformJob, 0, len(occupations)*len(set.Images))
	progress := make(entity.ProgressMap, len(occupations))

	for _, occ := range occupations {
		progress[occ] = 0
		for i, img := range set.Images {
			records = append(records, entity.TransformedRecord{
				Occupation: occ,
				Original:   img.URL,
				IsLoading:  true,
				Key:        fmt.Sprintf("loading-%s-%d", occ, i),
			})
			queue = append(queue, transformJob{occupation: occ, index: i, image: img})
		}
	}

	return &run{
		id:       id,
		imageSet: set,
		model:    model,
		queue:    queue,
		snapshot: entity.RunSnapshot{
			ID:          id,
			ImageSetID:  set.ID,
			Model:       string(model.Name),
			Occupations: append([]string(nil), occupations...),
			State:       entity.RunInit,
			Total:       len(records),
			Progress:    progress,
			Records:     records,
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		subs: make(map[int]chan entity.RunSnapshot),
		now:  now,
	}
}

func (r *run) begin() entity.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.State = entity.RunRunning
	r.snapshot.IsGenerating = true
	return r.publishLocked()
}

// next pops the head of the job queue.
func (r *run) next() (transformJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snapshot.State != entity.RunRunning || len(r.queue) == 0 {
		return transformJob{}, false
	}
	job := r.queue[0]
	r.queue = r.queue[1:]
	return job, true
}

// resolve replaces the loading record of job with its transformed image.
func (r *run) resolve(job transformJob, transformed string) entity.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snapshot.State != entity.RunRunning {
		return r.copyLocked()
	}

	for i, rec := range r.snapshot.Records {
		if rec.Occupation == job.occupation && rec.Original == job.image.URL && rec.IsLoading {
			r.snapshot.Records[i] = entity.TransformedRecord{
				Occupation:  job.occupation,
				Original:    job.image.URL,
				Transformed: transformed,
				Key:         fmt.Sprintf("final-%s-%d", job.occupation, job.index),
			}
			break
		}
	}

	if r.snapshot.Progress[job.occupation] < len(r.imageSet.Images) {
		r.snapshot.Progress[job.occupation]++
	}
	return r.publishLocked()
}

// abort marks every record of every occupation as failed and halts the run.
func (r *run) abort(message string) entity.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]entity.TransformedRecord, 0, len(r.snapshot.Records))
	for _, occ := range r.snapshot.Occupations {
		for i, img := range r.imageSet.Images {
			records = append(records, entity.TransformedRecord{
				Occupation: occ,
				Original:   img.URL,
				Failed:     true,
				Key:        fmt.Sprintf("failed-%s-%d", occ, i),
			})
		}
		r.snapshot.Progress[occ] = len(r.imageSet.Images)
	}

	r.queue = nil
	r.snapshot.Records = records
	r.snapshot.Error = message
	return r.finishLocked(entity.RunFailed)
}

// fail halts the run without touching the records.
func (r *run) fail(message string) entity.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queue = nil
	r.snapshot.Error = message
	return r.finishLocked(entity.RunFailed)
}

func (r *run) complete() entity.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.finishLocked(entity.RunCompleted)
}

// result builds the committable outcome of the run.
func (r *run) result(id string, createdAt time.Time) entity.TransformResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.copyLocked()
	return entity.TransformResult{
		ID:          id,
		ImageSetID:  r.imageSet.ID,
		RunID:       r.id,
		Model:       snap.Model,
		Attributes:  r.imageSet.Attributes,
		Occupations: snap.Occupations,
		Originals:   append([]entity.OriginalImage(nil), r.imageSet.Images...),
		Records:     snap.Records,
		CreatedAt:   createdAt,
	}
}

func (r *run) Snapshot() entity.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.copyLocked()
}

// Subscribe returns a channel that receives the current snapshot and every
// later one. The channel is closed once the run reaches a terminal state.
// Slow readers only miss intermediate snapshots.
func (r *run) Subscribe() (<-chan entity.RunSnapshot, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan entity.RunSnapshot, 1)
	ch <- r.copyLocked()
	if r.snapshot.State.Terminal() {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSubID
	r.nextSubID++
	r.subs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
}

func (r *run) finishLocked(state entity.RunState) entity.RunSnapshot {
	completed := r.now()
	r.snapshot.State = state
	r.snapshot.IsGenerating = false
	r.snapshot.CompletedAt = &completed

	snap := r.publishLocked()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	return snap
}

func (r *run) publishLocked() entity.RunSnapshot {
	r.snapshot.UpdatedAt = r.now()
	snap := r.copyLocked()
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- r.copyLocked()
	}
	return snap
}

func (r *run) copyLocked() entity.RunSnapshot {
	snap := r.snapshot
	snap.Occupations = append([]string(nil), r.snapshot.Occupations...)
	snap.Records = append([]entity.TransformedRecord(nil), r.snapshot.Records...)
	snap.Progress = make(entity.ProgressMap, len(r.snapshot.Progress))
	for k, v := range r.snapshot.Progress {
		snap.Progress[k] = v
	}
	if r.snapshot.CompletedAt != nil {
		completed := *r.snapshot.CompletedAt
		snap.CompletedAt = &completed
	}
	return snap
}
