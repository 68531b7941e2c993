package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/recording"
)

type recordingRepository struct {
	db      *recordingTable
	cohorts *cohortTable
}

var _ recording.Repository = (*recordingRepository)(nil) // interface compliance check

func NewRecordingRepository(db *DB) *recordingRepository {
	return &recordingRepository{db: db.recording, cohorts: db.cohort}
}

// cohortName is resolved on every read, never stored, so cohort renames
// show up immediately.
func (repo *recordingRepository) cohortName(id string) string {
	repo.cohorts.RLock()
	defer repo.cohorts.RUnlock()

	if c, ok := repo.cohorts.table[id]; ok {
		return c.Name
	}
	return ""
}

func (repo *recordingRepository) CreateRecording(ctx context.Context, rec recording.Recording) (recording.Recording, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.New().String()
	repo.db.table[rec.ID] = &rec
	out := rec
	out.CohortName = repo.cohortName(rec.CohortID)
	return out, nil
}

func (repo *recordingRepository) GetRecordingByID(ctx context.Context, id string) (recording.Recording, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		out := *rec
		out.CohortName = repo.cohortName(rec.CohortID)
		return out, nil
	}
	return recording.Recording{}, recording.ErrNotFound
}

func (repo *recordingRepository) FilterRecordings(ctx context.Context, filter *recording.QueryFilter, ordering []core.DBOrdering) ([]recording.Recording, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recordings := make([]recording.Recording, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		if filter != nil {
			if filter.CohortID != "" && rec.CohortID != filter.CohortID {
				continue
			}
			if filter.Category != "" && rec.Category != filter.Category {
				continue
			}
		}
		out := *rec
		out.CohortName = repo.cohortName(rec.CohortID)
		recordings = append(recordings, out)
	}
	sort.Slice(recordings, func(i, j int) bool { return recordings[i].RecordedAt.After(recordings[j].RecordedAt) })
	return recordings, nil
}

func (repo *recordingRepository) DeleteRecordingsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
