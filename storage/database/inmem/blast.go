package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/joyinliving/academy/core"
	"github.com/joyinliving/academy/core/blast"
)

type blastRepository struct {
	db *blastTable
}

var _ blast.Repository = (*blastRepository)(nil) // interface compliance check

func NewBlastRepository(db *DB) *blastRepository {
	return &blastRepository{db: db.blast}
}

func (repo *blastRepository) CreateBlast(ctx context.Context, b blast.Blast) (blast.Blast, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	b.ID = uuid.New().String()
	repo.db.table[b.ID] = &b
	return b, nil
}

func (repo *blastRepository) GetBlastByID(ctx context.Context, id string) (blast.Blast, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if b, ok := repo.db.table[id]; ok {
		return *b, nil
	}
	return blast.Blast{}, blast.ErrNotFound
}

func (repo *blastRepository) FilterBlasts(ctx context.Context, filter *blast.QueryFilter, ordering []core.DBOrdering) ([]blast.Blast, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	blasts := make([]blast.Blast, 0, len(repo.db.table))
	for _, b := range repo.db.table {
		if filter != nil {
			if filter.Status != "" && b.Status != filter.Status {
				continue
			}
			if filter.TargetType != "" && b.TargetType != filter.TargetType {
				continue
			}
		}
		blasts = append(blasts, *b)
	}
	sort.Slice(blasts, func(i, j int) bool { return blasts[i].CreatedAt.After(blasts[j].CreatedAt) })
	return blasts, nil
}
