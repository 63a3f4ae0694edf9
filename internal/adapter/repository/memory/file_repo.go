package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

// FileRepository implements usecase.FileRepository.
type FileRepository struct {
	store *Store
}

// NewFileRepository creates a new FileRepository.
func NewFileRepository(s *Store) *FileRepository {
	return &FileRepository{store: s}
}

// Create stores a generated file.
func (r *FileRepository) Create(_ context.Context, tx usecase.Transaction, file *domain.NACHAFile) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.hooks.BeforeFileCreate != nil {
		if err := s.hooks.BeforeFileCreate(file); err != nil {
			return err
		}
	}

	if _, ok := s.files[file.ID]; ok {
		return duplicate("file", file.ID)
	}
	if _, ok := t.files[file.ID]; ok {
		return duplicate("file", file.ID)
	}

	t.files[file.ID] = cloneFile(file)
	return nil
}

// GetByID returns a file including its content.
func (r *FileRepository) GetByID(_ context.Context, id string) (*domain.NACHAFile, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return cloneFile(f), nil
}

// List returns files newest first.
func (r *FileRepository) List(_ context.Context, limit, offset int) ([]*domain.NACHAFile, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.NACHAFile, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, cloneFile(f))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return page(out, limit, offset), nil
}

// UpdateStatus moves the file to next only when it is in expected.
func (r *FileRepository) UpdateStatus(
	_ context.Context,
	tx usecase.Transaction,
	id string,
	expected, next domain.FileStatus,
	reason string,
	updatedAt time.Time,
) (bool, error) {
	t, err := asTx(tx)
	if err != nil {
		return false, err
	}

	s := r.store
	s.mu.RLock()
	current, ok := t.files[id]
	if !ok {
		current, ok = s.files[id]
	}
	s.mu.RUnlock()

	if !ok {
		return false, domain.ErrFileNotFound
	}
	if current.Status != expected {
		return false, nil
	}

	updated := cloneFile(current)
	updated.Status = next
	updated.FailureReason = reason
	updated.UpdatedAt = updatedAt
	t.files[id] = updated

	return true, nil
}

func cloneFile(f *domain.NACHAFile) *domain.NACHAFile {
	c := *f
	c.EntryIDs = append([]string(nil), f.EntryIDs...)
	c.Content = append([]byte(nil), f.Content...)
	return &c
}
