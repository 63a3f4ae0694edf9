package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/postgres/generated"
	"github.com/iho/achledger/internal/usecase"
)

// FileRepository implements usecase.FileRepository.
type FileRepository struct {
	queries *generated.Queries
}

// NewFileRepository creates a new FileRepository.
func NewFileRepository(db generated.DBTX) *FileRepository {
	return &FileRepository{queries: generated.New(db)}
}

// Create stores a generated file.
func (r *FileRepository) Create(ctx context.Context, tx usecase.Transaction, file *domain.NACHAFile) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return mapError(queries.CreateFile(ctx, generated.CreateFileParams{
		ID:                file.ID,
		FileName:          file.FileName,
		EffectiveDate:     dateToPg(file.EffectiveDate),
		BatchNumber:       file.BatchNumber,
		Status:            string(file.Status),
		FailureReason:     file.FailureReason,
		Content:           file.Content,
		EntryIds:          file.EntryIDs,
		EntryHash:         file.EntryHash,
		TotalDebit:        file.TotalDebit,
		TotalCredit:       file.TotalCredit,
		RecordCount:       int32(file.RecordCount),
		BlockCount:        int32(file.BlockCount),
		EntryAddendaCount: int32(file.EntryAddendaCount),
		CreatedAt:         timeToPgTimestamptz(file.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(file.UpdatedAt),
	}))
}

// GetByID returns a file including its content.
func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.NACHAFile, error) {
	row, err := r.queries.GetFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, mapError(err)
	}
	return rowToFile(row), nil
}

// List returns files newest first.
func (r *FileRepository) List(ctx context.Context, limit, offset int) ([]*domain.NACHAFile, error) {
	l, o := pageArgs(limit, offset)
	rows, err := r.queries.ListFiles(ctx, generated.ListFilesParams{Limit: l, Offset: o})
	if err != nil {
		return nil, mapError(err)
	}

	files := make([]*domain.NACHAFile, 0, len(rows))
	for _, row := range rows {
		files = append(files, rowToFile(row))
	}
	return files, nil
}

// UpdateStatus moves the file to next only when it is in expected.
func (r *FileRepository) UpdateStatus(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	expected, next domain.FileStatus,
	reason string,
	updatedAt time.Time,
) (bool, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return false, err
	}

	n, err := queries.UpdateFileStatus(ctx, generated.UpdateFileStatusParams{
		Next:          string(next),
		FailureReason: reason,
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
		ID:            id,
		Expected:      string(expected),
	})
	if err != nil {
		return false, mapError(err)
	}
	if n == 1 {
		return true, nil
	}

	if _, err := queries.GetFileStatus(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrFileNotFound
		}
		return false, mapError(err)
	}
	return false, nil
}

func rowToFile(row generated.NachaFile) *domain.NACHAFile {
	return &domain.NACHAFile{
		ID:                row.ID,
		FileName:          row.FileName,
		EffectiveDate:     pgToDate(row.EffectiveDate),
		BatchNumber:       row.BatchNumber,
		Status:            domain.FileStatus(row.Status),
		FailureReason:     row.FailureReason,
		Content:           row.Content,
		EntryIDs:          row.EntryIds,
		EntryHash:         row.EntryHash,
		TotalDebit:        row.TotalDebit,
		TotalCredit:       row.TotalCredit,
		RecordCount:       int(row.RecordCount),
		BlockCount:        int(row.BlockCount),
		EntryAddendaCount: int(row.EntryAddendaCount),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
