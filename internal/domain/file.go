package domain

import "time"

// FileStatus is the transmission state of a generated NACHA file.
type FileStatus string

const (
	FileStatusGenerated   FileStatus = "generated"
	FileStatusTransmitted FileStatus = "transmitted"
	FileStatusFailed      FileStatus = "failed"
)

// CanTransitionTo reports whether s -> next is allowed. Only generated
// files move, and they move once.
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	return s == FileStatusGenerated && (next == FileStatusTransmitted || next == FileStatusFailed)
}

// NACHAFile is a generated ACH file and the entries it claimed.
type NACHAFile struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	EffectiveDate     time.Time
	ID                string
	FileName          string
	Status            FileStatus
	FailureReason     string
	EntryIDs          []string
	Content           []byte
	BatchNumber       int64
	EntryHash         int64
	TotalDebit        int64
	TotalCredit       int64
	RecordCount       int
	BlockCount        int
	EntryAddendaCount int
}
