package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrProjectRequired = errors.New("project id is required")
	ErrPathRequired    = errors.New("path is required")
	ErrReaderNil       = errors.New("reader is nil")
	ErrNotFound        = errors.New("document not found")
	ErrClientRequired  = errors.New("client is required")
	// ErrInvalidArgument wraps every other rejected input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// FolderProvisioningError reports a project folder that could not be ensured within the retry budget.
type FolderProvisioningError struct {
	ProjectID string
	Path      string
	Err       error
}

func (e *FolderProvisioningError) Error() string {
	return fmt.Sprintf("ensure project folder %s for %q: %v", e.Path, e.ProjectID, e.Err)
}

func (e *FolderProvisioningError) Unwrap() error { return e.Err }

// ListDocumentsError reports a project listing that failed after retries.
type ListDocumentsError struct {
	ProjectID string
	Err       error
}

func (e *ListDocumentsError) Error() string {
	return fmt.Sprintf("list documents for project %q: %v", e.ProjectID, e.Err)
}

func (e *ListDocumentsError) Unwrap() error { return e.Err }

// RepositoryError wraps any other failed repository operation with its target.
type RepositoryError struct {
	Op     string
	Target string
	Err    error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// UploadError reports a failed upload and the stage it failed at.
type UploadError struct {
	FileName string
	Stage    string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q failed at %s: %v", e.FileName, e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// CopyError reports a failed promotion copy. Index is the zero-based position of
// the failing item in its batch, or -1 outside a batch.
type CopyError struct {
	Index    int
	FileName string
	Source   string
	Target   string
	Err      error
}

func (e *CopyError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("copy item %d (%q) from %s to %s: %v", e.Index+1, e.FileName, e.Source, e.Target, e.Err)
	}
	return fmt.Sprintf("copy %q from %s to %s: %v", e.FileName, e.Source, e.Target, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }
