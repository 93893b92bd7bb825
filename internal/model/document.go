package model

import "time"

// Document is a node of a project's file tree: a file or a folder.
// Folders carry no identifier, document type or classification.
type Document struct {
	ID             int             `json:"id,omitempty"`
	Title          string          `json:"title"`
	Name           string          `json:"name"`
	Path           string          `json:"path"`
	ProjectID      string          `json:"project_id,omitempty"`
	DocumentType   string          `json:"document_type,omitempty"`
	Status         string          `json:"status,omitempty"`
	ModifiedBy     string          `json:"modified_by,omitempty"`
	Modified       time.Time       `json:"modified"`
	IsFolder       bool            `json:"is_folder"`
	Classification *Classification `json:"classification,omitempty"`
}

// DocumentMetadata is the caller-supplied metadata stamped on an uploaded file.
// SubFolder, when set, is a path below the project folder the file is routed into.
type DocumentMetadata struct {
	DocumentType   string          `json:"document_type"`
	Status         string          `json:"status"`
	Classification *Classification `json:"classification,omitempty"`
	SubFolder      string          `json:"sub_folder,omitempty"`
}

// FolderInfo describes a created folder.
type FolderInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
	ItemCount int       `json:"item_count"`
}
