package model

import "time"

// Standard is a document catalogued in the shared standards library,
// partitioned by client and version.
type Standard struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	FileName      string    `json:"file_name"`
	Client        string    `json:"client"`
	Version       string    `json:"version"`
	Code          string    `json:"code"`
	CodeTitle     string    `json:"code_title"`
	Description   string    `json:"description,omitempty"`
	ProjectNumber string    `json:"project_number,omitempty"`
	FileRef       string    `json:"file_ref"`
	Modified      time.Time `json:"modified"`
}

// StandardMetadata is the classification stamped on a newly uploaded standard.
type StandardMetadata struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PromotionItem names a standard to copy into a project.
type PromotionItem struct {
	FileName         string `json:"file_name"`
	Code             string `json:"code"`
	Client           string `json:"client"`
	Version          string `json:"version"`
	IncludeTemplates bool   `json:"include_templates,omitempty"`
}

// PromotionResult records where a promoted file landed.
type PromotionResult struct {
	FileName   string `json:"file_name"`
	TargetPath string `json:"target_path"`
}
