package provision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Column names stamped on list records.
const (
	FieldTitle         = "Title"
	FieldFileLeafRef   = "FileLeafRef"
	FieldProjectID     = "ProjectId"
	FieldDocumentType  = "DocumentType"
	FieldStatus        = "Status"
	FieldLevel1Code    = "Level1Code"
	FieldLevel1Title   = "Level1Title"
	FieldLevel2Code    = "Level2Code"
	FieldLevel2Title   = "Level2Title"
	FieldLevel3Code    = "Level3Code"
	FieldLevel3Title   = "Level3Title"
	FieldClient        = "Client"
	FieldVersion       = "Version"
	FieldUniclassCode  = "UniclassCode"
	FieldUniclassTitle = "UniclassTitle"
	FieldDescription   = "Description"
	FieldProjectNumber = "ProjectNumber"
)

// FieldSpec is a text column a library is expected to carry.
type FieldSpec struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required"`
}

// FieldSets holds the expected columns of each library role.
type FieldSets struct {
	Documents []FieldSpec `yaml:"documents"`
	Standards []FieldSpec `yaml:"standards"`
	Templates []FieldSpec `yaml:"templates"`
}

func specs(names ...string) []FieldSpec {
	out := make([]FieldSpec, len(names))
	for i, n := range names {
		out[i] = FieldSpec{Name: n}
	}
	return out
}

// DefaultFieldSets returns the columns the repository and the promotion workflow write.
func DefaultFieldSets() FieldSets {
	return FieldSets{
		Documents: specs(
			FieldProjectID, FieldDocumentType, FieldStatus,
			FieldLevel1Code, FieldLevel1Title,
			FieldLevel2Code, FieldLevel2Title,
			FieldLevel3Code, FieldLevel3Title,
			FieldClient, FieldVersion, FieldUniclassCode, FieldUniclassTitle,
		),
		Standards: specs(
			FieldClient, FieldVersion, FieldUniclassCode, FieldUniclassTitle,
			FieldDescription, FieldProjectNumber,
		),
		Templates: specs(FieldUniclassCode, FieldUniclassTitle, FieldDescription),
	}
}

// LoadFieldSets reads a YAML override file. Roles absent from the file keep their defaults.
// An empty path returns the defaults.
func LoadFieldSets(path string) (FieldSets, error) {
	sets := DefaultFieldSets()
	if path == "" {
		return sets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sets, fmt.Errorf("read schema file: %w", err)
	}
	var override FieldSets
	if err := yaml.Unmarshal(data, &override); err != nil {
		return sets, fmt.Errorf("parse schema file: %w", err)
	}
	if override.Documents != nil {
		sets.Documents = override.Documents
	}
	if override.Standards != nil {
		sets.Standards = override.Standards
	}
	if override.Templates != nil {
		sets.Templates = override.Templates
	}
	for _, set := range [][]FieldSpec{sets.Documents, sets.Standards, sets.Templates} {
		for _, f := range set {
			if f.Name == "" {
				return DefaultFieldSets(), fmt.Errorf("parse schema file: field without name")
			}
		}
	}
	return sets, nil
}
