// Package classification exposes the three-level Uniclass taxonomy used to tag
// documents and to derive human-readable folder paths.
package classification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"projdocs/internal/model"
)

// Section is a level-3 node.
type Section struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Subgroup is a level-2 node.
type Subgroup struct {
	Code     string    `json:"code"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections,omitempty"`
}

// Group is a level-1 node.
type Group struct {
	Code      string     `json:"code"`
	Title     string     `json:"title"`
	Subgroups []Subgroup `json:"subgroups,omitempty"`
}

// Option is a picker entry: Key is the code, Text reads "<code> - <title>".
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Catalog is read-only once built and safe for concurrent use.
type Catalog struct {
	groups []Group
}

// NewCatalog builds a catalog from already parsed groups.
func NewCatalog(groups []Group) *Catalog {
	return &Catalog{groups: groups}
}

// Empty returns a catalog without entries.
func Empty() *Catalog { return &Catalog{} }

// Len returns the number of level-1 groups.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.groups)
}

// Groups returns the level-1 groups.
func (c *Catalog) Groups() []Group {
	if c == nil {
		return nil
	}
	return c.groups
}

const schemaURL = "uniclass.schema.json"

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["code", "title"],
    "properties": {
      "code": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "subgroups": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["code", "title"],
          "properties": {
            "code": {"type": "string", "minLength": 1},
            "title": {"type": "string"},
            "sections": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["code", "title"],
                "properties": {
                  "code": {"type": "string", "minLength": 1},
                  "title": {"type": "string"}
                }
              }
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Parse validates data against the catalog shape and decodes it.
func Parse(data []byte) (*Catalog, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	var groups []Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(groups), nil
}

func optionText(code, title string) string {
	return code + " - " + title
}

func (c *Catalog) group(code string) (Group, bool) {
	if c == nil || code == "" {
		return Group{}, false
	}
	for _, g := range c.groups {
		if g.Code == code {
			return g, true
		}
	}
	return Group{}, false
}

func (g Group) subgroup(code string) (Subgroup, bool) {
	if code == "" {
		return Subgroup{}, false
	}
	for _, s := range g.Subgroups {
		if s.Code == code {
			return s, true
		}
	}
	return Subgroup{}, false
}

// OptionsFor returns the entries selectable at level (1-3) given the selected
// ancestors. Level 2 needs parent (a group code); level 3 needs parent (a subgroup
// code) and grandparent (its group code). Missing ancestors yield no options.
func (c *Catalog) OptionsFor(level int, parent, grandparent string) []Option {
	out := make([]Option, 0)
	switch level {
	case 1:
		for _, g := range c.Groups() {
			out = append(out, Option{Key: g.Code, Text: optionText(g.Code, g.Title)})
		}
	case 2:
		g, ok := c.group(parent)
		if !ok {
			return out
		}
		for _, s := range g.Subgroups {
			out = append(out, Option{Key: s.Code, Text: optionText(s.Code, s.Title)})
		}
	case 3:
		g, ok := c.group(grandparent)
		if !ok {
			return out
		}
		s, ok := g.subgroup(parent)
		if !ok {
			return out
		}
		for _, sec := range s.Sections {
			out = append(out, Option{Key: sec.Code, Text: optionText(sec.Code, sec.Title)})
		}
	}
	return out
}

// FolderPath joins the titles of the selected group and subgroup with "/".
// An unknown group yields ""; an unknown or empty subgroup yields the group title.
func (c *Catalog) FolderPath(groupCode, subgroupCode string) string {
	g, ok := c.group(groupCode)
	if !ok {
		return ""
	}
	s, ok := g.subgroup(subgroupCode)
	if !ok {
		return g.Title
	}
	return g.Title + "/" + s.Title
}

// Resolve finds code at any level and returns it with its ancestors filled in.
func (c *Catalog) Resolve(code string) (model.Classification, bool) {
	if code == "" {
		return model.Classification{}, false
	}
	for _, g := range c.Groups() {
		gl := model.ClassificationLevel{Code: g.Code, Title: g.Title}
		if g.Code == code {
			return model.Classification{Group: gl}, true
		}
		for _, s := range g.Subgroups {
			sl := model.ClassificationLevel{Code: s.Code, Title: s.Title}
			if s.Code == code {
				return model.Classification{Group: gl, Subgroup: sl}, true
			}
			for _, sec := range s.Sections {
				if sec.Code == code {
					return model.Classification{
						Group:    gl,
						Subgroup: sl,
						Section:  model.ClassificationLevel{Code: sec.Code, Title: sec.Title},
					}, true
				}
			}
		}
	}
	return model.Classification{}, false
}

// FolderPathFor derives the folder path of any code through its ancestors.
func (c *Catalog) FolderPathFor(code string) (string, bool) {
	cl, ok := c.Resolve(code)
	if !ok {
		return "", false
	}
	return c.FolderPath(cl.Group.Code, cl.Subgroup.Code), true
}
