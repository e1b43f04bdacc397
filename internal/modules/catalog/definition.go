// Package catalog loads course trees from YAML, validates them and writes
// them to the store in one transaction.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type CourseDef struct {
	Slug        string                 `yaml:"slug" validate:"required,max=120"`
	Title       string                 `yaml:"title" validate:"required,max=255"`
	Description string                 `yaml:"description"`
	Active      *bool                  `yaml:"active"`
	Metadata    map[string]interface{} `yaml:"metadata"`
	Modules     []ModuleDef            `yaml:"modules" validate:"required,min=1,unique=Order,dive"`
}

type ModuleDef struct {
	Title         string      `yaml:"title" validate:"required,max=255"`
	Description   string      `yaml:"description"`
	Order         int         `yaml:"order" validate:"gte=1"`
	PassThreshold int         `yaml:"pass_threshold" validate:"gte=0,lte=100"`
	Active        *bool       `yaml:"active"`
	Lessons       []LessonDef `yaml:"lessons" validate:"unique=Order,dive"`
	Quizzes       []QuizDef   `yaml:"quizzes" validate:"dive"`
}

type LessonDef struct {
	Title             string                 `yaml:"title" validate:"required,max=255"`
	Order             int                    `yaml:"order" validate:"gte=1"`
	Content           string                 `yaml:"content"`
	EstimatedDuration int                    `yaml:"estimated_duration" validate:"gte=0"`
	Metadata          map[string]interface{} `yaml:"metadata"`
}

type QuizDef struct {
	Title         string        `yaml:"title" validate:"required,max=255"`
	Type          string        `yaml:"type" validate:"required,oneof=module final"`
	PassThreshold int           `yaml:"pass_threshold" validate:"gte=0,lte=100"`
	Active        *bool         `yaml:"active"`
	Questions     []QuestionDef `yaml:"questions" validate:"required,min=1,unique=Order,dive"`
}

type QuestionDef struct {
	Text    string      `yaml:"text" validate:"required"`
	Type    string      `yaml:"type" validate:"required,oneof=multiple_choice true_false free_text"`
	Points  int         `yaml:"points" validate:"gte=1"`
	Order   int         `yaml:"order" validate:"gte=1"`
	Options []OptionDef `yaml:"options" validate:"dive"`
}

type OptionDef struct {
	Text    string `yaml:"text" validate:"required"`
	Correct bool   `yaml:"correct"`
}

// Parse reads one or more YAML documents, one course per document.
func Parse(r io.Reader) ([]CourseDef, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var out []CourseDef
	for {
		var def CourseDef
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse course %d: %w", len(out)+1, err)
		}
		out = append(out, def)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no course documents found")
	}
	return out, nil
}

func LoadFile(path string) ([]CourseDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defs, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
