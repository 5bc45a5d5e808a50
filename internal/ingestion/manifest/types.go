package manifest

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest is the book → page → exercise → question hierarchy.
type Manifest struct {
	Title             string     `yaml:"title"`
	InnovationMarkers []string   `yaml:"innovation_markers"`
	Books             []BookNode `yaml:"books"`
}

type BookNode struct {
	UUID    string     `yaml:"uuid"`
	Version string     `yaml:"version"`
	Name    string     `yaml:"name"`
	Pages   []PageNode `yaml:"pages"`

	line int
}

func (b *BookNode) UnmarshalYAML(value *yaml.Node) error {
	type plain BookNode
	if err := value.Decode((*plain)(b)); err != nil {
		return err
	}
	b.line = value.Line
	return nil
}

type PageNode struct {
	UUID      string         `yaml:"uuid"`
	Version   string         `yaml:"version"`
	Title     string         `yaml:"title"`
	Content   string         `yaml:"content"`
	Exercises []ExerciseNode `yaml:"exercises"`

	line int
}

func (p *PageNode) UnmarshalYAML(value *yaml.Node) error {
	type plain PageNode
	if err := value.Decode((*plain)(p)); err != nil {
		return err
	}
	p.line = value.Line
	return nil
}

type ExerciseNode struct {
	ID        string         `yaml:"id"`
	UID       string         `yaml:"uid"`
	Questions []QuestionNode `yaml:"questions"`

	line int
}

func (e *ExerciseNode) UnmarshalYAML(value *yaml.Node) error {
	type plain ExerciseNode
	if err := value.Decode((*plain)(e)); err != nil {
		return err
	}
	e.line = value.Line
	return nil
}

type QuestionNode struct {
	Stimulus string   `yaml:"stimulus" json:"stimulus"`
	Stem     string   `yaml:"stem" json:"stem"`
	Answers  []Answer `yaml:"answers" json:"answers"`

	line int
}

func (q *QuestionNode) UnmarshalYAML(value *yaml.Node) error {
	type plain QuestionNode
	if err := value.Decode((*plain)(q)); err != nil {
		return err
	}
	q.line = value.Line
	return nil
}

// Answer accepts either a bare scalar or a mapping with a content field.
type Answer struct {
	Content string `yaml:"content" json:"content"`
}

func (a *Answer) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		a.Content = value.Value
		return nil
	case yaml.MappingNode:
		type plain Answer
		return value.Decode((*plain)(a))
	}
	return fmt.Errorf("line %d: answer must be text or a mapping with content", value.Line)
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.Content = s
		return nil
	}
	type plain Answer
	return json.Unmarshal(b, (*plain)(a))
}

// ContentExercise is one entry of an explicit question list: the content is
// already resolved and only needs to be attached to a page of the book.
type ContentExercise struct {
	ID          string   `json:"id" yaml:"id"`
	UID         string   `json:"uid" yaml:"uid"`
	PageVUID    string   `json:"page_vuid" yaml:"page_vuid"`
	PageUUID    string   `json:"page_uuid" yaml:"page_uuid"`
	PageVersion string   `json:"page_version" yaml:"page_version"`
	PageTitle   string   `json:"page_title" yaml:"page_title"`
	Stimulus    string   `json:"stimulus" yaml:"stimulus"`
	Stem        string   `json:"stem" yaml:"stem"`
	Answers     []Answer `json:"answers" yaml:"answers"`
}
