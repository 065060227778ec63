// Package curriculum imports a whole content hierarchy from a YAML document.
package curriculum

import (
	"fmt"

	"slm/apperr"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

type Document struct {
	Topics []Topic `yaml:"topics"`
}

type Topic struct {
	Name    string   `yaml:"name"`
	Order   int      `yaml:"order"`
	Prize   float64  `yaml:"prize"`
	Modules []Module `yaml:"modules"`
}

type Module struct {
	Title           string        `yaml:"title"`
	Description     string        `yaml:"description"`
	Order           int           `yaml:"order"`
	DifficultyLevel string        `yaml:"difficulty_level"`
	MainContents    []MainContent `yaml:"main_contents"`
}

type MainContent struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	Pages       []Page `yaml:"pages"`
	Quiz        *Quiz  `yaml:"quiz"`
}

type Page struct {
	Title        string  `yaml:"title"`
	Content      string  `yaml:"content"`
	Order        int     `yaml:"order"`
	TimeDuration int     `yaml:"time_duration"`
	VideoID      *string `yaml:"video_id"`
}

type Quiz struct {
	Title     string     `yaml:"title"`
	Questions []Question `yaml:"questions"`
}

type Question struct {
	Text    string   `yaml:"text"`
	Choices []Choice `yaml:"choices"`
}

type Choice struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

var schema = mustSchema()

func mustSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		panic(fmt.Sprintf("curriculum schema: %v", err))
	}
	return s
}

// Parse decodes and validates a curriculum document. Schema violations come
// back as an apperr validation error keyed by field path.
func Parse(data []byte) (*Document, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperr.Validation(map[string]string{"document": fmt.Sprintf("invalid YAML: %v", err)})
	}
	if raw == nil {
		return nil, apperr.Validation(map[string]string{"document": "document is empty"})
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, apperr.Validation(map[string]string{"document": err.Error()})
	}
	if !result.Valid() {
		fields := make(map[string]string, len(result.Errors()))
		for _, e := range result.Errors() {
			if _, seen := fields[e.Field()]; !seen {
				fields[e.Field()] = e.Description()
			}
		}
		return nil, apperr.Validation(fields)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Validation(map[string]string{"document": err.Error()})
	}
	return &doc, nil
}
