package content

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Every artifact coming back from a generation provider is validated
// against a JSON Schema before it is decoded into a typed struct. Invalid
// payloads become a *ValidationError instead of half-populated artifacts.

// ValidationError reports a provider payload that failed schema validation.
type ValidationError struct {
	Artifact string
	Causes   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s payload failed validation: %s", e.Artifact, strings.Join(e.Causes, "; "))
}

const learningPathSchema = `{
  "type": "object",
  "required": ["title", "topic", "milestones"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "topic": {"type": "string", "minLength": 1},
    "level": {"type": "string"},
    "estimated_hours": {"type": "number"},
    "prerequisites": {"type": "array", "items": {"type": "string"}},
    "key_concepts": {"type": "array", "items": {"type": "string"}},
    "milestones": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["level", "concepts"],
        "properties": {
          "level": {"type": "string"},
          "concepts": {"type": "array", "items": {"type": "string"}},
          "estimated_time": {"type": "string"},
          "prerequisites": {"type": "array", "items": {"type": "string"}},
          "outcomes": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

const lessonSchema = `{
  "type": "object",
  "required": ["title", "concept"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "concept": {"type": "string", "minLength": 1},
    "level": {"type": "string"},
    "simple_explanation": {"type": "string"},
    "deep_explanation": {"type": "string"},
    "real_world_use_cases": {"type": "array", "items": {"type": "string"}},
    "analogies": {"type": "array", "items": {"type": "string"}},
    "visual_models": {"type": "string"},
    "step_by_step_examples": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "step": {"type": "integer"},
          "description": {"type": "string"},
          "example": {"type": "string"}
        }
      }
    },
    "common_mistakes": {"type": "array", "items": {"type": "string"}},
    "estimated_minutes": {"type": "number"}
  }
}`

const worksheetSchema = `{
  "type": "object",
  "required": ["title", "questions", "answer_key"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "level": {"type": "string"},
    "questions": {"type": "array", "items": {"type": "object"}},
    "answer_key": {"type": "object"}
  }
}`

const quizSchema = `{
  "type": "object",
  "required": ["title", "questions", "answer_key"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "level": {"type": "string"},
    "type": {"type": "string"},
    "questions": {"type": "array", "items": {"type": "object"}},
    "answer_key": {"type": "object"},
    "passing_score": {"type": "number"},
    "time_limit_minutes": {"type": "number"}
  }
}`

const capstoneSchema = `{
  "type": "object",
  "required": ["title", "description", "instructions"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "level": {"type": "string"},
    "description": {"type": "string", "minLength": 1},
    "instructions": {"type": "string", "minLength": 1},
    "requirements": {"type": "array", "items": {"type": "string"}},
    "evaluation_rubric": {"type": "array", "items": {"type": "object"}},
    "extension_challenges": {"type": ["array", "null"], "items": {"type": "string"}},
    "estimated_hours": {"type": "number"}
  }
}`

var (
	schemaOnce sync.Once
	schemas    map[string]*gojsonschema.Schema
	schemaErr  error
)

func compiledSchemas() (map[string]*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemas = make(map[string]*gojsonschema.Schema, 5)
		for name, raw := range map[string]string{
			"learning_path": learningPathSchema,
			"lesson":        lessonSchema,
			"worksheet":     worksheetSchema,
			"quiz":          quizSchema,
			"capstone":      capstoneSchema,
		} {
			s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
			if err != nil {
				schemaErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			schemas[name] = s
		}
	})
	return schemas, schemaErr
}

// validateArtifact checks a raw JSON payload against the named artifact
// schema. A malformed document or a schema miss both come back as
// *ValidationError; only schema-compilation problems surface differently.
func validateArtifact(artifact, payload string) error {
	all, err := compiledSchemas()
	if err != nil {
		return err
	}
	schema, ok := all[artifact]
	if !ok {
		return fmt.Errorf("unknown artifact type %q", artifact)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return &ValidationError{Artifact: artifact, Causes: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	causes := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		causes = append(causes, desc.String())
	}
	return &ValidationError{Artifact: artifact, Causes: causes}
}
