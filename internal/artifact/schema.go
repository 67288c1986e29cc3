package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/wonny/stocktracker/internal/contracts"
)

// Schema is the JSON Schema (draft-07) of the report artifact
// ⭐ SSOT: 아티팩트 형식은 여기서만 정의
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Stock tracker report",
  "type": "array",
  "items": {
    "type": "object",
    "additionalProperties": false,
    "required": [
      "category", "ticker", "name", "price", "dcf",
      "fcfQuality", "roicStrength", "revenueDurability", "balanceSheetStrength",
      "insiderActivity", "valueRank", "expectedReturn", "lastUpdated"
    ],
    "properties": {
      "category": {"type": "string", "enum": ["Growth", "Dividend"]},
      "ticker": {"type": "string", "minLength": 1},
      "name": {"type": "string", "minLength": 1},
      "price": {"type": "number", "minimum": 0},
      "dcf": {
        "type": "object",
        "additionalProperties": false,
        "required": ["conservative", "base", "aggressive"],
        "properties": {
          "conservative": {"$ref": "#/definitions/range"},
          "base": {"$ref": "#/definitions/range"},
          "aggressive": {"$ref": "#/definitions/range"}
        }
      },
      "fcfQuality": {"$ref": "#/definitions/score"},
      "roicStrength": {"$ref": "#/definitions/score"},
      "revenueDurability": {"$ref": "#/definitions/score"},
      "balanceSheetStrength": {"$ref": "#/definitions/score"},
      "insiderActivity": {"$ref": "#/definitions/score"},
      "valueRank": {"$ref": "#/definitions/score"},
      "expectedReturn": {"$ref": "#/definitions/score"},
      "lastUpdated": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
    }
  },
  "definitions": {
    "score": {"type": "integer", "minimum": 1, "maximum": 5},
    "range": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?-[0-9]+(\\.[0-9]+)?$"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(Schema))
	})
	return compiledSchema, schemaErr
}

// SchemaProblems validates raw JSON against Schema and lists every violation
func SchemaProblems(data []byte) ([]string, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("compile artifact schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return []string{fmt.Sprintf("not valid JSON: %v", err)}, nil
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems, nil
}

// Parse validates raw artifact JSON and decodes it.
// Schema violations, unknown fields and record-level problems are all
// collected into one *contracts.SchemaValidationError.
func Parse(data []byte) ([]contracts.StockRecord, error) {
	problems, err := SchemaProblems(data)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, &contracts.SchemaValidationError{Problems: problems}
	}

	var records []contracts.StockRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, &contracts.SchemaValidationError{Problems: []string{fmt.Sprintf("decode: %v", err)}}
	}

	for _, r := range records {
		problems = append(problems, r.Problems()...)
	}
	if len(problems) > 0 {
		return nil, &contracts.SchemaValidationError{Problems: problems}
	}

	return records, nil
}
