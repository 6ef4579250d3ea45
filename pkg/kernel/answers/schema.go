package answers

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the canonical identifier of the answers schema.
const SchemaID = "https://github.com/ormasoftchile/appgen/schemas/answers-v1.json"

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from the
// Answers type.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&Answers{})
	s.ID = SchemaID
	s.Title = "appgen answers"
	s.Description = "Answers for provisioning an Expo project skeleton (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal answers schema: %w", err)
	}
	return data, nil
}
