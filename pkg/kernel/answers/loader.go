package answers

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and structurally decodes an answers file (YAML or JSON).
// Returns a structural error if the file contains unknown fields.
func LoadFile(path string) (*Answers, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open answers: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads answers from a reader. Derived values are not filled in;
// call Finalize before building a pipeline.
func Load(r io.Reader) (*Answers, error) {
	var a Answers
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // strict: reject unknown fields
	if err := dec.Decode(&a); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("structural decode: empty document")
		}
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	return &a, nil
}
