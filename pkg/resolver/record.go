package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedInput indicates the structural record is not a JSON object at
// the top level. Anything less broken degrades per file instead.
var ErrMalformedInput = errors.New("malformed structural record")

// FunctionInfo describes one function as reported by the upstream parser.
// Calls holds raw, unresolved call names exactly as written in the source.
type FunctionInfo struct {
	Args  []string `json:"args"`
	Calls []string `json:"calls"`
}

// ClassInfo describes one class definition with its base-class names and
// method names.
type ClassInfo struct {
	Bases   []string `json:"bases"`
	Methods []string `json:"methods"`
}

// FileRecord is the per-file analysis record consumed by the resolver. All
// maps are optional: a nil map means the parser found no entities of that
// kind (or failed partway), never a fatal condition.
type FileRecord struct {
	Imports   map[string]string       `json:"imports"`
	Functions map[string]FunctionInfo `json:"functions"`
	Classes   map[string]ClassInfo    `json:"classes"`
	Errors    []string                `json:"errors,omitempty"`
	Summary   string                  `json:"summary,omitempty"`
}

// Structure is the full structural record for one analyzed project,
// keyed by file path.
type Structure map[string]FileRecord

// DecodeStructure parses a raw JSON structural record permissively: a file
// whose record has the wrong shape still appears in the result, with the
// decode failure carried in its Errors so the file node is created with no
// children. Only a non-object top level is fatal.
func DecodeStructure(data []byte) (Structure, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	structure := make(Structure, len(raw))
	for path, msg := range raw {
		var rec FileRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			structure[path] = FileRecord{
				Errors: []string{fmt.Sprintf("malformed file record: %v", err)},
			}
			continue
		}
		structure[path] = rec
	}
	return structure, nil
}
