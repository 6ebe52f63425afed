package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/replacefilter/replacefilter/internal/errors"
)

// fileConfig is the on-disk shape of a config file, matching the two
// directives from spec.md §6.
type fileConfig struct {
	ReplaceFilter      *ReplaceFilter `yaml:"replace_filter" json:"replace_filter"`
	ReplaceFilterTypes []string       `yaml:"replace_filter_types" json:"replace_filter_types"`
}

const replaceFilterKey = "replace_filter"

// loadFile reads and parses path as YAML, the primary on-disk format (it
// reads closer to the original directive syntax than JSON does), falling
// back to JSON for files ending in .json, mirroring the teacher's own
// JSON-only config.Initializer.parseSpecificConfig.
//
// Before unmarshaling, it checks the raw document for a duplicate
// replace_filter key at the top level: once collapsed into fileConfig's
// single field, a second declaration would silently overwrite the first,
// which is the "duplicate declaration at the same scope" error this
// directive must instead refuse to guess at.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".json") {
		if err := checkDuplicateJSONKey(data, replaceFilterKey); err != nil {
			return nil, err
		}
		var fc fileConfig
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
		}
		return &fc, nil
	}

	if err := checkDuplicateYAMLKey(data, replaceFilterKey); err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return &fc, nil
}

// checkDuplicateYAMLKey inspects the raw document tree (not the collapsed
// Go struct) for key appearing more than once in the top-level mapping.
func checkDuplicateYAMLKey(data []byte, key string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}

	count := 0
	for i := 0; i < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			count++
		}
	}
	if count > 1 {
		return fmt.Errorf("%w: %q declared %d times", errors.ErrDuplicateDirective, key, count)
	}
	return nil
}

// checkDuplicateJSONKey walks the top-level object's tokens directly,
// since encoding/json silently keeps only the last of a duplicate key.
func checkDuplicateJSONKey(data []byte, key string) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil
	}

	count := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
		}
		if k, ok := keyTok.(string); ok && k == key {
			count++
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
		}
	}
	if count > 1 {
		return fmt.Errorf("%w: %q declared %d times", errors.ErrDuplicateDirective, key, count)
	}
	return nil
}
