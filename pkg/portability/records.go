package portability

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// RecordFile is a file of record data to import.
type RecordFile struct {
	Path    string
	Records []map[string]any
}

// LoadRecords reads every file matched by pattern. Patterns support **.
// A file holds either one record object or an array of them.
func LoadRecords(pattern string) ([]RecordFile, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}
	sort.Strings(paths)

	files := make([]RecordFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		records, err := ParseRecords(data, FormatFromPath(p))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		files = append(files, RecordFile{Path: p, Records: records})
	}
	return files, nil
}

// ParseRecords decodes one record object or an array of record objects.
func ParseRecords(data []byte, format Format) ([]map[string]any, error) {
	var doc any
	var err error
	if format == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", format, err)
	}

	switch v := doc.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d is not an object", i)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, errors.New("expected an object or an array of objects")
	}
}
