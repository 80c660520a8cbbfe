package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/parse"
)

// readDocument returns a JSON document given inline or as a file path,
// where "-" reads stdin. It is an error to give both.
func readDocument(inline, file string) ([]byte, error) {
	switch {
	case inline != "" && file != "":
		return nil, errors.New("use either inline JSON or a file, not both")
	case inline != "":
		return []byte(inline), nil
	case file == "-":
		return io.ReadAll(os.Stdin)
	case file != "":
		return os.ReadFile(file)
	default:
		return nil, nil
	}
}

// recordData assembles record data from --data, --file and --set. The
// assignments are applied on top of the document.
func recordData(inline, file string, sets []string) (map[string]any, error) {
	raw, err := readDocument(inline, file)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("record data must be a JSON object: %w", err)
		}
	}
	extra, err := parse.Assignments(sets)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		data[k] = v
	}
	if len(data) == 0 {
		return nil, errors.New("no record data; pass --data, --file or --set")
	}
	return data, nil
}
