package callback

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type RequestBody struct {
	Args []string `json:"args"`
}

// BuildPayload encodes {"args": args} compactly, without HTML escaping and
// without a trailing newline. A nil slice encodes as an empty array.
// The returned bytes are both signed and sent as-is.
func BuildPayload(args []string) ([]byte, error) {
	if args == nil {
		args = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(RequestBody{Args: args}); err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
