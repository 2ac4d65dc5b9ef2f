package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jobworkflow/internal/toolerr"
)

// maxBatchItems caps every batch operation. Larger requests are rejected
// up front rather than partially processed.
const maxBatchItems = 100

// DecodeStrict unmarshals raw tool arguments into a request struct,
// rejecting unknown fields so a misspelled option fails loudly instead
// of silently meaning "use the default". Empty input decodes to the zero
// request.
func DecodeStrict(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return toolerr.Validation("invalid arguments: %v", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return toolerr.Validation("invalid arguments: trailing data after request object")
	}
	return nil
}

func checkRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return toolerr.Validation("%s must be between %d and %d, got %d", name, lo, hi, v)
	}
	return nil
}

func checkBatchSize(n int) error {
	if n > maxBatchItems {
		return toolerr.Validation("batch has %d items, maximum is %d", n, maxBatchItems)
	}
	return nil
}

// parseItemID validates a batch item id: a positive integer supplied as
// either a JSON number or a numeric string.
func parseItemID(n json.Number) (int64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, fmt.Errorf("id is required")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %q is not an integer", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", v)
	}
	return v, nil
}

// itemError renders err for a result row: the taxonomy code prefix plus
// the sanitized message.
func itemError(err error) string {
	return toolerr.From(err).Error()
}

// echoID mirrors the caller's id into a result: the integer when it
// parsed, the raw text otherwise, nil when the field was absent. Keyed
// this way, a numeric 7 and a string "7" produce the same result entry.
func echoID(n json.Number) any {
	if v, err := n.Int64(); err == nil {
		return v
	}
	if s := n.String(); s != "" {
		return s
	}
	return nil
}
