package workspace

import "bytes"

// PlaceholderTokens are the markers reserved by the resume template. Their
// presence in a TeX source means tailoring has not happened yet, so the
// finalize guardrail refuses to mark the job resume_written.
var PlaceholderTokens = []string{
	"PROJECT-AI-",
	"PROJECT-BE-",
	"WORK-BULLET-POINT-",
}

// FindPlaceholders reports which placeholder tokens appear in a resume
// source, in PlaceholderTokens order.
func FindPlaceholders(data []byte) []string {
	var found []string
	for _, tok := range PlaceholderTokens {
		if bytes.Contains(data, []byte(tok)) {
			found = append(found, tok)
		}
	}
	return found
}
