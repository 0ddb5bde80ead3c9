package logview

import (
	"bytes"
	"encoding/json"

	"github.com/medshare/portal-dashboard/pkg/types"
)

// payload fields carrying embedded structured text worth re-indenting
var payloadFields = map[string]bool{
	"inputArgs":       true,
	"responsePayload": true,
	"endorsers":       true,
}

// PrettyPrint attempts a structured re-indent of an embedded JSON
// payload. On parse failure the raw text is returned unchanged; empty
// payloads render as N/A.
func PrettyPrint(raw string) string {
	if raw == "" {
		return "N/A"
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return raw
	}

	return buf.String()
}

// DetailProjection returns a record's full field set for the
// drill-down view, pretty-printing any embedded payload blobs
func DetailProjection(record types.LogRecord) map[string]string {
	detail := record.Detail()

	projected := make(map[string]string, len(detail))
	for field, value := range detail {
		if payloadFields[field] {
			projected[field] = PrettyPrint(value)
		} else {
			projected[field] = value
		}
	}

	return projected
}
