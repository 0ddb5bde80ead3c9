package logview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medshare/portal-dashboard/pkg/types"
)

func TestPrettyPrintEmptyPayload(t *testing.T) {
	assert.Equal(t, "N/A", PrettyPrint(""))
}

func TestPrettyPrintValidJSON(t *testing.T) {
	pretty := PrettyPrint(`{"fn":"grantAccess","args":["P001"]}`)

	assert.Contains(t, pretty, "\n")
	assert.Contains(t, pretty, `"fn": "grantAccess"`)
}

func TestPrettyPrintMalformedPayloadReturnedRaw(t *testing.T) {
	raw := "not json at all {"
	assert.Equal(t, raw, PrettyPrint(raw))
}

func TestDetailProjectionPrettyPrintsPayloadFields(t *testing.T) {
	record := &types.FabricLogRecord{
		ID:              "fl-1",
		Timestamp:       time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		DoctorID:        "D001",
		Status:          types.StatusGranted,
		TransactionID:   "tx-abc",
		BlockNumber:     42,
		ValidationCode:  "VALID",
		InputArgs:       `{"patientId":"P001"}`,
		ResponsePayload: "",
		Endorsers:       "Org1MSP, Org2MSP",
	}

	detail := DetailProjection(record)

	assert.Contains(t, detail["inputArgs"], `"patientId": "P001"`)
	assert.Equal(t, "N/A", detail["responsePayload"])
	assert.Equal(t, "Org1MSP, Org2MSP", detail["endorsers"])
	assert.Equal(t, "tx-abc", detail["transactionId"])
	assert.Equal(t, "42", detail["blockNumber"])
}
