package domain

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// requiredRecordFields lists the top-level keys every payload must carry.
var requiredRecordFields = []string{
	"productName",
	"brandName",
	"ingredients",
	"servingSize",
	"packagingSize",
	"servingsPerPack",
	"nutritionalInformation",
	"fssaiLicenseNumbers",
	"claims",
	"shelfLife",
}

// ExtractionResult is what an Extractor produced for one row: either a raw
// structured payload or a refusal.
type ExtractionResult struct {
	Payload   json.RawMessage
	Refusal   string
	Model     string
	RequestID string
}

// Refused reports whether the inference service declined to answer.
func (r *ExtractionResult) Refused() bool {
	return r.Refusal != ""
}

// Decode parses the payload into a ProductRecord. Unknown fields and missing
// top-level fields are rejected with ErrParse.
func (r *ExtractionResult) Decode() (*ProductRecord, error) {
	if len(bytes.TrimSpace(r.Payload)) == 0 {
		return nil, eris.Wrap(ErrParse, "empty payload")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Payload, &fields); err != nil {
		return nil, eris.Wrapf(ErrParse, "payload is not a JSON object: %v", err)
	}
	for _, name := range requiredRecordFields {
		if _, ok := fields[name]; !ok {
			return nil, eris.Wrapf(ErrParse, "missing field %q", name)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(r.Payload))
	dec.DisallowUnknownFields()

	var record ProductRecord
	if err := dec.Decode(&record); err != nil {
		return nil, eris.Wrapf(ErrParse, "decode product record: %v", err)
	}
	return &record, nil
}
