package v1

import (
	"encoding/json"
	"time"
)

// SubmissionDTO is the wire payload for one period's noised figures. Hours
// are derived from noised minutes at two-decimal precision; the raw totals
// never appear here.
type SubmissionDTO struct {
	WeekStart     string  `json:"week_start"` // yyyy-MM-dd
	WeekEnd       string  `json:"week_end"`
	PlannedHours  float64 `json:"planned_hours"`
	ActualHours   float64 `json:"actual_hours"`
	ClientVersion string  `json:"client_version"`
}

// SubmissionReceipt is the endpoint's acknowledgement.
type SubmissionReceipt struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
}

type SubmissionEndpoint struct {
	transport *Transport
}

func (e *SubmissionEndpoint) Submit(dto *SubmissionDTO) (*SubmissionReceipt, error) {
	resp, err := e.transport.Post("/submissions/weekly", dto, nil)
	if err != nil {
		return nil, err
	}

	var receipt SubmissionReceipt
	if err := json.Unmarshal(resp.Data, &receipt); err != nil {
		return nil, err
	}

	return &receipt, nil
}
