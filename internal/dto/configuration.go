package dto

import "github.com/noah-isme/college-portal-api/internal/academic"

// ConfigurationItem is the API view of a configuration entry.
type ConfigurationItem struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// CalendarConfigResponse exposes the effective calendar and fee settings,
// defaults included.
type CalendarConfigResponse struct {
	Calendar  academic.CalendarConfig `json:"calendar"`
	FeePolicy academic.FeePolicy      `json:"fee_policy"`
}

// UpdateCalendarConfigRequest updates the semester anchors and fee totals.
// Zero-valued sections leave the stored values untouched.
type UpdateCalendarConfigRequest struct {
	FirstSemStart  *AnchorPayload `json:"first_sem_start,omitempty"`
	SecondSemStart *AnchorPayload `json:"second_sem_start,omitempty"`
	SFCTotalFee    *int64         `json:"sfc_total_fee,omitempty" validate:"omitempty,gt=0"`
	NonSFCTotalFee *int64         `json:"non_sfc_total_fee,omitempty" validate:"omitempty,gt=0"`
}

// AnchorPayload is a month/day pair in a config update.
type AnchorPayload struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Day   int `json:"day" validate:"required,min=1,max=31"`
}
