package domain

import (
	"encoding/json"
	"time"
)

// ============================================================
// Per-user workspace state (templates, drafts)
// ============================================================

// ActivityTemplate is a saved, reusable set of activity form values.
type ActivityTemplate struct {
	ID             string    `json:"id"`
	Name           string    `json:"name" validate:"required,max=80"`
	TypeActivity   string    `json:"typeactivity" validate:"required"`
	ActivityStatus string    `json:"activitystatus" validate:"omitempty,activitystatus"`
	TypeCall       string    `json:"typecall,omitempty"`
	Duration       string    `json:"duration,omitempty" validate:"omitempty,durationlabel"`
	Remarks        string    `json:"remarks,omitempty" validate:"max=2000"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Draft is the raw, unsubmitted state of a form. The BFA stores it opaquely.
type Draft struct {
	Form      string          `json:"form"`
	Values    json.RawMessage `json:"values"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ============================================================
// Mutations
// ============================================================

// ActivityInput is the payload for creating an activity.
type ActivityInput struct {
	CompanyName     string `json:"companyname" validate:"required"`
	TypeClient      string `json:"typeclient"`
	TypeActivity    string `json:"typeactivity" validate:"required"`
	ActivityStatus  string `json:"activitystatus" validate:"required,activitystatus"`
	TypeCall        string `json:"typecall,omitempty" validate:"required_if=TypeActivity 'Outbound Call'"`
	Callback        string `json:"callback,omitempty" validate:"omitempty,timestamp"`
	StartDate       string `json:"startdate,omitempty" validate:"omitempty,timestamp"`
	Duration        string `json:"duration,omitempty" validate:"omitempty,durationlabel"`
	EndDate         string `json:"enddate,omitempty" validate:"omitempty,timestamp"`
	Remarks         string `json:"remarks,omitempty" validate:"max=2000"`
	QuotationNumber string `json:"quotationnumber,omitempty"`
	QuotationAmount string `json:"quotationamount,omitempty" validate:"omitempty,amount"`
	SONumber        string `json:"sonumber,omitempty"`
	SOAmount        string `json:"soamount,omitempty" validate:"omitempty,amount"`

	// Filled by the service from the resolved profile.
	ReferenceID string `json:"referenceid"`
	TSM         string `json:"tsm"`
	Manager     string `json:"manager"`
}

// StatusChange is the payload for changing an activity's status.
type StatusChange struct {
	ActivityStatus string `json:"activitystatus" validate:"required,activitystatus"`
	Remarks        string `json:"remarks,omitempty" validate:"max=2000"`
}

// MutationResult is the upstream acknowledgement of a mutation.
type MutationResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
