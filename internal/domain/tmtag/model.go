package tmtag

import "time"

// Status represents the review workflow state of a T&M tag
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusCompleted     Status = "completed"
	StatusRejected      Status = "rejected"
)

// AutoTitlePrefix marks tags created from a crew log.
const AutoTitlePrefix = "Auto-generated from Crew Log - "

// LaborEntry mirrors one crew member's hour buckets
type LaborEntry struct {
	ID         string  `json:"id"`
	WorkerName string  `json:"worker_name"`
	StHours    float64 `json:"st_hours"`
	OtHours    float64 `json:"ot_hours"`
	DtHours    float64 `json:"dt_hours"`
	PotHours   float64 `json:"pot_hours"`
	TotalHours float64 `json:"total_hours"`
}

// MaterialEntry is a billable material line
type MaterialEntry struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	UnitCost    float64 `json:"unit_cost"`
}

// EquipmentEntry is a billable equipment line
type EquipmentEntry struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Rate        float64 `json:"rate"`
}

// OtherEntry is any other billable line
type OtherEntry struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Tag is the billable time-and-material record for one project day
type Tag struct {
	ID                string           `json:"id"`
	ProjectID         string           `json:"project_id"`
	DateOfWork        string           `json:"date_of_work"`
	ProjectName       string           `json:"project_name"`
	CompanyName       string           `json:"company_name,omitempty"`
	GCEmail           string           `json:"gc_email,omitempty"`
	Title             string           `json:"tm_tag_title"`
	DescriptionOfWork string           `json:"description_of_work"`
	LaborEntries      []LaborEntry     `json:"labor_entries"`
	MaterialEntries   []MaterialEntry  `json:"material_entries"`
	EquipmentEntries  []EquipmentEntry `json:"equipment_entries"`
	OtherEntries      []OtherEntry     `json:"other_entries"`
	Status            Status           `json:"status"`
	CrewLogSynced     bool             `json:"crew_log_synced"`
	CrewLogID         *string          `json:"crew_log_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
