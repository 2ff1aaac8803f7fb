package project

import "time"

// Status is the lifecycle state of a project
type Status string

const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
)

// PinState is the GC dashboard access code embedded in a project.
// At most one unused PIN exists per project.
type PinState struct {
	CurrentPin   *string    `json:"current_pin,omitempty"`
	PinUsed      bool       `json:"pin_used"`
	LastAccessAt *time.Time `json:"last_access_at,omitempty"`
	LastAccessIP *string    `json:"last_access_ip,omitempty"`
}

// HasPin reports whether a PIN has been issued.
func (p PinState) HasPin() bool {
	return p.CurrentPin != nil && *p.CurrentPin != ""
}

// Project is a construction job that crew logs and T&M tags are recorded against
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ClientCompany  string    `json:"client_company,omitempty"`
	GCEmail        string    `json:"gc_email,omitempty"`
	LaborRate      float64   `json:"labor_rate"`
	ContractAmount float64   `json:"contract_amount"`
	Status         Status    `json:"status"`
	Pin            PinState  `json:"pin"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary is a lightweight representation for listing. It never carries PIN data.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ClientCompany string    `json:"client_company,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
