package transport

import (
	"time"

	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/tmtag"
)

type createProjectRequest struct {
	ID             string         `json:"id,omitempty"`
	Name           string         `json:"name"`
	ClientCompany  string         `json:"client_company,omitempty"`
	GCEmail        string         `json:"gc_email,omitempty"`
	LaborRate      float64        `json:"labor_rate,omitempty"`
	ContractAmount float64        `json:"contract_amount,omitempty"`
	Status         project.Status `json:"status,omitempty"`
}

// projectResponse is the operator view of a project. The current PIN is
// only served by the pin endpoints.
type projectResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	ClientCompany  string         `json:"client_company,omitempty"`
	GCEmail        string         `json:"gc_email,omitempty"`
	LaborRate      float64        `json:"labor_rate"`
	ContractAmount float64        `json:"contract_amount"`
	Status         project.Status `json:"status"`
	HasPin         bool           `json:"has_pin"`
	PinUsed        bool           `json:"pin_used"`
	LastAccessAt   *time.Time     `json:"last_access_at,omitempty"`
	LastAccessIP   *string        `json:"last_access_ip,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func toProjectResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:             p.ID,
		Name:           p.Name,
		ClientCompany:  p.ClientCompany,
		GCEmail:        p.GCEmail,
		LaborRate:      p.LaborRate,
		ContractAmount: p.ContractAmount,
		Status:         p.Status,
		HasPin:         p.Pin.HasPin(),
		PinUsed:        p.Pin.PinUsed,
		LastAccessAt:   p.Pin.LastAccessAt,
		LastAccessIP:   p.Pin.LastAccessIP,
		CreatedAt:      p.CreatedAt,
	}
}

type gcAccessRequest struct {
	Pin       string `json:"pin"`
	ProjectID string `json:"project_id,omitempty"`
}

type createCrewLogRequest struct {
	ProjectID       string               `json:"project_id"`
	Date            string               `json:"date"`
	CrewMembers     []crewlog.CrewMember `json:"crew_members"`
	WorkDescription string               `json:"work_description,omitempty"`
}

type updateCrewLogRequest struct {
	Date            *string              `json:"date,omitempty"`
	CrewMembers     []crewlog.CrewMember `json:"crew_members,omitempty"`
	WorkDescription *string              `json:"work_description,omitempty"`
}

type createTagRequest struct {
	ProjectID         string                 `json:"project_id"`
	DateOfWork        string                 `json:"date_of_work"`
	ProjectName       string                 `json:"project_name,omitempty"`
	CompanyName       string                 `json:"company_name,omitempty"`
	GCEmail           string                 `json:"gc_email,omitempty"`
	Title             string                 `json:"tm_tag_title,omitempty"`
	DescriptionOfWork string                 `json:"description_of_work,omitempty"`
	LaborEntries      []tmtag.LaborEntry     `json:"labor_entries,omitempty"`
	MaterialEntries   []tmtag.MaterialEntry  `json:"material_entries,omitempty"`
	EquipmentEntries  []tmtag.EquipmentEntry `json:"equipment_entries,omitempty"`
	OtherEntries      []tmtag.OtherEntry     `json:"other_entries,omitempty"`
	Status            tmtag.Status           `json:"status,omitempty"`
}

type updateTagRequest struct {
	Title             *string                `json:"tm_tag_title,omitempty"`
	DescriptionOfWork *string                `json:"description_of_work,omitempty"`
	LaborEntries      []tmtag.LaborEntry     `json:"labor_entries,omitempty"`
	MaterialEntries   []tmtag.MaterialEntry  `json:"material_entries,omitempty"`
	EquipmentEntries  []tmtag.EquipmentEntry `json:"equipment_entries,omitempty"`
	OtherEntries      []tmtag.OtherEntry     `json:"other_entries,omitempty"`
}

type transitionRequest struct {
	Status tmtag.Status `json:"status"`
}
