package gcaccess

// PinInfo is the operator view of a project's current PIN.
type PinInfo struct {
	ProjectID string `json:"project_id"`
	Pin       string `json:"pin"`
	Used      bool   `json:"used"`
}

// ValidateRequest is one GC access attempt. ProjectID is optional.
type ValidateRequest struct {
	Pin       string
	ProjectID string
	IP        string
}

// Grant is returned on a successful validation. It carries only the
// matched project's identity.
type Grant struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Message     string `json:"message,omitempty"`
}
