package core

import "time"

// PipelineStatus is the lifecycle state of a pipeline definition.
type PipelineStatus string

// Pipeline status constants.
const (
	PipelineIdle      PipelineStatus = "Idle"
	PipelineRunning   PipelineStatus = "Running"
	PipelineSucceeded PipelineStatus = "Succeeded"
	PipelineFailed    PipelineStatus = "Failed"
)

// Valid reports whether s is a known pipeline status.
func (s PipelineStatus) Valid() bool {
	switch s {
	case PipelineIdle, PipelineRunning, PipelineSucceeded, PipelineFailed:
		return true
	default:
		return false
	}
}

// Pipeline is a data-pipeline definition linked to a connection.
//
// ConnectionName is a snapshot taken when the link was made. ConnectionID is
// not enforced and dangles once the connection is removed.
type Pipeline struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	ConnectionID   string         `json:"connectionId"`
	ConnectionName string         `json:"connectionName"`
	Schedule       string         `json:"schedule"`
	Owner          string         `json:"owner"`
	Description    string         `json:"description"`
	Status         PipelineStatus `json:"status"`
	LastRunAt      *time.Time     `json:"lastRunAt"`
}

// PipelineInput holds the mutable fields of a pipeline.
type PipelineInput struct {
	Name           string
	ConnectionID   string
	ConnectionName string
	Schedule       string
	Owner          string
	Description    string
}

// Clone returns a deep copy of p.
func (p Pipeline) Clone() Pipeline {
	if p.LastRunAt != nil {
		at := *p.LastRunAt
		p.LastRunAt = &at
	}
	return p
}

// Apply overwrites the mutable fields of p with in.
// Status and LastRunAt are owned by runs and left untouched.
func (p *Pipeline) Apply(in PipelineInput) {
	p.Name = in.Name
	p.ConnectionID = in.ConnectionID
	p.ConnectionName = in.ConnectionName
	p.Schedule = in.Schedule
	p.Owner = in.Owner
	p.Description = in.Description
}

// Input returns the mutable fields of p.
func (p Pipeline) Input() PipelineInput {
	return PipelineInput{
		Name:           p.Name,
		ConnectionID:   p.ConnectionID,
		ConnectionName: p.ConnectionName,
		Schedule:       p.Schedule,
		Owner:          p.Owner,
		Description:    p.Description,
	}
}
