package application

import (
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
)

type ApplicationType string

const (
	TypeLeave             ApplicationType = "leave"
	TypeExtraWorkingHours ApplicationType = "extra_working_hours"
	TypeOutdoorWork       ApplicationType = "outdoor_work"
)

func (t ApplicationType) IsValid() bool {
	switch t {
	case TypeLeave, TypeExtraWorkingHours, TypeOutdoorWork:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type StageRole string

const (
	StageChecker   StageRole = "checker"
	StageApprover1 StageRole = "approver_1"
	StageApprover2 StageRole = "approver_2"
	StageApprover3 StageRole = "approver_3"
	StageCompleted StageRole = "completed"
)

// StageOrder is the fixed pipeline order. Unconfigured stages are skipped.
var StageOrder = []StageRole{StageChecker, StageApprover1, StageApprover2, StageApprover3}

// Rank returns the position of r in StageOrder, len(StageOrder) for completed
// and -1 for unknown roles.
func (r StageRole) Rank() int {
	if r == StageCompleted {
		return len(StageOrder)
	}
	for i, s := range StageOrder {
		if s == r {
			return i
		}
	}
	return -1
}

func (r StageRole) IsValid() bool {
	return r != StageCompleted && r.Rank() >= 0
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Stage is one configured step of the approval pipeline. An empty Decision
// means the stage has not acted yet.
type Stage struct {
	Role       StageRole  `json:"role"`
	AssigneeID string     `json:"assignee_id"`
	Decision   Decision   `json:"decision,omitempty"`
	ActorID    *string    `json:"actor_id,omitempty"`
	ActedAt    *time.Time `json:"acted_at,omitempty"`
	Remarks    *string    `json:"remarks,omitempty"`
}

func (s Stage) HasActed() bool {
	return s.Decision != ""
}

type LeavePayload struct {
	LeaveTypeName string                  `json:"leave_type_name"`
	StartDate     string                  `json:"start_date"`
	EndDate       string                  `json:"end_date"`
	Session       attendance.LeaveSession `json:"session"`
	Reason        string                  `json:"reason"`
}

type ExtraWorkingHoursPayload struct {
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	TotalMinutes int    `json:"total_minutes"`
	Reason       string `json:"reason"`
}

type OutdoorWorkPayload struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
	Reason    string `json:"reason"`
}

// Payload carries exactly one variant, matching the application type.
type Payload struct {
	Leave             *LeavePayload             `json:"leave,omitempty"`
	ExtraWorkingHours *ExtraWorkingHoursPayload `json:"extra_working_hours,omitempty"`
	OutdoorWork       *OutdoorWorkPayload       `json:"outdoor_work,omitempty"`
}

type Application struct {
	ID              string
	ApplicantID     string
	Type            ApplicationType
	Payload         Payload
	Status          Status
	CurrentStage    StageRole
	Stages          []Stage
	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string
	CancelledBy     *string
	CancelledAt     *time.Time
	Version         int
	SubmittedAt     time.Time
	UpdatedAt       time.Time
}

// StageIndex returns the index of role within the configured stages.
func (a Application) StageIndex(role StageRole) (int, bool) {
	for i, s := range a.Stages {
		if s.Role == role {
			return i, true
		}
	}
	return -1, false
}

func (a Application) AnyStageActed() bool {
	for _, s := range a.Stages {
		if s.HasActed() {
			return true
		}
	}
	return false
}

// CurrentAssignee returns the user expected to act next, if any.
func (a Application) CurrentAssignee() (string, bool) {
	if a.Status != StatusPending {
		return "", false
	}
	i, ok := a.StageIndex(a.CurrentStage)
	if !ok {
		return "", false
	}
	return a.Stages[i].AssigneeID, true
}

// IsParticipant reports whether userID is the applicant or one of the assignees.
func (a Application) IsParticipant(userID string) bool {
	if a.ApplicantID == userID {
		return true
	}
	for _, s := range a.Stages {
		if s.AssigneeID == userID {
			return true
		}
	}
	return false
}

type EventAction string

const (
	EventSubmitted EventAction = "submitted"
	EventApproved  EventAction = "approved"
	EventRejected  EventAction = "rejected"
	EventCancelled EventAction = "cancelled"
)

// ApplicationEvent is one entry of the audit trail.
type ApplicationEvent struct {
	ID            string
	ApplicationID string
	Action        EventAction
	Stage         *StageRole
	ActorID       string
	Remarks       *string
	CreatedAt     time.Time
}
