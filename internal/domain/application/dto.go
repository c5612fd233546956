package application

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

// ========================================
// APPLICATION DTOs
// ========================================

// StageAssignees maps each pipeline role to its assignee. A nil entry leaves
// the stage unconfigured.
type StageAssignees struct {
	Checker   *string `json:"checker,omitempty"`
	Approver1 *string `json:"approver_1,omitempty"`
	Approver2 *string `json:"approver_2,omitempty"`
	Approver3 *string `json:"approver_3,omitempty"`
}

func (a StageAssignees) byRole() map[StageRole]*string {
	return map[StageRole]*string{
		StageChecker:   a.Checker,
		StageApprover1: a.Approver1,
		StageApprover2: a.Approver2,
		StageApprover3: a.Approver3,
	}
}

// Stages returns the configured stages in pipeline order.
func (a StageAssignees) Stages() []Stage {
	byRole := a.byRole()
	var stages []Stage
	for _, role := range StageOrder {
		if id := byRole[role]; id != nil && !validator.IsEmpty(*id) {
			stages = append(stages, Stage{Role: role, AssigneeID: *id})
		}
	}
	return stages
}

func (a StageAssignees) IsEmpty() bool {
	return len(a.Stages()) == 0
}

type SubmitApplicationRequest struct {
	ApplicantID    string          `json:"-"`
	Type           ApplicationType `json:"type"`
	Payload        Payload         `json:"payload"`
	StageAssignees *StageAssignees `json:"stage_assignees,omitempty"`
}

func (r *SubmitApplicationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ApplicantID) {
		errs = append(errs, validator.ValidationError{
			Field:   "applicant_id",
			Message: "applicant_id is required",
		})
	}

	if !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: leave, extra_working_hours, outdoor_work",
		})
	} else {
		errs = append(errs, r.validatePayload()...)
	}

	if r.StageAssignees != nil {
		for role, id := range r.StageAssignees.byRole() {
			if id != nil && validator.IsEmpty(*id) {
				errs = append(errs, validator.ValidationError{
					Field:   "stage_assignees." + string(role),
					Message: string(role) + " must not be empty when provided",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *SubmitApplicationRequest) validatePayload() validator.ValidationErrors {
	var errs validator.ValidationErrors

	variants := 0
	for _, set := range []bool{r.Payload.Leave != nil, r.Payload.ExtraWorkingHours != nil, r.Payload.OutdoorWork != nil} {
		if set {
			variants++
		}
	}
	if variants > 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "payload",
			Message: "payload must carry exactly one variant",
		})
		return errs
	}

	switch r.Type {
	case TypeLeave:
		p := r.Payload.Leave
		if p == nil {
			return append(errs, missingPayload("payload.leave"))
		}
		if validator.IsEmpty(p.LeaveTypeName) {
			errs = append(errs, validator.ValidationError{
				Field:   "payload.leave.leave_type_name",
				Message: "leave_type_name is required",
			})
		}
		errs = append(errs, validateDateRange("payload.leave", p.StartDate, p.EndDate)...)
		if p.Session == "" {
			p.Session = attendance.LeaveSessionFull
		}
		validSessions := []string{string(attendance.LeaveSessionMorning), string(attendance.LeaveSessionAfternoon), string(attendance.LeaveSessionFull)}
		if !validator.IsInSlice(string(p.Session), validSessions) {
			errs = append(errs, validator.ValidationError{
				Field:   "payload.leave.session",
				Message: "session must be one of: morning, afternoon, full",
			})
		}
		errs = append(errs, requireReason("payload.leave.reason", p.Reason)...)

	case TypeExtraWorkingHours:
		p := r.Payload.ExtraWorkingHours
		if p == nil {
			return append(errs, missingPayload("payload.extra_working_hours"))
		}
		errs = append(errs, validateDayWindow("payload.extra_working_hours", p.Date, p.StartTime, p.EndTime)...)
		if p.TotalMinutes <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "payload.extra_working_hours.total_minutes",
				Message: "total_minutes must be greater than 0",
			})
		}
		errs = append(errs, requireReason("payload.extra_working_hours.reason", p.Reason)...)

	case TypeOutdoorWork:
		p := r.Payload.OutdoorWork
		if p == nil {
			return append(errs, missingPayload("payload.outdoor_work"))
		}
		errs = append(errs, validateDayWindow("payload.outdoor_work", p.Date, p.StartTime, p.EndTime)...)
		if validator.IsEmpty(p.Location) {
			errs = append(errs, validator.ValidationError{
				Field:   "payload.outdoor_work.location",
				Message: "location is required",
			})
		}
		errs = append(errs, requireReason("payload.outdoor_work.reason", p.Reason)...)
	}

	return errs
}

func missingPayload(field string) validator.ValidationError {
	return validator.ValidationError{
		Field:   field,
		Message: "payload for this application type is required",
	}
}

func requireReason(field, reason string) validator.ValidationErrors {
	if validator.IsEmpty(reason) {
		return validator.ValidationErrors{{Field: field, Message: "reason is required"}}
	}
	if len(reason) > 1000 {
		return validator.ValidationErrors{{Field: field, Message: "reason must not exceed 1000 characters"}}
	}
	return nil
}

func validateDateRange(prefix, start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startDate, okStart := validator.IsValidDate(start)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ".start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	endDate, okEnd := validator.IsValidDate(end)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ".end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ".end_date",
			Message: "end_date must not be before start_date",
		})
	}

	return errs
}

func validateDayWindow(prefix, date, start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ".date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsValidClock(start) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ".start_time",
			Message: "start_time must be in HH:MM or HH:MM:SS format",
		})
	}
	if !validator.IsValidClock(end) {
		errs = append(errs, validator.ValidationError{
			Field:   prefix + ".end_time",
			Message: "end_time must be in HH:MM or HH:MM:SS format",
		})
	}

	return errs
}

type ActRequest struct {
	ApplicationID string    `json:"-"`
	ActorID       string    `json:"-"`
	Stage         StageRole `json:"stage"`
	Decision      Decision  `json:"decision"`
	Remarks       *string   `json:"remarks,omitempty"`
}

func (r *ActRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ApplicationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "application_id",
			Message: "application_id is required",
		})
	}
	if !r.Stage.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "stage",
			Message: "stage must be one of: checker, approver_1, approver_2, approver_3",
		})
	}
	if !r.Decision.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: approve, reject",
		})
	}
	if r.Remarks != nil && len(*r.Remarks) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "remarks",
			Message: "remarks must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CancelRequest struct {
	ApplicationID string `json:"-"`
	ActorID       string `json:"-"`
	// Override lets an administrator cancel on behalf of the applicant.
	Override bool `json:"-"`
}

// ViewRequest identifies who is reading an application.
type ViewRequest struct {
	ApplicationID string
	ViewerID      string
	CanViewAll    bool
}

type ApplicationFilter struct {
	Type   *string `json:"type,omitempty"`
	Status *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ApplicationFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Type != nil && !ApplicationType(*f.Type).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: leave, extra_working_hours, outdoor_work",
		})
	}

	if f.Status != nil {
		validStatuses := []string{string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusCancelled)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, approved, rejected, cancelled",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type StageResponse struct {
	Role       StageRole `json:"role"`
	AssigneeID string    `json:"assignee_id"`
	Decision   *Decision `json:"decision"`
	ActorID    *string   `json:"actor_id"`
	ActedAt    *string   `json:"acted_at"`
	Remarks    *string   `json:"remarks"`
}

type ApplicationResponse struct {
	ID              string          `json:"id"`
	ApplicantID     string          `json:"applicant_id"`
	Type            ApplicationType `json:"type"`
	Payload         Payload         `json:"payload"`
	Status          Status          `json:"status"`
	CurrentStage    StageRole       `json:"current_stage"`
	Stages          []StageResponse `json:"stages"`
	RejectedBy      *string         `json:"rejected_by"`
	RejectedAt      *string         `json:"rejected_at"`
	RejectionReason *string         `json:"rejection_reason"`
	CancelledBy     *string         `json:"cancelled_by"`
	CancelledAt     *string         `json:"cancelled_at"`
	Version         int             `json:"version"`
	SubmittedAt     string          `json:"submitted_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type ListApplicationResponse struct {
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
	Showing      string                `json:"showing"`
	Applications []ApplicationResponse `json:"applications"`
}

type ApplicationEventResponse struct {
	ID            string      `json:"id"`
	ApplicationID string      `json:"application_id"`
	Action        EventAction `json:"action"`
	Stage         *StageRole  `json:"stage"`
	ActorID       string      `json:"actor_id"`
	Remarks       *string     `json:"remarks"`
	CreatedAt     string      `json:"created_at"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ToApplicationResponse(a Application) ApplicationResponse {
	stages := make([]StageResponse, 0, len(a.Stages))
	for _, s := range a.Stages {
		sr := StageResponse{
			Role:       s.Role,
			AssigneeID: s.AssigneeID,
			ActorID:    s.ActorID,
			ActedAt:    formatTime(s.ActedAt),
			Remarks:    s.Remarks,
		}
		if s.HasActed() {
			d := s.Decision
			sr.Decision = &d
		}
		stages = append(stages, sr)
	}

	return ApplicationResponse{
		ID:              a.ID,
		ApplicantID:     a.ApplicantID,
		Type:            a.Type,
		Payload:         a.Payload,
		Status:          a.Status,
		CurrentStage:    a.CurrentStage,
		Stages:          stages,
		RejectedBy:      a.RejectedBy,
		RejectedAt:      formatTime(a.RejectedAt),
		RejectionReason: a.RejectionReason,
		CancelledBy:     a.CancelledBy,
		CancelledAt:     formatTime(a.CancelledAt),
		Version:         a.Version,
		SubmittedAt:     a.SubmittedAt.Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.Format(time.RFC3339),
	}
}

func ToListApplicationResponse(apps []Application, total int64, page, limit int) ListApplicationResponse {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	items := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		items = append(items, ToApplicationResponse(a))
	}

	from := (page-1)*limit + 1
	to := from + len(items) - 1
	showing := fmt.Sprintf("%d-%d of %d", from, to, total)
	if len(items) == 0 {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return ListApplicationResponse{
		TotalCount:   total,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		Showing:      showing,
		Applications: items,
	}
}

func ToApplicationEventResponse(e ApplicationEvent) ApplicationEventResponse {
	return ApplicationEventResponse{
		ID:            e.ID,
		ApplicationID: e.ApplicationID,
		Action:        e.Action,
		Stage:         e.Stage,
		ActorID:       e.ActorID,
		Remarks:       e.Remarks,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
