package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
)

// Employee is the directory view the core needs: who the user is and how
// they are employed.
type Employee struct {
	ID               string
	UserID           string
	FullName         string
	EmploymentType   EmploymentType
	EmploymentMode   attendance.EmploymentMode
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	ResignationDate  *time.Time
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
	EmploymentTypeFreelance  EmploymentType = "freelance"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// ApprovalRoute lists the assignees configured for an applicant and
// application type. Nil entries are skipped stages.
type ApprovalRoute struct {
	UserID          string
	ApplicationType string
	CheckerID       *string
	Approver1ID     *string
	Approver2ID     *string
	Approver3ID     *string
}
