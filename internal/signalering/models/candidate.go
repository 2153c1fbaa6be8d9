package models

import (
	"time"
)

// Candidate is a subject returned by the case/task index together with its owner.
// OwnerID is empty for unassigned subjects.
type Candidate struct {
	SubjectID string `db:"subject_id"`
	OwnerID   string `db:"owner_id"`
}

// CaseTypeWindow holds the warning windows, in days, configured for one case type.
// A nil window means no deadline notifications for that detail.
type CaseTypeWindow struct {
	CaseTypeID     string
	TargetDateDays *int
	FatalDateDays  *int
}

// Days returns the window for detail, or nil when not configured.
func (w CaseTypeWindow) Days(detail Detail) *int {
	switch detail {
	case DetailTargetDate:
		return w.TargetDateDays
	case DetailFatalDate:
		return w.FatalDateDays
	}
	return nil
}

// DeadlineField is the case column a detail is scanned on.
type DeadlineField string

const (
	FieldTargetDate DeadlineField = "target_date"
	FieldFatalDate  DeadlineField = "fatal_date"
)

// FieldFor maps a detail to its deadline column.
func FieldFor(detail Detail) (DeadlineField, bool) {
	switch detail {
	case DetailTargetDate:
		return FieldTargetDate, true
	case DetailFatalDate:
		return FieldFatalDate, true
	}
	return "", false
}

// CaseInfo is the case data templates can reference.
type CaseInfo struct {
	ID             string
	Identification string
	Description    string
	CaseTypeID     string
	CaseType       string
	OwnerID        string
	TargetDate     *time.Time
	FatalDate      *time.Time
}

// TaskInfo is the task data templates can reference.
type TaskInfo struct {
	ID         string
	CaseID     string
	Name       string
	AssigneeID string
	DueDate    *time.Time
}

// DocumentInfo is the document data templates can reference.
type DocumentInfo struct {
	ID     string
	CaseID string
	Title  string
	URL    string
}
