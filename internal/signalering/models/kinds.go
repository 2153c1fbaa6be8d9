package models

import (
	dErrors "signalering/pkg/domain-errors"
)

// Kind is the category of event being signaled.
type Kind string

const (
	KindTaskAssigned      Kind = "task_assigned"
	KindTaskOverdue       Kind = "task_overdue"
	KindCaseAssigned      Kind = "case_assigned"
	KindCaseDocumentAdded Kind = "case_document_added"
	KindCaseDueSoon       Kind = "case_due_soon"
)

// kindSubjects maps each kind to the subject type its notifications are about.
var kindSubjects = map[Kind]SubjectType{
	KindTaskAssigned:      SubjectTask,
	KindTaskOverdue:       SubjectTask,
	KindCaseAssigned:      SubjectCase,
	KindCaseDocumentAdded: SubjectDocument,
	KindCaseDueSoon:       SubjectCase,
}

// AllKinds returns every supported kind in a stable order.
func AllKinds() []Kind {
	return []Kind{KindTaskAssigned, KindTaskOverdue, KindCaseAssigned, KindCaseDocumentAdded, KindCaseDueSoon}
}

func (k Kind) IsValid() bool {
	_, ok := kindSubjects[k]
	return ok
}

// IsDeadline reports whether notifications of this kind are raised by the
// deadline scanner and therefore carry a Detail and a ledger entry.
func (k Kind) IsDeadline() bool {
	return k == KindTaskOverdue || k == KindCaseDueSoon
}

// KindsAbout returns the kinds whose notifications refer to subjectType.
func KindsAbout(subjectType SubjectType) []Kind {
	var kinds []Kind
	for _, k := range AllKinds() {
		if kindSubjects[k] == subjectType {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// SubjectType returns the subject type notifications of this kind refer to.
func (k Kind) SubjectType() SubjectType {
	return kindSubjects[k]
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind cannot be empty")
	}
	k := Kind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid kind: "+s)
	}
	return k, nil
}

// Detail sub-classifies a deadline notification.
type Detail string

const (
	DetailNone       Detail = ""
	DetailTargetDate Detail = "target_date"
	DetailFatalDate  Detail = "fatal_date"
)

func (d Detail) IsValid() bool {
	switch d {
	case DetailNone, DetailTargetDate, DetailFatalDate:
		return true
	}
	return false
}

// DeadlineDetails lists the details a case deadline can be scanned for.
func DeadlineDetails() []Detail {
	return []Detail{DetailTargetDate, DetailFatalDate}
}

// SubjectType is what a notification is about.
type SubjectType string

const (
	SubjectCase     SubjectType = "case"
	SubjectTask     SubjectType = "task"
	SubjectDocument SubjectType = "document"
)

func (t SubjectType) IsValid() bool {
	return t == SubjectCase || t == SubjectTask || t == SubjectDocument
}

// TargetType is who receives a notification.
type TargetType string

const (
	TargetUser  TargetType = "user"
	TargetGroup TargetType = "group"
)

func (t TargetType) IsValid() bool {
	return t == TargetUser || t == TargetGroup
}

// ParseTargetType validates s as a TargetType.
func ParseTargetType(s string) (TargetType, error) {
	t := TargetType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid target type: must be 'user' or 'group'")
	}
	return t, nil
}

// SkipReason explains why a candidate did not produce a mail.
type SkipReason string

const (
	SkipUnassigned   SkipReason = "unassigned"
	SkipMailDisabled SkipReason = "mail_disabled"
	SkipAlreadySent  SkipReason = "already_sent"
	SkipNoAddress    SkipReason = "no_address"
	SkipNoTemplate   SkipReason = "no_template"
)
