// Package mailtemplate selects, fills and assembles notification mails.
package mailtemplate

import "signalering/internal/signalering/models"

type selectionKey struct {
	kind   models.Kind
	detail models.Detail
}

var selection = map[selectionKey]models.TemplateID{
	{models.KindTaskAssigned, models.DetailNone}:      models.TemplateTaskAssigned,
	{models.KindTaskOverdue, models.DetailTargetDate}: models.TemplateTaskOverdue,
	{models.KindCaseDocumentAdded, models.DetailNone}: models.TemplateCaseDocumentAdded,
	{models.KindCaseAssigned, models.DetailNone}:      models.TemplateCaseAssigned,
	{models.KindCaseDueSoon, models.DetailTargetDate}: models.TemplateCaseTargetDate,
	{models.KindCaseDueSoon, models.DetailFatalDate}:  models.TemplateCaseFatalDate,
}

// Select returns the template for a (kind, detail) pair, false when none applies.
func Select(kind models.Kind, detail models.Detail) (models.TemplateID, bool) {
	id, ok := selection[selectionKey{kind, detail}]
	return id, ok
}
