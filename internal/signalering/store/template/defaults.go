package template

import "signalering/internal/signalering/models"

// DefaultTemplates are the templates shipped with the service. The postgres
// migration seeds the same rows; operators edit them in place.
func DefaultTemplates() []models.MailTemplate {
	return []models.MailTemplate{
		{
			ID:      models.TemplateTaskAssigned,
			Subject: "Taak toegewezen: {TASK_NAME}",
			Body:    "Beste {RECIPIENT_NAME},\n\nDe taak \"{TASK_NAME}\" bij zaak {CASE_NUMBER} is aan u toegewezen.\nDe taak moet uiterlijk {TASK_DUE_DATE} zijn afgerond.\n",
		},
		{
			ID:      models.TemplateTaskOverdue,
			Subject: "Taak verlopen: {TASK_NAME}",
			Body:    "Beste {RECIPIENT_NAME},\n\nDe taak \"{TASK_NAME}\" bij zaak {CASE_NUMBER} had uiterlijk {TASK_DUE_DATE} afgerond moeten zijn.\n",
		},
		{
			ID:      models.TemplateCaseDocumentAdded,
			Subject: "Document toegevoegd aan zaak {CASE_NUMBER}",
			Body:    "Beste {RECIPIENT_NAME},\n\nHet document \"{DOCUMENT_TITLE}\" is toegevoegd aan zaak {CASE_NUMBER} ({CASE_DESCRIPTION}).\n",
		},
		{
			ID:      models.TemplateCaseAssigned,
			Subject: "Zaak toegewezen: {CASE_NUMBER}",
			Body:    "Beste {RECIPIENT_NAME},\n\nZaak {CASE_NUMBER} ({CASE_DESCRIPTION}) is aan u toegewezen.\n",
		},
		{
			ID:      models.TemplateCaseTargetDate,
			Subject: "Streefdatum nadert: zaak {CASE_NUMBER}",
			Body:    "Beste {RECIPIENT_NAME},\n\nDe streefafhandeldatum van zaak {CASE_NUMBER} ({CASE_DESCRIPTION}) is {CASE_TARGET_DATE}.\n",
		},
		{
			ID:      models.TemplateCaseFatalDate,
			Subject: "Fatale datum nadert: zaak {CASE_NUMBER}",
			Body:    "Beste {RECIPIENT_NAME},\n\nDe uiterste afhandeldatum van zaak {CASE_NUMBER} ({CASE_DESCRIPTION}) is {CASE_FATAL_DATE}.\n",
		},
	}
}
