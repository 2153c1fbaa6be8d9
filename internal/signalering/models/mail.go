package models

// TemplateID names a mail template.
type TemplateID string

const (
	TemplateTaskAssigned      TemplateID = "task-assigned"
	TemplateTaskOverdue       TemplateID = "task-overdue"
	TemplateCaseDocumentAdded TemplateID = "case-document-added"
	TemplateCaseAssigned      TemplateID = "case-assigned"
	TemplateCaseTargetDate    TemplateID = "case-target-date"
	TemplateCaseFatalDate     TemplateID = "case-fatal-date"
)

// MailTemplate is a stored subject and body with placeholders.
type MailTemplate struct {
	ID      TemplateID
	Subject string
	Body    string
}

// Address is a mailable recipient or sender.
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sources are the entities a mail was assembled from.
// Case is set for every subject type; Task and Document only for their kinds.
type Sources struct {
	Case     *CaseInfo
	Task     *TaskInfo
	Document *DocumentInfo
}

// Message is a resolved template ready to be addressed.
type Message struct {
	TemplateID TemplateID
	Subject    string
	Body       string
	Sources    Sources
}

// Mail is what the transport sends.
type Mail struct {
	From    Address
	To      Address
	ReplyTo *Address
	Subject string
	Body    string
	Sources Sources
}
