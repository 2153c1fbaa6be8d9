package mailtemplate

import (
	"strings"
	"time"

	"signalering/internal/signalering/models"
)

const dateLayout = "02-01-2006"

// Fill replaces the {PLACEHOLDER} tokens of text with values from src and the
// recipient. Tokens without a value become empty.
func Fill(text string, src models.Sources, recipient models.Address) string {
	var values []string
	set := func(token, value string) {
		values = append(values, "{"+token+"}", value)
	}

	set("RECIPIENT_NAME", recipient.Name)
	var c models.CaseInfo
	if src.Case != nil {
		c = *src.Case
	}
	set("CASE_NUMBER", c.Identification)
	set("CASE_DESCRIPTION", c.Description)
	set("CASE_TYPE", c.CaseType)
	set("CASE_TARGET_DATE", formatDate(c.TargetDate))
	set("CASE_FATAL_DATE", formatDate(c.FatalDate))

	var task models.TaskInfo
	if src.Task != nil {
		task = *src.Task
	}
	set("TASK_NAME", task.Name)
	set("TASK_DUE_DATE", formatDate(task.DueDate))

	var doc models.DocumentInfo
	if src.Document != nil {
		doc = *src.Document
	}
	set("DOCUMENT_TITLE", doc.Title)
	set("DOCUMENT_URL", doc.URL)

	return strings.NewReplacer(values...).Replace(text)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
