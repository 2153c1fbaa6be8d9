package mailtemplate

import (
	"context"
	"fmt"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
)

// Gather loads the entities a mail about subjectID is filled from. Task and
// document subjects also load their owning case.
func Gather(ctx context.Context, loader ports.SourceLoader, subjectType models.SubjectType, subjectID string) (models.Sources, error) {
	var src models.Sources
	switch subjectType {
	case models.SubjectCase:
		c, err := loader.FindCase(ctx, subjectID)
		if err != nil {
			return src, err
		}
		src.Case = c
	case models.SubjectTask:
		task, err := loader.FindTask(ctx, subjectID)
		if err != nil {
			return src, err
		}
		c, err := loader.FindCase(ctx, task.CaseID)
		if err != nil {
			return src, err
		}
		src.Task, src.Case = task, c
	case models.SubjectDocument:
		doc, err := loader.FindDocument(ctx, subjectID)
		if err != nil {
			return src, err
		}
		c, err := loader.FindCase(ctx, doc.CaseID)
		if err != nil {
			return src, err
		}
		src.Document, src.Case = doc, c
	default:
		return src, fmt.Errorf("unsupported subject type %q", subjectType)
	}
	return src, nil
}
