package mailtemplate

import (
	"context"
	"errors"
	"fmt"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
)

// Assembler turns a notification into a filled message.
type Assembler struct {
	templates ports.TemplateStore
	loader    ports.SourceLoader
}

func NewAssembler(templates ports.TemplateStore, loader ports.SourceLoader) (*Assembler, error) {
	if templates == nil {
		return nil, errors.New("template store is required")
	}
	if loader == nil {
		return nil, errors.New("source loader is required")
	}
	return &Assembler{templates: templates, loader: loader}, nil
}

// Assemble returns nil, nil when no template is configured for the
// notification's kind and detail.
func (a *Assembler) Assemble(ctx context.Context, n *models.Notification, recipient models.Address) (*models.Message, error) {
	id, ok := Select(n.Kind, n.Detail)
	if !ok {
		return nil, nil
	}
	tmpl, err := a.templates.FindTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", id, err)
	}
	if tmpl == nil {
		return nil, nil
	}

	src, err := Gather(ctx, a.loader, n.SubjectType, n.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("gathering sources for %s %s: %w", n.SubjectType, n.SubjectID, err)
	}

	return &models.Message{
		TemplateID: id,
		Subject:    Fill(tmpl.Subject, src, recipient),
		Body:       Fill(tmpl.Body, src, recipient),
		Sources:    src,
	}, nil
}
