package mailtemplate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalering/internal/signalering/models"
	storetemplate "signalering/internal/signalering/store/template"
	"signalering/pkg/platform/sentinel"
)

type fakeLoader struct {
	cases     map[string]*models.CaseInfo
	tasks     map[string]*models.TaskInfo
	documents map[string]*models.DocumentInfo
}

func (f *fakeLoader) FindCase(_ context.Context, id string) (*models.CaseInfo, error) {
	if c, ok := f.cases[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("case %s: %w", id, sentinel.ErrNotFound)
}

func (f *fakeLoader) FindTask(_ context.Context, id string) (*models.TaskInfo, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("task %s: %w", id, sentinel.ErrNotFound)
}

func (f *fakeLoader) FindDocument(_ context.Context, id string) (*models.DocumentInfo, error) {
	if d, ok := f.documents[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
}

func newFakeLoader() *fakeLoader {
	target := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	return &fakeLoader{
		cases: map[string]*models.CaseInfo{
			"zaak-1": {ID: "zaak-1", Identification: "ZAAK-2026-0001", Description: "Dakkapel", TargetDate: &target},
		},
		tasks: map[string]*models.TaskInfo{
			"taak-1": {ID: "taak-1", CaseID: "zaak-1", Name: "Advies opvragen", DueDate: &due},
			"taak-9": {ID: "taak-9", CaseID: "zaak-404", Name: "Wees"},
		},
		documents: map[string]*models.DocumentInfo{
			"doc-1": {ID: "doc-1", CaseID: "zaak-1", Title: "Tekening.pdf"},
		},
	}
}

func TestSelect(t *testing.T) {
	cases := []struct {
		kind   models.Kind
		detail models.Detail
		want   models.TemplateID
		ok     bool
	}{
		{models.KindTaskAssigned, models.DetailNone, models.TemplateTaskAssigned, true},
		{models.KindTaskOverdue, models.DetailTargetDate, models.TemplateTaskOverdue, true},
		{models.KindCaseDocumentAdded, models.DetailNone, models.TemplateCaseDocumentAdded, true},
		{models.KindCaseAssigned, models.DetailNone, models.TemplateCaseAssigned, true},
		{models.KindCaseDueSoon, models.DetailTargetDate, models.TemplateCaseTargetDate, true},
		{models.KindCaseDueSoon, models.DetailFatalDate, models.TemplateCaseFatalDate, true},
		{models.KindCaseDueSoon, models.DetailNone, "", false},
		{models.KindCaseAssigned, models.DetailFatalDate, "", false},
		{"unknown", models.DetailNone, "", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+string(tc.detail), func(t *testing.T) {
			got, ok := Select(tc.kind, tc.detail)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGather(t *testing.T) {
	ctx := context.Background()
	loader := newFakeLoader()

	t.Run("case", func(t *testing.T) {
		src, err := Gather(ctx, loader, models.SubjectCase, "zaak-1")
		require.NoError(t, err)
		assert.Equal(t, "zaak-1", src.Case.ID)
		assert.Nil(t, src.Task)
	})

	t.Run("task loads its case", func(t *testing.T) {
		src, err := Gather(ctx, loader, models.SubjectTask, "taak-1")
		require.NoError(t, err)
		assert.Equal(t, "taak-1", src.Task.ID)
		assert.Equal(t, "zaak-1", src.Case.ID)
	})

	t.Run("document loads its case", func(t *testing.T) {
		src, err := Gather(ctx, loader, models.SubjectDocument, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", src.Document.ID)
		assert.Equal(t, "zaak-1", src.Case.ID)
	})

	t.Run("missing owning case", func(t *testing.T) {
		_, err := Gather(ctx, loader, models.SubjectTask, "taak-9")
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("unknown subject type", func(t *testing.T) {
		_, err := Gather(ctx, loader, "contact", "x")
		assert.Error(t, err)
	})
}

func TestFill(t *testing.T) {
	loader := newFakeLoader()
	src := models.Sources{Case: loader.cases["zaak-1"], Task: loader.tasks["taak-1"]}

	got := Fill("{RECIPIENT_NAME}: {TASK_NAME} ({CASE_NUMBER}) voor {TASK_DUE_DATE}, streef {CASE_TARGET_DATE}{CASE_FATAL_DATE}{DOCUMENT_TITLE}",
		src, models.Address{Name: "Jan"})
	assert.Equal(t, "Jan: Advies opvragen (ZAAK-2026-0001) voor 14-10-2026, streef 17-10-2026", got)

	assert.Equal(t, "{ONBEKEND} blijft", Fill("{ONBEKEND} blijft", models.Sources{}, models.Address{}),
		"unknown tokens are left alone")
}

func TestAssemble(t *testing.T) {
	ctx := context.Background()
	templates := storetemplate.NewInMemory()
	assembler, err := NewAssembler(templates, newFakeLoader())
	require.NoError(t, err)

	n := &models.Notification{
		Kind:        models.KindCaseDueSoon,
		Detail:      models.DetailTargetDate,
		SubjectType: models.SubjectCase,
		SubjectID:   "zaak-1",
		TargetType:  models.TargetUser,
		TargetID:    "u2",
		Timestamp:   time.Now(),
	}

	msg, err := assembler.Assemble(ctx, n, models.Address{Name: "Petra", Email: "petra@example.nl"})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, models.TemplateCaseTargetDate, msg.TemplateID)
	assert.Equal(t, "Streefdatum nadert: zaak ZAAK-2026-0001", msg.Subject)
	assert.Contains(t, msg.Body, "Beste Petra")
	assert.Contains(t, msg.Body, "17-10-2026")

	t.Run("unconfigured template yields no message", func(t *testing.T) {
		templates.Remove(models.TemplateCaseTargetDate)
		msg, err := assembler.Assemble(ctx, n, models.Address{})
		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	t.Run("no selection yields no message", func(t *testing.T) {
		other := *n
		other.Detail = models.DetailNone
		msg, err := assembler.Assemble(ctx, &other, models.Address{})
		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	_, err = NewAssembler(nil, newFakeLoader())
	assert.Error(t, err)
}
