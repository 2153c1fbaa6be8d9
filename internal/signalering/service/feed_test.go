package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signalering/internal/signalering/models"
	sentstore "signalering/internal/signalering/store/sent"
	dErrors "signalering/pkg/domain-errors"
)

// failingLedger fails subject cleanup and delegates everything else.
type failingLedger struct {
	*sentstore.InMemoryLedger
	err error
}

func (f failingLedger) DeleteBySubject(context.Context, models.SubjectType, string) (int, error) {
	return 0, f.err
}

type NotificationServiceSuite struct {
	suite.Suite
	h   *harness
	svc *NotificationService
}

func TestNotificationServiceSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.h = newHarness(s.T())
	s.h.addUser("u1", "Anna de Vries", "anna@gemeente.nl")
	s.h.exec(`INSERT INTO user_groups (id, name, email) VALUES (?, ?, ?)`, "g1", "Team Vergunningen", "vergunningen@gemeente.nl")
	s.h.addCaseType("X", 5, nil)
	s.h.addCase("C", "X", "u1", day(20), nil)
	s.h.addTask("T", "C", "u1", day(3))
	s.h.exec(`INSERT INTO documents (id, case_id, title, url) VALUES (?, ?, ?, ?)`, "D", "C", "Bouwtekening", "https://zaken.gemeente.nl/documenten/D")

	var err error
	s.svc, err = NewNotificationService(s.h.notifications, s.h.settings, s.h.ledger, s.h.mailer,
		WithLogger(discardLogger()), WithPublisher(s.h.publisher))
	s.Require().NoError(err)
}

func (s *NotificationServiceSuite) taskAssigned(at time.Time) *models.Notification {
	return &models.Notification{
		Kind:        models.KindTaskAssigned,
		SubjectType: models.SubjectTask,
		SubjectID:   "T",
		TargetType:  models.TargetUser,
		TargetID:    "u1",
		Timestamp:   at,
	}
}

func (s *NotificationServiceSuite) TestSignal() {
	s.Run("stores and announces without mail when not opted in", func() {
		s.Require().NoError(s.svc.Signal(s.h.ctx(), s.taskAssigned(testNow)))

		count, err := s.svc.Count(s.h.ctx(), models.KindTaskAssigned, models.TargetUser, "u1")
		s.Require().NoError(err)
		s.Equal(1, count)
		s.Len(s.h.publisher.Events(), 1)
		s.Empty(s.h.sender.sent())
	})

	s.Run("mails when the target opted in", func() {
		s.h.optIn(models.KindTaskAssigned, models.TargetUser, "u1")
		s.Require().NoError(s.svc.Signal(s.h.ctx(), s.taskAssigned(testNow.Add(time.Hour))))

		mails := s.h.sender.sent()
		s.Require().Len(mails, 1)
		s.Equal("Taak toegewezen: Taak T", mails[0].Subject)
	})

	s.Run("repeated signal replaces the timestamp", func() {
		s.Require().NoError(s.svc.Signal(s.h.ctx(), s.taskAssigned(testNow.Add(2*time.Hour))))

		list, err := s.svc.List(s.h.ctx(), models.NotificationFilter{TargetType: models.TargetUser, TargetID: "u1"})
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(testNow.Add(2*time.Hour), list[0].Timestamp)
	})

	s.Run("signals never touch the sent ledger", func() {
		rec, err := s.h.ledger.Find(context.Background(), models.SentKey{
			TargetType: models.TargetUser, TargetID: "u1", Kind: models.KindTaskAssigned, SubjectID: "T",
		})
		s.Require().NoError(err)
		s.Nil(rec)
	})
}

func (s *NotificationServiceSuite) TestSignalGroupDocument() {
	s.h.optIn(models.KindCaseDocumentAdded, models.TargetGroup, "g1")
	err := s.svc.Signal(s.h.ctx(), &models.Notification{
		Kind:        models.KindCaseDocumentAdded,
		SubjectType: models.SubjectDocument,
		SubjectID:   "D",
		TargetType:  models.TargetGroup,
		TargetID:    "g1",
	})
	s.Require().NoError(err)

	mails := s.h.sender.sent()
	s.Require().Len(mails, 1)
	s.Equal("vergunningen@gemeente.nl", mails[0].To.Email)
	s.Contains(mails[0].Body, "Bouwtekening")

	latest, err := s.svc.Latest(s.h.ctx(), models.TargetGroup, "g1")
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.Equal(testNow, *latest, "missing timestamp defaults to the run clock")
}

func (s *NotificationServiceSuite) TestSignalMailFailureIsNotReturned() {
	s.h.optIn(models.KindTaskAssigned, models.TargetUser, "u1")
	s.h.sender.failures = 1

	s.Require().NoError(s.svc.Signal(s.h.ctx(), s.taskAssigned(testNow)))
	count, err := s.svc.Count(s.h.ctx(), models.KindTaskAssigned, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *NotificationServiceSuite) TestSignalRejects() {
	s.Run("nil notification", func() {
		err := s.svc.Signal(s.h.ctx(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
	s.Run("deadline kinds", func() {
		err := s.svc.Signal(s.h.ctx(), &models.Notification{
			Kind: models.KindCaseDueSoon, Detail: models.DetailTargetDate,
			SubjectType: models.SubjectCase, SubjectID: "C",
			TargetType: models.TargetUser, TargetID: "u1",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("invalid notification", func() {
		n := s.taskAssigned(testNow)
		n.TargetID = ""
		s.True(dErrors.HasCode(s.svc.Signal(s.h.ctx(), n), dErrors.CodeValidation))
	})
	s.Empty(s.h.publisher.Events())
}

func (s *NotificationServiceSuite) TestDelete() {
	s.Require().NoError(s.svc.Signal(s.h.ctx(), s.taskAssigned(testNow)))
	s.Require().NoError(s.svc.Signal(s.h.ctx(), &models.Notification{
		Kind: models.KindCaseAssigned, SubjectType: models.SubjectCase, SubjectID: "C",
		TargetType: models.TargetUser, TargetID: "u1", Timestamp: testNow,
	}))
	s.h.publisher.Reset()

	s.Run("requires a target", func() {
		_, err := s.svc.Delete(s.h.ctx(), models.NotificationFilter{Kinds: []models.Kind{models.KindTaskAssigned}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("removes matching rows and publishes once", func() {
		removed, err := s.svc.Delete(s.h.ctx(), models.NotificationFilter{
			TargetType: models.TargetUser, TargetID: "u1", Kinds: []models.Kind{models.KindTaskAssigned},
		})
		s.Require().NoError(err)
		s.Equal(1, removed)

		evts := s.h.publisher.Events()
		s.Require().Len(evts, 1)
		s.Equal(models.ChangeDeleted, evts[0].Type)
		s.Equal(models.KindTaskAssigned, evts[0].Kind)
		s.Equal(1, evts[0].Count)
	})

	s.Run("nothing removed publishes nothing", func() {
		s.h.publisher.Reset()
		removed, err := s.svc.Delete(s.h.ctx(), models.NotificationFilter{
			TargetType: models.TargetUser, TargetID: "u1", Kinds: []models.Kind{models.KindTaskAssigned},
		})
		s.Require().NoError(err)
		s.Zero(removed)
		s.Empty(s.h.publisher.Events())
	})
}

func (s *NotificationServiceSuite) TestClearSubject() {
	s.h.optIn(models.KindCaseDueSoon, models.TargetUser, "u1")
	s.h.addCase("Z", "X", "u1", day(1), nil)
	_, err := s.h.engine().RunCases(s.h.ctx())
	s.Require().NoError(err)
	s.Require().NotNil(s.h.record(models.KindCaseDueSoon, "Z", "u1", models.DetailTargetDate))
	s.h.publisher.Reset()

	removed, err := s.svc.ClearSubject(s.h.ctx(), models.SubjectCase, "Z")
	s.Require().NoError(err)
	s.Equal(1, removed)
	s.Nil(s.h.record(models.KindCaseDueSoon, "Z", "u1", models.DetailTargetDate))
	s.Empty(s.h.publisher.Events(), "clearing a closed subject is silent")

	_, err = s.svc.ClearSubject(s.h.ctx(), "zaak", "Z")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *NotificationServiceSuite) TestClearSubjectKeepsTaskWithSameID() {
	s.h.optIn(models.KindCaseDueSoon, models.TargetUser, "u1")
	s.h.optIn(models.KindTaskOverdue, models.TargetUser, "u1")
	s.h.addCase("Z", "X", "u1", day(1), nil)
	s.h.addTask("Z", "C", "u1", day(0))
	_, err := s.h.engine().Run(s.h.ctx())
	s.Require().NoError(err)

	_, err = s.svc.ClearSubject(s.h.ctx(), models.SubjectCase, "Z")
	s.Require().NoError(err)
	s.Nil(s.h.record(models.KindCaseDueSoon, "Z", "u1", models.DetailTargetDate))
	s.NotNil(s.h.record(models.KindTaskOverdue, "Z", "u1", models.DetailTargetDate))
}

func (s *NotificationServiceSuite) TestClearSubjectLedgerFailure() {
	failing := errors.New("ledger down")
	svc, err := NewNotificationService(s.h.notifications, s.h.settings, failingLedger{s.h.ledger, failing}, s.h.mailer,
		WithLogger(discardLogger()))
	s.Require().NoError(err)

	_, err = svc.ClearSubject(s.h.ctx(), models.SubjectCase, "C")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *NotificationServiceSuite) TestListValidation() {
	_, err := s.svc.List(s.h.ctx(), models.NotificationFilter{Kinds: []models.Kind{"zaak_verlopen"}})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.List(s.h.ctx(), models.NotificationFilter{Offset: -1})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Latest(s.h.ctx(), models.TargetUser, "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
