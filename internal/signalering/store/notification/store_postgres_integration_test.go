//go:build integration

package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/store/notification"
	"signalering/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *notification.PostgresStore
	ctx      context.Context
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = notification.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "signalering_notification"))
	s.now = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) overdue(task, user string, at time.Time) *models.Notification {
	return &models.Notification{
		Kind:        models.KindTaskOverdue,
		Detail:      models.DetailTargetDate,
		SubjectType: models.SubjectTask,
		SubjectID:   task,
		TargetType:  models.TargetUser,
		TargetID:    user,
		Timestamp:   at,
	}
}

func (s *PostgresStoreSuite) assigned(caseID, user string, at time.Time) *models.Notification {
	return &models.Notification{
		Kind:        models.KindCaseAssigned,
		SubjectType: models.SubjectCase,
		SubjectID:   caseID,
		TargetType:  models.TargetUser,
		TargetID:    user,
		Timestamp:   at,
	}
}

func (s *PostgresStoreSuite) TestUpsertKeepsLaterTimestamp() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u1", s.now)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u1", s.now.Add(time.Hour))))
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u1", s.now.Add(-time.Hour))))

	rows, err := s.store.List(s.ctx, models.NotificationFilter{TargetID: "u1"})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.WithinDuration(s.now.Add(time.Hour), rows[0].Timestamp, time.Millisecond)
	s.Equal(models.DetailTargetDate, rows[0].Detail)
}

func (s *PostgresStoreSuite) TestListFiltersAndPagination() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u1", s.now)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t2", "u1", s.now.Add(time.Minute))))
	s.Require().NoError(s.store.Upsert(s.ctx, s.assigned("c1", "u1", s.now.Add(2*time.Minute))))
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t3", "u2", s.now)))

	s.Run("kind filter", func() {
		rows, err := s.store.List(s.ctx, models.NotificationFilter{
			Kinds:    []models.Kind{models.KindTaskOverdue, models.KindTaskAssigned},
			TargetID: "u1",
		})
		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		s.Equal("t2", rows[0].SubjectID, "newest first")
		s.Equal("t1", rows[1].SubjectID)
	})

	s.Run("subject filter", func() {
		rows, err := s.store.List(s.ctx, models.NotificationFilter{SubjectType: models.SubjectCase, SubjectID: "c1"})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal(models.DetailNone, rows[0].Detail)
	})

	s.Run("limit and offset", func() {
		rows, err := s.store.List(s.ctx, models.NotificationFilter{TargetType: models.TargetUser, TargetID: "u1", Limit: 1, Offset: 1})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("t2", rows[0].SubjectID)
	})
}

func (s *PostgresStoreSuite) TestCountAndLatest() {
	latest, err := s.store.LatestTimestamp(s.ctx, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Nil(latest)

	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u1", s.now)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t2", "u1", s.now.Add(time.Hour))))
	s.Require().NoError(s.store.Upsert(s.ctx, s.assigned("c1", "u1", s.now.Add(-time.Hour))))

	latest, err = s.store.LatestTimestamp(s.ctx, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.WithinDuration(s.now.Add(time.Hour), *latest, time.Millisecond)

	count, err := s.store.CountByKind(s.ctx, models.KindTaskOverdue, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestDeletes() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u1", s.now.AddDate(0, 0, -100))))
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u2", s.now)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t2", "u1", s.now)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.assigned("c1", "u1", s.now)))

	s.Run("older than cutoff", func() {
		removed, err := s.store.DeleteOlderThan(s.ctx, s.now.AddDate(0, 0, -90))
		s.Require().NoError(err)
		s.Equal(1, removed)
	})

	s.Run("by subject for every target", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, s.overdue("t1", "u1", s.now)))
		removed, err := s.store.DeleteBySubject(s.ctx, models.SubjectTask, "t1")
		s.Require().NoError(err)
		s.Equal(2, removed)
	})

	s.Run("by filter", func() {
		removed, err := s.store.Delete(s.ctx, models.NotificationFilter{
			Kinds: []models.Kind{models.KindCaseAssigned}, TargetType: models.TargetUser, TargetID: "u1",
		})
		s.Require().NoError(err)
		s.Equal(1, removed)

		rows, err := s.store.List(s.ctx, models.NotificationFilter{})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("t2", rows[0].SubjectID)
	})
}
