//go:build integration

package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/store/settings"
	"signalering/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *settings.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = settings.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "signalering_settings"))
}

func (s *PostgresStoreSuite) TestSaveUpsertsAndFind() {
	found, err := s.store.Find(s.ctx, models.KindTaskOverdue, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Nil(found, "absent settings are nil without error")

	row := &models.Settings{Kind: models.KindTaskOverdue, OwnerType: models.TargetUser, OwnerID: "u1", Mail: true}
	s.Require().NoError(s.store.Save(s.ctx, row))
	found, err = s.store.Find(s.ctx, models.KindTaskOverdue, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.True(found.Mail)

	row.Mail = false
	s.Require().NoError(s.store.Save(s.ctx, row))
	found, err = s.store.Find(s.ctx, models.KindTaskOverdue, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.False(found.Mail, "save overwrites the existing row")

	found, err = s.store.Find(s.ctx, models.KindTaskOverdue, models.TargetGroup, "u1")
	s.Require().NoError(err)
	s.Nil(found, "owner type is part of the key")
}

func (s *PostgresStoreSuite) TestListByOwnerAndDelete() {
	for _, kind := range []models.Kind{models.KindTaskOverdue, models.KindCaseDueSoon} {
		s.Require().NoError(s.store.Save(s.ctx, &models.Settings{Kind: kind, OwnerType: models.TargetUser, OwnerID: "u1", Mail: true}))
	}
	s.Require().NoError(s.store.Save(s.ctx, &models.Settings{Kind: models.KindTaskOverdue, OwnerType: models.TargetUser, OwnerID: "u2", Mail: true}))

	rows, err := s.store.ListByOwner(s.ctx, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(models.KindCaseDueSoon, rows[0].Kind, "ordered by kind")

	s.Require().NoError(s.store.Delete(s.ctx, models.KindCaseDueSoon, models.TargetUser, "u1"))
	s.Require().NoError(s.store.Delete(s.ctx, models.KindCaseDueSoon, models.TargetUser, "u1"), "deleting an absent row is not an error")

	rows, err = s.store.ListByOwner(s.ctx, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(models.KindTaskOverdue, rows[0].Kind)
}
