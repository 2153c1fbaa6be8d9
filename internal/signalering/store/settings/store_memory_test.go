package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"signalering/internal/signalering/models"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestFind() {
	s.Run("absent settings return nil", func() {
		found, err := s.store.Find(s.ctx, models.KindTaskOverdue, models.TargetUser, "u1")
		s.Require().NoError(err)
		s.Nil(found)
	})

	s.Run("saved settings are returned by key", func() {
		s.Require().NoError(s.store.Save(s.ctx, &models.Settings{
			Kind: models.KindTaskOverdue, OwnerType: models.TargetUser, OwnerID: "u1", Mail: true,
		}))

		found, err := s.store.Find(s.ctx, models.KindTaskOverdue, models.TargetUser, "u1")
		s.Require().NoError(err)
		s.Require().NotNil(found)
		s.True(found.Mail)

		other, err := s.store.Find(s.ctx, models.KindTaskOverdue, models.TargetGroup, "u1")
		s.Require().NoError(err)
		s.Nil(other, "owner type is part of the key")
	})
}

func (s *InMemoryStoreSuite) TestSaveOverwrites() {
	key := &models.Settings{Kind: models.KindCaseDueSoon, OwnerType: models.TargetGroup, OwnerID: "g1", Mail: true}
	s.Require().NoError(s.store.Save(s.ctx, key))
	s.Require().NoError(s.store.Save(s.ctx, &models.Settings{
		Kind: models.KindCaseDueSoon, OwnerType: models.TargetGroup, OwnerID: "g1", Mail: false,
	}))

	found, err := s.store.Find(s.ctx, models.KindCaseDueSoon, models.TargetGroup, "g1")
	s.Require().NoError(err)
	s.False(found.Mail)
}

func (s *InMemoryStoreSuite) TestListByOwnerAndDelete() {
	for _, kind := range []models.Kind{models.KindTaskOverdue, models.KindCaseAssigned} {
		s.Require().NoError(s.store.Save(s.ctx, &models.Settings{Kind: kind, OwnerType: models.TargetUser, OwnerID: "u1", Mail: true}))
	}
	s.Require().NoError(s.store.Save(s.ctx, &models.Settings{Kind: models.KindTaskOverdue, OwnerType: models.TargetUser, OwnerID: "u2", Mail: true}))

	list, err := s.store.ListByOwner(s.ctx, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(models.KindCaseAssigned, list[0].Kind)

	s.Require().NoError(s.store.Delete(s.ctx, models.KindCaseAssigned, models.TargetUser, "u1"))
	s.Require().NoError(s.store.Delete(s.ctx, models.KindCaseAssigned, models.TargetUser, "u1"), "deleting twice is fine")

	list, err = s.store.ListByOwner(s.ctx, models.TargetUser, "u1")
	s.Require().NoError(err)
	s.Len(list, 1)
}
