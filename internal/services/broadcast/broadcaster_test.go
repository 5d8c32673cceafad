package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dartsync/internal/dependencies/mocks"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/storage/memory"
	"github.com/mcoot/dartsync/internal/testutil"
)

type BroadcasterSuite struct {
	suite.Suite
	storage *memory.Storage
	sink    *mocks.RecordingSink
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
	room    *model.Room
}

func TestBroadcasterSuite(t *testing.T) {
	suite.Run(t, new(BroadcasterSuite))
}

func (s *BroadcasterSuite) SetupTest() {
	s.storage = memory.New()
	s.sink = mocks.NewRecordingSink()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.sink, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.room = &model.Room{
		ID:         "ROOM01",
		Name:       "Oche",
		HostID:     "alice",
		Players:    []model.Player{{ID: "alice", DisplayName: "Alice"}, {ID: "bob", DisplayName: "Bob", Disconnected: true}},
		Spectators: []model.Player{{ID: "carol", DisplayName: "Carol"}},
		Ruleset:    model.RulesetX01,
		Options:    model.DefaultRulesetOptions(),
		TeamMode:   model.TeamModeSingles,
		MaxPlayers: 2,
		Status:     model.GameStatusWaiting,
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room))
}

func (s *BroadcasterSuite) activeMatch() *model.Match {
	return &model.Match{
		ID:        "m1",
		RoomID:    "ROOM01",
		Ruleset:   model.RulesetX01,
		Options:   s.room.Options,
		Order:     []model.PlayerID{"bob", "alice"},
		SetNumber: 1,
		LegNumber: 2,
		Leg: model.LegState{
			Order:        []model.PlayerID{"alice", "bob"},
			CurrentIndex: 1,
			Remaining:    map[model.PlayerID]int{"alice": 301, "bob": 35},
		},
		LegsWon: map[model.PlayerID]int{"alice": 1, "bob": 0},
		SetsWon: map[model.PlayerID]int{"alice": 0, "bob": 0},
		Throws: []model.ThrowRecord{
			{PlayerID: "alice", Set: 1, Leg: 2, Reported: 100, Scored: 100, Darts: 3},
			{PlayerID: "bob", Set: 1, Leg: 2, Reported: 38, Darts: 3, Bust: true, ScoreBefore: 35},
		},
		Pending: &model.Query{ID: "q1", Kind: model.QueryDoubleAttempts, Type: model.AttemptsBust, PlayerID: "bob", ReportedScore: 38, ScoreBeforeThrow: 35, ThrowIndex: 1},
		Status:  model.MatchActive,
	}
}

func (s *BroadcasterSuite) TestWaitingRoomShowsStartingScores() {
	state, err := s.service.Publish(s.ctx, s.room, nil)
	s.Require().NoError(err)

	s.Equal(model.GameStatusWaiting, state.GameStatus)
	s.Require().Len(state.Players, 2)
	s.Require().NotNil(state.Players[0].Remaining)
	s.Equal(501, *state.Players[0].Remaining)
	s.True(state.Players[0].IsHost)
	s.True(state.Players[1].Disconnected)
	s.Require().Len(state.Spectators, 1)
	s.Equal("Carol", state.Spectators[0].DisplayName)
	s.Nil(state.PendingQuery)
	s.Empty(state.CurrentPlayerID)
	s.Equal(0, state.CurrentPlayerIndex)
}

func (s *BroadcasterSuite) TestDoubleInShowsPlayersAwaitingIn() {
	s.room.Options.InMode = model.ModeDouble

	state, err := s.service.Publish(s.ctx, s.room, nil)
	s.Require().NoError(err)
	s.True(state.Players[0].AwaitingIn)

	m := s.activeMatch()
	m.Options = s.room.Options
	m.Leg.Opened = map[model.PlayerID]bool{"alice": true, "bob": false}
	s.room.Status = model.GameStatusActive
	state, err = s.service.Publish(s.ctx, s.room, m)
	s.Require().NoError(err)

	s.True(state.Players[0].AwaitingIn, "bob has not opened")
	s.False(state.Players[1].AwaitingIn)
}

func (s *BroadcasterSuite) TestWaitingRoomIsOpenUnderSingleIn() {
	state, err := s.service.Publish(s.ctx, s.room, nil)
	s.Require().NoError(err)
	s.False(state.Players[0].AwaitingIn)
}

func (s *BroadcasterSuite) TestActiveMatchSnapshotMergesEngineState() {
	s.room.Status = model.GameStatusActive

	state, err := s.service.Publish(s.ctx, s.room, s.activeMatch())
	s.Require().NoError(err)

	s.Equal(model.GameStatusActive, state.GameStatus)
	s.Require().Len(state.Players, 2)
	s.Equal(model.PlayerID("bob"), state.Players[0].ID, "players follow the match order")
	s.Equal(35, *state.Players[0].Remaining)
	s.Equal(301, *state.Players[1].Remaining)
	s.Equal(1, state.Players[1].LegsWon)
	s.Equal(model.PlayerID("bob"), state.CurrentPlayerID)
	s.Equal(0, state.CurrentPlayerIndex)
	s.Require().NotNil(state.PendingQuery)
	s.Equal(model.AttemptsBust, state.PendingQuery.Type)
	s.Require().NotNil(state.LastThrow)
	s.True(state.LastThrow.Bust)
	s.Equal(2, state.LegNumber)
	s.Equal(100, state.Players[1].Stats.PointsScored)
	s.Equal(1, state.Players[1].Stats.Tons)
}

func (s *BroadcasterSuite) TestPublishIncrementsVersionAndPushes() {
	first, err := s.service.Publish(s.ctx, s.room, nil)
	s.Require().NoError(err)
	second, err := s.service.Publish(s.ctx, s.room, nil)
	s.Require().NoError(err)

	s.Equal(int64(1), first.Version)
	s.Equal(int64(2), second.Version)

	events := s.sink.EventsOfType("ROOM01", model.EventState)
	s.Require().Len(events, 2)
	s.Equal(second, s.sink.LastState("ROOM01"))
}

func (s *BroadcasterSuite) TestGetStateMatchesLastPush() {
	s.room.Status = model.GameStatusActive
	pushed, err := s.service.Publish(s.ctx, s.room, s.activeMatch())
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)

	pulled, err := s.service.GetState(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal(pushed.Version, pulled.Version)
	s.Equal(pushed.UpdatedAt, pulled.UpdatedAt)
	s.Equal(pushed.CurrentPlayerID, pulled.CurrentPlayerID)
}

func (s *BroadcasterSuite) TestGetStateBeforeAnyPush() {
	state, err := s.service.GetState(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal(int64(0), state.Version)
	s.Equal("Oche", state.Name)
}

func (s *BroadcasterSuite) TestGetStateUnknownRoom() {
	_, err := s.service.GetState(s.ctx, "NOPE00")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *BroadcasterSuite) TestPublishClosed() {
	s.service.PublishClosed("ROOM01")

	events := s.sink.Events("ROOM01")
	s.Require().Len(events, 1)
	s.Equal(model.EventClosed, events[0].Type)
	s.True(s.sink.Closed("ROOM01"))
}

func (s *BroadcasterSuite) TestCricketSnapshot() {
	s.room.Ruleset = model.RulesetCricket

	state, err := s.service.Publish(s.ctx, s.room, nil)
	s.Require().NoError(err)

	s.Nil(state.Players[0].Remaining)
	s.Require().NotNil(state.Players[0].Points)
	s.Equal(0, *state.Players[0].Points)
}
