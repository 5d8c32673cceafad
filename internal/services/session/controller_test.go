package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dartsync/internal/dependencies/mocks"
	"github.com/mcoot/dartsync/internal/dispatch"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/services/broadcast"
	"github.com/mcoot/dartsync/internal/storage/memory"
	"github.com/mcoot/dartsync/internal/testutil"
)

const roomID model.RoomID = "ROOM01"

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	sink       *mocks.RecordingSink
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	dispatcher *dispatch.Dispatcher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.sink = mocks.NewRecordingSink()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.dispatcher = dispatch.New(logger)
	broadcaster := broadcast.New(s.storage, s.sink, s.clock, logger)
	s.controller = NewController(s.storage, s.dispatcher, broadcaster, s.clock, s.random, logger)
	s.ctx = context.Background()
}

func (s *ControllerSuite) TearDownTest() {
	s.dispatcher.Close()
}

func (s *ControllerSuite) seedRoom(mode model.TeamMode, opts model.RulesetOptions, players ...model.Player) *model.Room {
	room := &model.Room{
		ID:         roomID,
		Name:       "Oche",
		HostID:     players[0].ID,
		Players:    players,
		Ruleset:    model.RulesetX01,
		Options:    opts,
		TeamMode:   mode,
		MaxPlayers: mode.Capacity(),
		Status:     model.GameStatusWaiting,
		CreatedAt:  s.clock.Now(),
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	return room
}

func player(id string, team model.Team) model.Player {
	return model.Player{ID: model.PlayerID(id), DisplayName: id, Team: team}
}

func (s *ControllerSuite) seedSingles(starter model.StarterPolicy) *model.Room {
	opts := model.DefaultRulesetOptions()
	opts.Starter = starter
	return s.seedRoom(model.TeamModeSingles, opts, player("alice", ""), player("bob", ""))
}

func (s *ControllerSuite) storedMatch() *model.Match {
	m, err := s.storage.GetMatch(s.ctx, roomID)
	s.Require().NoError(err)
	return m
}

// StartMatch tests

func (s *ControllerSuite) TestHostStartsMatch() {
	s.seedSingles(model.StarterHost)

	state, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.Require().NoError(err)

	s.Equal(model.GameStatusActive, state.GameStatus)
	s.Equal(model.PlayerID("alice"), state.CurrentPlayerID)
	s.Equal(0, state.CurrentPlayerIndex)
	s.Equal(int64(1), state.Version)

	m := s.storedMatch()
	s.Equal(model.MatchActive, m.Status)
	s.Equal([]model.PlayerID{"alice", "bob"}, m.Order)
	s.Equal(501, m.Leg.Remaining["bob"])
	s.Equal(map[model.PlayerID]int{"alice": 0, "bob": 0}, m.LegsWon)
	s.Equal(1, m.SetNumber)
	s.Equal(1, m.LegNumber)

	s.Equal(state, s.sink.LastState(roomID))
}

func (s *ControllerSuite) TestHostPolicyRejectsOtherPlayers() {
	s.seedSingles(model.StarterHost)

	_, err := s.controller.StartMatch(s.ctx, roomID, "bob", "")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ControllerSuite) TestStrangerCannotStart() {
	s.seedSingles(model.StarterOpponent)

	_, err := s.controller.StartMatch(s.ctx, roomID, "mallory", "")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ControllerSuite) TestOpponentPolicyLetsOpponentStartAndThrowFirst() {
	s.seedSingles(model.StarterOpponent)

	_, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.ErrorIs(err, model.ErrUnauthorized)

	state, err := s.controller.StartMatch(s.ctx, roomID, "bob", "")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("bob"), state.CurrentPlayerID)
	s.Equal([]model.PlayerID{"bob", "alice"}, s.storedMatch().Order)
}

func (s *ControllerSuite) TestBullOffPolicyNeedsRecordedWinner() {
	s.seedSingles(model.StarterBullOff)

	_, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.ErrorIs(err, model.ErrUnauthorized)

	_, err = s.controller.RecordBullOff(s.ctx, roomID, "bob", "bob")
	s.ErrorIs(err, model.ErrUnauthorized, "only the host records the bull-off")

	_, err = s.controller.RecordBullOff(s.ctx, roomID, "alice", "carol")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.controller.RecordBullOff(s.ctx, roomID, "alice", "bob")
	s.Require().NoError(err)

	_, err = s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.ErrorIs(err, model.ErrUnauthorized)

	state, err := s.controller.StartMatch(s.ctx, roomID, "bob", "")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("bob"), state.CurrentPlayerID)
}

func (s *ControllerSuite) TestExplicitStartingPlayer() {
	s.seedSingles(model.StarterHost)

	state, err := s.controller.StartMatch(s.ctx, roomID, "alice", "bob")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("bob"), state.CurrentPlayerID)

	s.Require().NoError(s.storage.DeleteMatch(s.ctx, roomID))
	room, _ := s.storage.GetRoom(s.ctx, roomID)
	room.Status = model.GameStatusWaiting
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	_, err = s.controller.StartMatch(s.ctx, roomID, "alice", "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestNotEnoughPlayers() {
	s.seedRoom(model.TeamModeSingles, model.DefaultRulesetOptions(), player("alice", ""))

	_, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
}

func (s *ControllerSuite) TestDoublesNeedsTwoFullTeams() {
	s.seedRoom(model.TeamModeDoubles, model.DefaultRulesetOptions(),
		player("alice", model.TeamA), player("bob", model.TeamB), player("carol", model.TeamA))

	_, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
}

func (s *ControllerSuite) TestDoublesOrderAlternatesTeams() {
	s.seedRoom(model.TeamModeDoubles, model.DefaultRulesetOptions(),
		player("alice", model.TeamA), player("bob", model.TeamB),
		player("carol", model.TeamA), player("dave", model.TeamB))

	_, err := s.controller.StartMatch(s.ctx, roomID, "alice", "dave")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"dave", "alice", "bob", "carol"}, s.storedMatch().Order)
}

func (s *ControllerSuite) TestStartTwiceIsRejected() {
	s.seedSingles(model.StarterHost)

	_, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.Require().NoError(err)

	_, err = s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.ErrorIs(err, model.ErrMatchInProgress)
}

func (s *ControllerSuite) TestUnknownRoomGetsNoLoop() {
	_, err := s.controller.StartMatch(s.ctx, "NOPE00", "alice", "")
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.controller.RecordBullOff(s.ctx, "NOPE00", "alice", "alice")
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.controller.Rematch(s.ctx, "NOPE00", "alice")
	s.ErrorIs(err, model.ErrRoomNotFound)

	s.Equal(0, s.dispatcher.Len())
}

// Rematch tests

func (s *ControllerSuite) TestRematchResetsToWaitingAndPromotesSpectators() {
	// bob joined mid-match as a spectator, then the match was forfeited
	room := s.seedRoom(model.TeamModeSingles, model.DefaultRulesetOptions(), player("alice", ""))
	room.Spectators = []model.Player{player("bob", "")}
	room.Status = model.GameStatusFinished
	room.BullOffWinner = "alice"
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	s.Require().NoError(s.storage.SaveMatch(s.ctx, &model.Match{RoomID: roomID, Status: model.MatchFinished}))

	_, err := s.controller.Rematch(s.ctx, roomID, "bob")
	s.ErrorIs(err, model.ErrUnauthorized, "spectators cannot request a rematch")

	state, err := s.controller.Rematch(s.ctx, roomID, "alice")
	s.Require().NoError(err)
	s.Equal(model.GameStatusWaiting, state.GameStatus)
	s.Len(state.Players, 2)
	s.Empty(state.Spectators)
	s.Empty(state.Winner)

	_, err = s.storage.GetMatch(s.ctx, roomID)
	s.ErrorIs(err, model.ErrMatchNotFound)

	room, _ = s.storage.GetRoom(s.ctx, roomID)
	s.Empty(room.BullOffWinner)
}

func (s *ControllerSuite) TestRematchDuringMatchStartsOver() {
	s.seedSingles(model.StarterHost)
	_, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.Require().NoError(err)

	_, err = s.controller.Rematch(s.ctx, roomID, "bob")
	s.Require().NoError(err)

	state, err := s.controller.StartMatch(s.ctx, roomID, "alice", "")
	s.Require().NoError(err)
	s.Equal(501, *state.Players[0].Remaining)
}
