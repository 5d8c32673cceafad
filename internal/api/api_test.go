package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dartsync/internal/api"
	"github.com/mcoot/dartsync/internal/api/apierr"
	"github.com/mcoot/dartsync/internal/api/handler"
	"github.com/mcoot/dartsync/internal/api/response"
	"github.com/mcoot/dartsync/internal/factory"
	"github.com/mcoot/dartsync/internal/model"
	"github.com/mcoot/dartsync/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		AuthService:       app.AuthService,
		RoomController:    app.RoomController,
		SessionController: app.SessionController,
		MatchController:   app.MatchController,
		States:            app.Broadcaster,
		HubManager:        app.HubManager,
		Events:            handler.EventsConfig{Keepalive: time.Minute},
		HealthCheck:       app.Ping,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// createRoom creates a room hosted by name and returns the join response
func (ts *testServer) createRoom(t *testing.T, name string, options map[string]any) response.JoinResponse {
	t.Helper()
	body := map[string]any{"display_name": name}
	if options != nil {
		body["options"] = options
	}
	rr := ts.request(http.MethodPost, "/api/v1/rooms", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.JoinResponse](t, rr)
}

func (ts *testServer) join(t *testing.T, roomID, name string) response.JoinResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+roomID+"/join", map[string]any{"display_name": name}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[response.JoinResponse](t, rr)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	resp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreateAndJoinRoom(t *testing.T) {
	ts := newTestServer(t)

	host := ts.createRoom(t, "Alice", nil)
	assert.NotEmpty(t, host.SessionToken)
	assert.Equal(t, "player", host.Role)
	assert.Equal(t, "Alice", host.Player.DisplayName)
	require.NotNil(t, host.State)
	assert.Equal(t, host.RoomID, string(host.State.RoomID))
	assert.Equal(t, model.PlayerID(host.Player.ID), host.State.HostID)
	assert.Equal(t, 501, host.State.Options.StartingScore)

	guest := ts.join(t, host.RoomID, "Bob")
	assert.Equal(t, "player", guest.Role)
	assert.False(t, guest.Reconnected)
	assert.Len(t, guest.State.Players, 2)

	third := ts.join(t, host.RoomID, "Carol")
	assert.Equal(t, "spectator", third.Role)
}

func TestCreateRoomValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing name", map[string]any{}, http.StatusBadRequest, apierr.CodeInvalidName},
		{"unknown ruleset", map[string]any{"display_name": "Alice", "ruleset": "golf"}, http.StatusBadRequest, apierr.CodeInvalidRoomConfig},
		{"bad out mode", map[string]any{"display_name": "Alice", "options": map[string]any{"out_mode": "triple"}}, http.StatusBadRequest, apierr.CodeInvalidRoomConfig},
		{"not an object", []int{1, 2}, http.StatusBadRequest, apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/rooms", tt.body, "")
			assertError(t, rr, tt.status, tt.code)
		})
	}
}

func TestJoinErrors(t *testing.T) {
	ts := newTestServer(t)
	host := ts.createRoom(t, "Alice", nil)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/NOPE99/join", map[string]any{"display_name": "Bob"}, "")
	assertError(t, rr, http.StatusNotFound, apierr.CodeRoomNotFound)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+host.RoomID+"/join", map[string]any{"display_name": "Alice"}, "")
	assertError(t, rr, http.StatusConflict, apierr.CodeNameTaken)
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)
	first := ts.createRoom(t, "Alice", nil)
	other := ts.createRoom(t, "Zed", nil)
	path := "/api/v1/rooms/" + first.RoomID + "/state"

	rr := ts.request(http.MethodGet, path, nil, "")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)

	rr = ts.request(http.MethodGet, path, nil, "tok_bogus")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeInvalidToken)

	// A token only works for its own room
	rr = ts.request(http.MethodGet, path, nil, other.SessionToken)
	assertError(t, rr, http.StatusForbidden, apierr.CodeForbidden)

	rr = ts.request(http.MethodGet, path+"?token="+first.SessionToken, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMatchOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	host := ts.createRoom(t, "Alice", map[string]any{"starting_score": 221})
	guest := ts.join(t, host.RoomID, "Bob")
	base := "/api/v1/rooms/" + host.RoomID

	// Only the host may start under the default policy
	rr := ts.request(http.MethodPost, base+"/start", nil, guest.SessionToken)
	assertError(t, rr, http.StatusForbidden, apierr.CodeForbidden)

	rr = ts.request(http.MethodPost, base+"/start", nil, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state := decode[model.RoomState](t, rr)
	assert.Equal(t, model.GameStatusActive, state.GameStatus)
	assert.Equal(t, model.PlayerID(host.Player.ID), state.CurrentPlayerID)
	assert.Equal(t, strconv.FormatInt(state.Version, 10), rr.Header().Get(response.VersionHeader))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 180}, guest.SessionToken)
	assertError(t, rr, http.StatusConflict, apierr.CodeNotYourTurn)

	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 179}, host.SessionToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidScoreFormat)

	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 180}, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 20}, guest.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 41}, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state = decode[model.RoomState](t, rr)
	require.NotNil(t, state.PendingQuery)
	assert.Equal(t, model.QueryCheckout, state.PendingQuery.Kind)

	// Nothing else is accepted while the checkout is unconfirmed
	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 60}, guest.SessionToken)
	assertError(t, rr, http.StatusConflict, apierr.CodeQueryPending)

	rr = ts.request(http.MethodPost, base+"/checkout", map[string]any{}, host.SessionToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, base+"/checkout", map[string]any{"darts": 3}, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state = decode[model.RoomState](t, rr)
	assert.Equal(t, model.GameStatusFinished, state.GameStatus)
	assert.Equal(t, model.PlayerID(host.Player.ID), state.Winner)

	rr = ts.request(http.MethodPost, base+"/checkout", map[string]any{"darts": 3}, host.SessionToken)
	assertError(t, rr, http.StatusConflict, apierr.CodeNoPendingQuery)

	rr = ts.request(http.MethodPost, base+"/rematch", nil, guest.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state = decode[model.RoomState](t, rr)
	assert.Equal(t, model.GameStatusWaiting, state.GameStatus)
}

func TestThrowRequestShape(t *testing.T) {
	ts := newTestServer(t)
	host := ts.createRoom(t, "Alice", nil)
	ts.join(t, host.RoomID, "Bob")
	base := "/api/v1/rooms/" + host.RoomID

	rr := ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 60}, host.SessionToken)
	assertError(t, rr, http.StatusConflict, apierr.CodeMatchNotActive)

	rr = ts.request(http.MethodPost, base+"/start", nil, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"points": 60, "number": 20}, host.SessionToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	// X01 takes visit totals, not single darts
	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"number": 20, "multiplier": 3}, host.SessionToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidScoreFormat)
}

func TestCricketOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.request(http.MethodPost, "/api/v1/rooms", map[string]any{"display_name": "Alice", "ruleset": "cricket"}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	host := decode[response.JoinResponse](t, rr)
	ts.join(t, host.RoomID, "Bob")
	base := "/api/v1/rooms/" + host.RoomID

	rr = ts.request(http.MethodPost, base+"/start", nil, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"number": 20, "multiplier": 3}, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state := decode[model.RoomState](t, rr)
	assert.Equal(t, 3, state.Players[0].Marks[20])
	assert.Equal(t, 1, state.DartsInTurn)

	rr = ts.request(http.MethodPost, base+"/throw", map[string]any{"number": 25, "multiplier": 3}, host.SessionToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidScoreFormat)
}

func TestLeave(t *testing.T) {
	ts := newTestServer(t)
	host := ts.createRoom(t, "Alice", nil)
	guest := ts.join(t, host.RoomID, "Bob")
	base := "/api/v1/rooms/" + host.RoomID

	rr := ts.request(http.MethodPost, base+"/leave", nil, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state := decode[model.RoomState](t, rr)
	assert.Equal(t, model.PlayerID(guest.Player.ID), state.HostID)

	// The token was revoked on leave
	rr = ts.request(http.MethodGet, base+"/state", nil, host.SessionToken)
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeInvalidToken)

	rr = ts.request(http.MethodPost, base+"/leave", nil, guest.SessionToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPost, base+"/join", map[string]any{"display_name": "Carol"}, "")
	assertError(t, rr, http.StatusNotFound, apierr.CodeRoomNotFound)
}

func TestSetTeam(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.request(http.MethodPost, "/api/v1/rooms", map[string]any{"display_name": "Alice", "team_mode": "doubles", "max_players": 4}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	host := decode[response.JoinResponse](t, rr)
	guest := ts.join(t, host.RoomID, "Bob")
	base := "/api/v1/rooms/" + host.RoomID

	rr = ts.request(http.MethodPost, base+"/team", map[string]any{"team": "A"}, guest.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state := decode[model.RoomState](t, rr)
	for _, p := range state.Players {
		assert.Equal(t, model.TeamA, p.Team)
	}

	rr = ts.request(http.MethodPost, base+"/team", map[string]any{"team": "C"}, guest.SessionToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRoomConfig)
}

func TestServerSentEvents(t *testing.T) {
	ts := newTestServer(t)
	host := ts.createRoom(t, "Alice", nil)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/rooms/"+host.RoomID+"/events?token="+host.SessionToken, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, model.Event) {
		var name string
		var event model.Event
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
			case line == "" && name != "":
				return name, event
			}
		}
	}

	name, initial := readEvent()
	assert.Equal(t, "state", name)
	assert.Equal(t, model.RoomID(host.RoomID), initial.RoomID)

	// A join elsewhere is pushed to the stream
	ts.join(t, host.RoomID, "Bob")
	name, pushed := readEvent()
	assert.Equal(t, "state", name)
	payload, err := json.Marshal(pushed.Payload)
	require.NoError(t, err)
	var state model.RoomState
	require.NoError(t, json.Unmarshal(payload, &state))
	assert.Len(t, state.Players, 2)
}

// wsMessage covers both events and error replies
type wsMessage struct {
	Type    string           `json:"type"`
	Payload *model.RoomState `json:"payload"`
	Error   apierr.APIError  `json:"error"`
}

func TestWebSocketIntents(t *testing.T) {
	ts := newTestServer(t)
	host := ts.createRoom(t, "Alice", nil)
	ts.join(t, host.RoomID, "Bob")
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+host.RoomID+"/start", nil, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/rooms/" + host.RoomID + "/ws?token=" + host.SessionToken
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	read := func() wsMessage {
		var msg wsMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		return msg
	}

	initial := read()
	require.Equal(t, "state", initial.Type)
	require.NotNil(t, initial.Payload)
	version := initial.Payload.Version

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "throw", "points": 100}))
	pushed := read()
	require.Equal(t, "state", pushed.Type)
	assert.Greater(t, pushed.Payload.Version, version)
	require.NotNil(t, pushed.Payload.LastThrow)
	assert.Equal(t, 100, pushed.Payload.LastThrow.Scored)

	// Bob's turn now, so the same intent is rejected on this socket only
	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "throw", "points": 100}))
	rejected := read()
	assert.Equal(t, "error", rejected.Type)
	assert.Equal(t, apierr.CodeNotYourTurn, rejected.Error.Code)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "dance"}))
	rejected = read()
	assert.Equal(t, apierr.CodeInvalidRequest, rejected.Error.Code)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "get_state"}))
	current := read()
	assert.Equal(t, "state", current.Type)
	assert.Equal(t, pushed.Payload.Version, current.Payload.Version)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}
