package httpapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/usecase"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, srv testServer) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(srv.router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/rounds/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) streamFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame streamFrame
	require.NoError(t, sonic.Unmarshal(payload, &frame))
	return frame
}

func sendAction(t *testing.T, conn *websocket.Conn, action string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"`+action+`"}`)))
}

func TestStreamRounds_NavigatesAndReceivesLiveUpdates(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, sampleRows(), RouterConfig{})
	conn := dialStream(t, srv)

	first := readFrame(t, conn)
	require.Equal(t, frameTypeRound, first.Type)
	require.Equal(t, 1, first.Cursor)
	require.NotNil(t, first.Round)
	require.Len(t, first.Round.Matches, 2)

	require.Eventually(t, func() bool {
		return srv.hub.Subscribers("m2") == 1 && srv.hub.Subscribers("m3") == 1
	}, 2*time.Second, 10*time.Millisecond)

	err := srv.hub.Publish(context.Background(), live.Snapshot{
		MatchID: "m2",
		Status:  match.StatusLive,
		Sets:    [match.SetSlots]*match.SetScore{{Home: 25, Away: 23}},
	})
	require.NoError(t, err)

	update := readFrame(t, conn)
	require.Equal(t, frameTypeMatch, update.Type)
	require.NotNil(t, update.Match)
	require.Equal(t, "m2", update.Match.ID)
	require.True(t, update.Match.Display.IsLive)
	require.Equal(t, 1, update.Match.Display.SetsWonHome)

	sendAction(t, conn, "next")
	next := readFrame(t, conn)
	require.Equal(t, frameTypeRound, next.Type)
	require.Equal(t, 0, next.Cursor)
	require.Equal(t, "Round 1", next.Round.Label)

	// Leaving round 2 releases its subscriptions.
	require.Eventually(t, func() bool {
		return srv.hub.Subscribers("m2") == 0 && srv.hub.Subscribers("m3") == 0
	}, 2*time.Second, 10*time.Millisecond)

	sendAction(t, conn, "current")
	back := readFrame(t, conn)
	require.Equal(t, 1, back.Cursor)
}

func TestStreamRounds_RejectsUnknownAction(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, sampleRows(), RouterConfig{})
	conn := dialStream(t, srv)
	_ = readFrame(t, conn)

	sendAction(t, conn, "jump")
	frame := readFrame(t, conn)
	require.Equal(t, frameTypeError, frame.Type)
	require.Equal(t, 1, frame.Cursor)
	require.Contains(t, frame.Error, "validation failed")
}

func TestStreamRounds_EmptySchedule(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, RouterConfig{})
	conn := dialStream(t, srv)

	frame := readFrame(t, conn)
	require.Equal(t, frameTypeRound, frame.Type)
	require.True(t, frame.Round.Empty)

	sendAction(t, conn, "prev")
	again := readFrame(t, conn)
	require.True(t, again.Round.Empty)
	require.Equal(t, 0, again.Cursor)
}

func TestStreamRounds_DisconnectReleasesSubscriptions(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, sampleRows(), RouterConfig{})
	conn := dialStream(t, srv)
	_ = readFrame(t, conn)

	require.Eventually(t, func() bool { return srv.hub.Subscribers("m2") == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return srv.hub.Subscribers("m2") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamRounds_PicksUpRefreshedBoard(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, sampleRows(), RouterConfig{})
	conn := dialStream(t, srv)

	first := readFrame(t, conn)
	require.Equal(t, 1, first.Cursor)
	require.Len(t, first.Round.Matches, 2)

	rows := append(sampleRows(), match.Row{
		"id": "m4", "round": "2", "date": "2026-10-20", "time": "20:00",
		"home_team": "Alpha", "away_team": "Delta",
	})
	srv.source.Replace(rows, nil)
	_, err := srv.service.Refresh(context.Background())
	require.NoError(t, err)

	sendAction(t, conn, "current")
	refreshed := readFrame(t, conn)
	require.Equal(t, frameTypeRound, refreshed.Type)
	require.Equal(t, 1, refreshed.Cursor)
	require.Len(t, refreshed.Round.Matches, 3)

	current := readFrame(t, conn)
	require.Equal(t, 1, current.Cursor)
	require.Len(t, current.Round.Matches, 3)

	require.Eventually(t, func() bool { return srv.hub.Subscribers("m4") == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamListener_DropsMatchFramesWhenFull(t *testing.T) {
	t.Parallel()

	listener := newStreamListener(1, logging.NewNop())
	listener.MatchUpdated(0, usecase.MatchView{Match: match.Match{ID: "first"}})
	listener.MatchUpdated(0, usecase.MatchView{Match: match.Match{ID: "second"}})
	require.Len(t, listener.frames, 1)

	frame := <-listener.frames
	require.Equal(t, "first", frame.Match.ID)
}

func TestStreamListener_KeepsLatestRoundWhenFull(t *testing.T) {
	t.Parallel()

	listener := newStreamListener(2, logging.NewNop())
	listener.RoundRendered(usecase.RoundView{Cursor: 0, Label: "Round 1"})
	listener.MatchUpdated(0, usecase.MatchView{Match: match.Match{ID: "m1"}})
	listener.RoundRendered(usecase.RoundView{Cursor: 1, Label: "Round 2"})
	listener.RoundRendered(usecase.RoundView{Cursor: 2, Label: "Round 3"})
	require.Len(t, listener.frames, 2)

	close(listener.frames)
	var got []streamFrame
	for frame := range listener.frames {
		got = append(got, frame)
	}
	last := got[len(got)-1]
	require.Equal(t, frameTypeRound, last.Type)
	require.Equal(t, 2, last.Cursor)
	require.Equal(t, "Round 3", last.Round.Label)
	for _, frame := range got {
		require.Equal(t, frameTypeRound, frame.Type, "queued match frames are superseded by a newer round")
	}
}
