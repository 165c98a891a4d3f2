package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/usecase"
	"github.com/sourcegraph/conc"
)

const (
	frameTypeRound = "round"
	frameTypeMatch = "match"
	frameTypeError = "error"

	streamWriteWait    = 10 * time.Second
	streamMaxReadBytes = 1024
)

type streamFrame struct {
	Type   string        `json:"type"`
	Cursor int           `json:"cursor"`
	Round  *roundViewDTO `json:"round,omitempty"`
	Match  *matchViewDTO `json:"match,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// streamListener queues navigator output for the connection writer. It never
// blocks the navigator. On a full buffer a round frame evicts the oldest queued
// frames, since it supersedes them; any other frame is dropped.
type streamListener struct {
	frames chan streamFrame
	logger *logging.Logger
}

func newStreamListener(buffer int, logger *logging.Logger) *streamListener {
	return &streamListener{frames: make(chan streamFrame, max(buffer, 1)), logger: logger}
}

func (l *streamListener) RoundRendered(view usecase.RoundView) {
	dto := toRoundViewDTO(view)
	l.push(streamFrame{Type: frameTypeRound, Cursor: view.Cursor, Round: &dto})
}

func (l *streamListener) MatchUpdated(cursor int, update usecase.MatchView) {
	dto := toMatchViewDTO(update)
	l.push(streamFrame{Type: frameTypeMatch, Cursor: cursor, Match: &dto})
}

func (l *streamListener) push(frame streamFrame) {
	for {
		select {
		case l.frames <- frame:
			return
		default:
		}
		if frame.Type != frameTypeRound {
			l.logger.Warn("stream frame dropped, client is too slow", "type", frame.Type, "cursor", frame.Cursor)
			return
		}
		select {
		case stale := <-l.frames:
			l.logger.Warn("stale stream frame evicted, client is too slow", "type", stale.Type, "cursor", stale.Cursor)
		default:
		}
	}
}

// StreamRounds upgrades to a websocket and drives one fixture navigator per
// connection. The client sends {"action":"next"|"prev"|"current"}.
func (h *Handler) StreamRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamRounds")
	defer span.End()

	board, err := h.leagueService.Board(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID, err := h.sessionIDs.NewID()
	if err != nil {
		sessionID = "unknown"
	}
	logger := h.logger.With("session_id", sessionID)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	listener := newStreamListener(h.streamBuffer, logger)
	navigator := usecase.NewNavigator(board.Rounds, h.live, listener, logger)
	defer navigator.Close()

	logger.DebugContext(ctx, "round stream opened", "remote_addr", r.RemoteAddr, "rounds", len(board.Rounds))
	navigator.Start(h.leagueService.Today())

	session := streamSession{conn: conn, navigator: navigator, listener: listener, logger: logger, board: &streamBoard{current: board}}
	var workers conc.WaitGroup
	workers.Go(func() {
		defer cancel()
		h.writeFrames(sessionCtx, session)
	})
	workers.Go(func() {
		defer cancel()
		h.readCommands(sessionCtx, session)
	})

	<-sessionCtx.Done()
	// Unblocks the reader; Close is safe alongside a concurrent read.
	_ = conn.Close()
	workers.Wait()
	logger.DebugContext(ctx, "round stream closed", "remote_addr", r.RemoteAddr, "cursor", navigator.Cursor())
}

type streamSession struct {
	conn      *websocket.Conn
	navigator *usecase.Navigator
	listener  *streamListener
	logger    *logging.Logger
	board     *streamBoard
}

// streamBoard is the board a session's navigator currently renders.
type streamBoard struct {
	mu      sync.Mutex
	current *usecase.Board
}

// syncBoard hands the navigator the latest board when a refresh has swapped
// it since the last render. It reports whether a swap happened.
func (h *Handler) syncBoard(ctx context.Context, session streamSession) bool {
	latest, err := h.leagueService.Board(ctx)
	if err != nil || latest == nil {
		return false
	}

	session.board.mu.Lock()
	defer session.board.mu.Unlock()
	if latest == session.board.current {
		return false
	}
	session.board.current = latest
	session.navigator.Replace(latest.Rounds)
	session.logger.DebugContext(ctx, "round stream picked up refreshed board",
		"rounds", len(latest.Rounds),
		"loaded_at", latest.LoadedAt,
	)
	return true
}

func (h *Handler) writeFrames(ctx context.Context, session streamSession) {
	conn := session.conn
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteWait))
			return
		case <-ping.C:
			h.syncBoard(ctx, session)
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case frame := <-session.listener.frames:
			payload, err := sonic.Marshal(frame)
			if err != nil {
				session.logger.ErrorContext(ctx, "encode stream frame failed", "type", frame.Type, "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				session.logger.DebugContext(ctx, "stream write failed", "error", err)
				return
			}
		}
	}
}

func (h *Handler) readCommands(ctx context.Context, session streamSession) {
	conn, navigator, listener := session.conn, session.navigator, session.listener
	conn.SetReadLimit(streamMaxReadBytes)
	readWait := 2 * h.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) && ctx.Err() == nil {
				session.logger.DebugContext(ctx, "stream read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		var cmd streamCommand
		if err := sonic.Unmarshal(payload, &cmd); err != nil {
			listener.push(streamFrame{Type: frameTypeError, Cursor: navigator.Cursor(), Error: "invalid JSON command"})
			continue
		}
		if err := h.validateRequest(ctx, cmd); err != nil {
			listener.push(streamFrame{Type: frameTypeError, Cursor: navigator.Cursor(), Error: err.Error()})
			continue
		}

		h.syncBoard(ctx, session)
		switch cmd.Action {
		case "next":
			navigator.Advance(1)
		case "prev":
			navigator.Advance(-1)
		case "current":
			navigator.Start(h.leagueService.Today())
		}
	}
}
