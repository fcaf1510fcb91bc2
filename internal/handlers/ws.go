package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
)

type wsCommand string

const (
	wsNoop  wsCommand = "g"
	wsOpen  wsCommand = "o"
	wsFlag  wsCommand = "f"
	wsReset wsCommand = "r"
	wsStart wsCommand = "s"
)

var errUnknownCommand = errors.New("unknown command")

func parseXY(args []string) (x int, y int, err error) {
	if len(args) != 2 {
		err = fmt.Errorf("expected two arguments, got %d", len(args))
		return
	}
	if x, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("first argument must be an int")
		return
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("second argument must be an int")
		return
	}
	return
}

// gameExecutor applies text commands to a session. seed is set when a
// command started a new game with a fresh seed.
type gameExecutor struct {
	*mines.Session
	newSeed func() string
	seed    *string
}

func (game *gameExecutor) start(args []string) ([]mines.Event, error) {
	var d mines.Difficulty
	switch {
	case len(args) > 1:
		return nil, fmt.Errorf("expected at most one argument, got %d", len(args))
	case len(args) == 1:
		preset, ok := mines.Preset(args[0])
		if !ok {
			return nil, fmt.Errorf("%w: unknown preset %q", mines.ErrInvalidDifficulty, args[0])
		}
		d = preset
	case game.Difficulty.Validate() == nil:
		d = game.Difficulty
	default:
		d = mines.Easy
	}
	if err := game.Start(d); err != nil {
		return nil, err
	}
	seed := game.newSeed()
	game.SetSource(mines.NewSource(seed))
	game.seed = &seed
	return nil, nil
}

func (game *gameExecutor) execute(line string) ([]mines.Event, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsNoop:
		return nil, nil
	case wsOpen:
		x, y, err := parseXY(args)
		if err != nil {
			return nil, err
		}
		if game.State != mines.Playing {
			return nil, mines.ErrIllegalState
		}
		return game.Click(x, y)
	case wsFlag:
		x, y, err := parseXY(args)
		if err != nil {
			return nil, err
		}
		if game.State != mines.Playing {
			return nil, mines.ErrIllegalState
		}
		return game.RightClick(x, y)
	case wsReset:
		game.Reset()
		return nil, nil
	case wsStart:
		return game.start(args)
	default:
		return nil, fmt.Errorf("%w %q", errUnknownCommand, cmd)
	}
}

type wsResponse struct {
	GameResponse
	Error string `json:"error,omitempty"`
}

const wsMaxAttempts = 3

// wsHandleMessage applies every line of message to the stored session. A
// failing line stops the rest of the message; what ran before it is kept.
// When another request saved the session in between, the message is applied
// again to the newer state.
func (g *GameHandler) wsHandleMessage(ctx context.Context, id int64, message string) (resp *wsResponse, err error) {
	for range wsMaxAttempts {
		resp, err = g.wsApplyMessage(ctx, id, message)
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
		g.logger.Debug("ws message conflicted, retrying", slog.Int64("gameSessionId", id))
	}
	return resp, err
}

func (g *GameHandler) wsApplyMessage(ctx context.Context, id int64, message string) (*wsResponse, error) {
	row, err := g.store.FetchGameSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch game session: %w", err)
	}
	s, err := row.Decode()
	if err != nil {
		return nil, err
	}

	game := &gameExecutor{Session: s, newSeed: g.newSeed}
	var (
		events []mines.Event
		cmdErr error
	)
	for _, line := range byPiece(strings.TrimSpace(message), "\n") {
		e, err := game.execute(line)
		if err != nil {
			cmdErr = fmt.Errorf("%s: %w", strings.TrimSpace(line), err)
			break
		}
		events = append(events, e...)
	}

	params := repository.NewUpdateParams(s, time.Now())
	params.Seed = game.seed
	params.Version = &row.Version
	row, err = g.store.UpdateGameSession(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("unable to update game session: %w", err)
	}

	resp := &wsResponse{GameResponse: GameResponse{
		Session: NewGameSessionDTO(row, s),
		Events:  NewEventDTOs(events),
	}}
	if cmdErr != nil {
		resp.Error = cmdErr.Error()
	}
	return resp, nil
}

func (g *GameHandler) wsRunGameLoop(ctx context.Context, conn *websocket.Conn, id int64) error {
	conn.SetReadLimit(g.ws.ReadLimit)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(g.ws.IdleTimeout)); err != nil {
			return err
		}
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		g.logger.Debug("ws command", slog.Int64("gameSessionId", id), slog.String("message", string(buf)))

		resp, err := g.wsHandleMessage(ctx, id, string(buf))
		if errors.Is(err, repository.ErrConflict) {
			resp = &wsResponse{Error: err.Error()}
		} else if err != nil {
			return err
		}

		if err := conn.SetWriteDeadline(time.Now().Add(g.ws.WriteWait)); err != nil {
			return err
		}
		if err := conn.WriteJSON(resp); err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
	}
}

func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	row, _, ok := g.load(w, r)
	if !ok {
		return
	}

	if err := g.cookies.Issue(w, row.GameSessionId); err != nil {
		g.internalError(w, "unable to refresh session cookies", err)
		return
	}
	header := http.Header{"Set-Cookie": w.Header().Values("Set-Cookie")}

	conn, err := g.ws.Upgrader.Upgrade(w, r, header) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	g.logger.Debug("established ws connection", slog.Int64("gameSessionId", row.GameSessionId))

	err = g.wsRunGameLoop(r.Context(), conn, row.GameSessionId)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		g.logger.Warn("ws loop ended", slog.Any("error", err))
	}
}
