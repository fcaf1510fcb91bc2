package handlers

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/middleware"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
)

var (
	errInvalidSessionId = errors.New("invalid game session id")
	errNotOwner         = errors.New("game session belongs to someone else")
	errNotFound         = errors.New("game session not found")
	errConflict         = errors.New("game session changed by another request, retry")
	errInternal         = errors.New("internal error")
)

type GameHandler struct {
	logger    *slog.Logger
	store     repository.Store
	cookies   *config.Cookies
	ws        *config.WebSocket
	placement mines.Placement

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGameHandler(
	logger *slog.Logger,
	store repository.Store,
	cookies *config.Cookies,
	ws *config.WebSocket,
	placement mines.Placement,
	rnd *rand.Rand,
) *GameHandler {
	handler := &GameHandler{
		logger:    logger,
		store:     store,
		cookies:   cookies,
		ws:        ws,
		placement: placement,
		rnd:       rnd,
	}
	return handler
}

func (g *GameHandler) newSeed() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return mines.RandomSeed(g.rnd)
}

func (g *GameHandler) badRequest(w http.ResponseWriter, err error) {
	sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
}

func (g *GameHandler) internalError(w http.ResponseWriter, msg string, err error) {
	g.logger.Error(msg, slog.Any("error", err))
	sendErrorOrLog(w, g.logger, http.StatusInternalServerError, errInternal)
}

func (g *GameHandler) reply(
	w http.ResponseWriter, status int, row *repository.GameSession, s *mines.Session, events []mines.Event,
) {
	sendJSONOrLog(w, g.logger, status, GameResponse{
		Session: NewGameSessionDTO(row, s),
		Events:  NewEventDTOs(events),
	})
}

// load fetches the session named in the path and checks that the caller's
// token owns it. On failure the response has already been written.
func (g *GameHandler) load(w http.ResponseWriter, r *http.Request) (*repository.GameSession, *mines.Session, bool) {
	sessionId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		g.badRequest(w, errInvalidSessionId)
		return nil, nil, false
	}

	row, err := g.store.FetchGameSession(r.Context(), sessionId)
	if errors.Is(err, repository.ErrNotFound) {
		sendErrorOrLog(w, g.logger, http.StatusNotFound, errNotFound)
		return nil, nil, false
	}
	if err != nil {
		g.internalError(w, "unable to fetch game session", err)
		return nil, nil, false
	}

	claims, ok := middleware.SessionClaims(r.Context())
	if !ok || claims.GameSessionId != row.GameSessionId {
		sendErrorOrLog(w, g.logger, http.StatusUnauthorized, errNotOwner)
		return nil, nil, false
	}

	s, err := row.Decode()
	if err != nil {
		g.internalError(w, "stored game session is invalid", err)
		return nil, nil, false
	}

	return row, s, true
}

// save stores params over the version of loaded and refreshes the caller's
// session cookies. On failure the response has already been written.
func (g *GameHandler) save(
	w http.ResponseWriter, r *http.Request, loaded *repository.GameSession, params repository.UpdateGameSessionParams,
) (*repository.GameSession, bool) {
	params.Version = &loaded.Version
	row, err := g.store.UpdateGameSession(r.Context(), loaded.GameSessionId, params)
	if errors.Is(err, repository.ErrNotFound) {
		sendErrorOrLog(w, g.logger, http.StatusNotFound, errNotFound)
		return nil, false
	}
	if errors.Is(err, repository.ErrConflict) {
		sendErrorOrLog(w, g.logger, http.StatusConflict, errConflict)
		return nil, false
	}
	if err != nil {
		g.internalError(w, "unable to update game session", err)
		return nil, false
	}
	// the token lives as long as the session keeps being played
	if err := g.cookies.Issue(w, row.GameSessionId); err != nil {
		g.internalError(w, "unable to refresh session cookies", err)
		return nil, false
	}
	return row, true
}

func (g *GameHandler) Difficulties(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, http.StatusOK, mines.Presets())
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		g.badRequest(w, err)
		return
	}

	d, err := ParseDifficulty(r.Form)
	if err != nil {
		g.badRequest(w, err)
		return
	}

	opts, err := ParseGameOptions(r.Form)
	if err != nil {
		g.badRequest(w, err)
		return
	}
	seed := opts.Seed
	if seed == "" {
		seed = g.newSeed()
	}

	s := mines.NewSession(mines.NewSource(seed), mines.WithPlacement(g.placement))
	if err := s.Start(d); err != nil {
		g.badRequest(w, err)
		return
	}

	row, err := g.store.CreateGameSession(
		r.Context(), s, repository.CreateGameSessionParams{Seed: seed},
	)
	if err != nil {
		g.internalError(w, "unable to create game session", err)
		return
	}

	if err := g.cookies.Issue(w, row.GameSessionId); err != nil {
		g.internalError(w, "unable to issue session cookies", err)
		return
	}

	g.logger.Debug(
		"created game session",
		slog.Int64("gameSessionId", row.GameSessionId),
		slog.String("difficulty", d.String()),
	)

	g.reply(w, http.StatusCreated, row, s, nil)
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	row, s, ok := g.load(w, r)
	if !ok {
		return
	}
	g.reply(w, http.StatusOK, row, s, nil)
}

// Start begins a new game in an existing session. A new seed is drawn
// unless one is given.
func (g *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		g.badRequest(w, err)
		return
	}

	row, s, ok := g.load(w, r)
	if !ok {
		return
	}

	d, err := ParseDifficulty(r.Form)
	if err != nil {
		g.badRequest(w, err)
		return
	}

	opts, err := ParseGameOptions(r.Form)
	if err != nil {
		g.badRequest(w, err)
		return
	}
	seed := opts.Seed
	if seed == "" {
		seed = g.newSeed()
	}

	if err := s.Start(d); err != nil {
		g.badRequest(w, err)
		return
	}
	s.SetSource(mines.NewSource(seed))

	params := repository.NewUpdateParams(s, time.Now())
	params.Seed = &seed
	row, ok = g.save(w, r, row, params)
	if !ok {
		return
	}

	g.reply(w, http.StatusOK, row, s, nil)
}

type move func(s *mines.Session, x, y int) ([]mines.Event, error)

func (g *GameHandler) makeMove(w http.ResponseWriter, r *http.Request, m move) {
	if err := r.ParseForm(); err != nil {
		g.badRequest(w, err)
		return
	}

	p, err := ParsePoint(r.Form)
	if err != nil {
		g.badRequest(w, err)
		return
	}

	row, s, ok := g.load(w, r)
	if !ok {
		return
	}

	events, err := m(s, p.X, p.Y)
	if errors.Is(err, mines.ErrInvalidCoordinate) {
		g.badRequest(w, err)
		return
	}
	if err != nil {
		g.internalError(w, "unable to apply move", err)
		return
	}

	row, ok = g.save(w, r, row, repository.NewUpdateParams(s, time.Now()))
	if !ok {
		return
	}

	g.reply(w, http.StatusOK, row, s, events)
}

func (g *GameHandler) Click(w http.ResponseWriter, r *http.Request) {
	g.makeMove(w, r, (*mines.Session).Click)
}

func (g *GameHandler) Flag(w http.ResponseWriter, r *http.Request) {
	g.makeMove(w, r, (*mines.Session).RightClick)
}

func (g *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	row, s, ok := g.load(w, r)
	if !ok {
		return
	}

	s.Reset()

	row, ok = g.save(w, r, row, repository.NewUpdateParams(s, time.Now()))
	if !ok {
		return
	}

	g.reply(w, http.StatusOK, row, s, nil)
}

func (g *GameHandler) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /difficulty", g.Difficulties)
	mux.HandleFunc("POST /game", g.NewGame)
	mux.HandleFunc("GET /game/{id}", g.Fetch)
	mux.HandleFunc("POST /game/{id}/start", g.Start)
	mux.HandleFunc("POST /game/{id}/click", g.Click)
	mux.HandleFunc("POST /game/{id}/flag", g.Flag)
	mux.HandleFunc("POST /game/{id}/reset", g.Reset)
	mux.HandleFunc("GET /game/{id}/connect", g.ConnectWS)
	return mux
}
