// Package server exposes hexsweeper sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dimaq12/hexsweeper/engine"
	"github.com/dimaq12/hexsweeper/models"
	"github.com/dimaq12/hexsweeper/score"
	"github.com/dimaq12/hexsweeper/storage"
)

// Server holds the running sessions. Sessions are single-threaded, so every
// request touching one runs under mu.
type Server struct {
	registry    models.Registry
	leaderboard *score.Leaderboard
	opts        []engine.Option
	log         logrus.FieldLogger

	mu    sync.Mutex
	games map[uuid.UUID]*game
}

type game struct {
	session *engine.Session
	seen    time.Time
}

func New(registry models.Registry, lb *score.Leaderboard, log logrus.FieldLogger, opts ...engine.Option) *Server {
	return &Server{
		registry:    registry,
		leaderboard: lb,
		opts:        append(opts, engine.WithLogger(log)),
		log:         log,
		games:       make(map[uuid.UUID]*game),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	{
		api.GET("/difficulties", s.handleDifficulties)
		api.POST("/games", s.handleNewGame)
		api.GET("/games/:id", s.handleGetGame)
		api.POST("/games/:id/reveal", s.handleReveal)
		api.POST("/games/:id/flag", s.handleFlag)
		api.POST("/games/:id/score", s.handleScore)
		api.GET("/scores/:difficulty", s.handleScores)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("http")
	}
}

type errorResp struct {
	Error string `json:"error"`
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResp{Error: err.Error()})
}

func (s *Server) handleDifficulties(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.All())
}

type newGameReq struct {
	Difficulty string `json:"difficulty" binding:"required"`
}

func (s *Server) handleNewGame(c *gin.Context) {
	var req newGameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	d, err := s.registry.Lookup(req.Difficulty)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	// placers are shared between sessions
	s.mu.Lock()
	session, err := engine.NewSession(d, s.opts...)
	if err != nil {
		s.mu.Unlock()
		fail(c, http.StatusInternalServerError, err)
		return
	}
	s.games[session.ID] = &game{session: session, seen: time.Now()}
	view := newGameView(session)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, view)
}

// Sweep drops sessions nobody has touched for longer than ttl and reports
// how many went.
func (s *Server) Sweep(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, g := range s.games {
		if now.Sub(g.seen) > ttl {
			delete(s.games, id)
			n++
		}
	}
	return n
}

// Janitor sweeps idle sessions every interval until ctx is done.
func (s *Server) Janitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now, ttl); n > 0 {
				s.log.WithField("sessions", n).Debug("evicted idle sessions")
			}
		}
	}
}

// withSession resolves :id and runs fn with the session locked.
func (s *Server) withSession(c *gin.Context, fn func(*engine.Session)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		fail(c, http.StatusNotFound, errors.New("game not found"))
		return
	}
	g.seen = time.Now()
	fn(g.session)
}

func (s *Server) handleGetGame(c *gin.Context) {
	s.withSession(c, func(session *engine.Session) {
		c.JSON(http.StatusOK, newGameView(session))
	})
}

type moveReq struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

func (r moveReq) coord() models.Coordinate {
	return models.Coordinate{X: *r.X, Y: *r.Y}
}

// moveStatus maps engine errors onto HTTP codes.
func moveStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type revealResp struct {
	engine.RevealResult
	Cells []cellView `json:"cells"`
}

func (s *Server) handleReveal(c *gin.Context) {
	var req moveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.withSession(c, func(session *engine.Session) {
		res, err := session.Reveal(req.coord())
		if err != nil {
			fail(c, moveStatus(err), err)
			return
		}
		changed := res.Changed
		if res.State == engine.Lost {
			changed = append(changed, session.RevealBombs()...)
		}
		c.JSON(http.StatusOK, revealResp{RevealResult: res, Cells: cellViews(session, changed)})
	})
}

type flagResp struct {
	engine.FlagResult
	BombsRemaining int `json:"bombsRemaining"`
}

func (s *Server) handleFlag(c *gin.Context) {
	var req moveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.withSession(c, func(session *engine.Session) {
		res, err := session.ToggleFlag(req.coord())
		if err != nil {
			fail(c, moveStatus(err), err)
			return
		}
		c.JSON(http.StatusOK, flagResp{FlagResult: res, BombsRemaining: session.BombsRemaining()})
	})
}

type scoreReq struct {
	PlayerName string `json:"playerName" binding:"required"`
}

type scoreResp struct {
	NewBest bool                `json:"newBest"`
	Entry   *models.ScoreEntry  `json:"entry,omitempty"`
	Top     []models.ScoreEntry `json:"top"`
}

// handleScore records a won game if it beats the stored best time.
func (s *Server) handleScore(c *gin.Context) {
	var req scoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.withSession(c, func(session *engine.Session) {
		entry, err := session.Score(req.PlayerName)
		if err != nil {
			fail(c, http.StatusConflict, err)
			return
		}
		ctx := c.Request.Context()
		best, err := s.leaderboard.Qualifies(ctx, entry.Difficulty, entry.TimeTaken)
		if err != nil {
			fail(c, storeStatus(err), err)
			return
		}
		resp := scoreResp{NewBest: best}
		if best {
			if err := s.leaderboard.Record(ctx, entry); err != nil {
				fail(c, storeStatus(err), err)
				return
			}
			resp.Entry = &entry
		}
		if resp.Top, err = s.leaderboard.Top(ctx, entry.Difficulty, score.DefaultTopN); err != nil {
			fail(c, storeStatus(err), err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

func storeStatus(err error) int {
	if errors.Is(err, score.ErrInvalidEntry) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleScores(c *gin.Context) {
	d, err := s.registry.Lookup(c.Param("difficulty"))
	if err != nil {
		fail(c, http.StatusNotFound, err)
		return
	}
	top, err := s.leaderboard.Top(c.Request.Context(), d.Name, score.DefaultTopN)
	if err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			s.log.WithError(err).Error("score file corrupt")
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, top)
}
