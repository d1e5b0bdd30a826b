package main

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/jackc/pgx/v5"

	"mineagent/internal/agent"
	"mineagent/internal/board"
)

var dec = schema.NewDecoder()

func init() {
	dec.IgnoreUnknownKeys(true)
}

type SolveParams struct {
	Width     int    `schema:"width,required"`
	Height    int    `schema:"height,required"`
	MineCount int    `schema:"mine_count,required"`
	Seed      uint64 `schema:"seed"`
}

func (p SolveParams) rand() *rand.Rand {
	if p.Seed != 0 {
		return rand.New(rand.NewPCG(p.Seed, p.Seed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(),
		new(maphash.Hash).Sum64(),
	))
}

func handleNewSession(w http.ResponseWriter, r *http.Request) {
	var params SolveParams
	if err := dec.Decode(&params, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	rnd := params.rand()
	b, err := board.New(params.Height, params.Width, params.MineCount, rnd)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}
	player := agent.New(b, rnd)

	var playerId *int64
	if claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims); ok {
		log.Debug("creating session for player ", claims.Username)
		playerId = &claims.PlayerId
		refreshPlayerCookie(w, *claims)
	} else {
		log.Debug("creating anonymous session")
	}
	session, err := pg.CreateSession(r.Context(), playerId, player)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}

func fetchSession(w http.ResponseWriter, r *http.Request) *SolveSession {
	sessionId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil
	}
	session, err := pg.GetSession(r.Context(), sessionId)
	if err == pgx.ErrNoRows {
		w.WriteHeader(http.StatusNotFound)
		return nil
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return nil
	}
	return session
}

func handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}

// saveSession stamps ended_at on a finished game and persists the
// player state.
func saveSession(w http.ResponseWriter, r *http.Request, session *SolveSession) bool {
	if session.Player.Done() && session.EndedAt.IsZero() {
		session.EndedAt = nowUTC()
	}
	if err := pg.UpdateSession(r.Context(), session); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return false
	}
	return true
}

type StepResponse struct {
	Move    *agent.Move   `json:"move,omitempty"`
	Session *SolveSession `json:"session"`
}

func handleStep(w http.ResponseWriter, r *http.Request) {
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	var resp StepResponse
	if move, ok := session.Player.Step(); ok {
		resp.Move = &move
	}
	resp.Session = session
	if !saveSession(w, r, session) {
		return
	}
	if _, err := sendJSON(w, resp); err != nil {
		log.Error(err)
	}
}

func handleRun(w http.ResponseWriter, r *http.Request) {
	session := fetchSession(w, r)
	if session == nil {
		return
	}
	outcome, trace := session.Player.Play()
	if !saveSession(w, r, session) {
		return
	}
	log.WithFields(map[string]any{
		"session": session.SessionId,
		"outcome": outcome.String(),
		"moves":   len(trace),
	}).Info("session played out")
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}
