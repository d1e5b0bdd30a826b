package main

import (
	"encoding/json"
	"strconv"
	"time"

	"mineagent/internal/agent"
	"mineagent/internal/board"
)

type SolveSession struct {
	SessionId int64
	PlayerId  *int64
	Player    *agent.Player
	StartedAt time.Time
	EndedAt   time.Time
}

type SolveSessionJSON struct {
	SessionId string     `json:"session_id"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	MineCount int        `json:"mine_count"`
	Outcome   string     `json:"outcome"`
	Moves     int        `json:"moves"`
	Flagged   int        `json:"flagged"`
	Grid      board.Grid `json:"grid"`
	StartedAt int64      `json:"started_at"`
	EndedAt   *int64     `json:"ended_at,omitempty"`
}

func (s SolveSession) MarshalJSON() ([]byte, error) {
	var endedAt *int64
	if !s.EndedAt.IsZero() {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}
	b := s.Player.Board()
	return json.Marshal(SolveSessionJSON{
		SessionId: strconv.FormatInt(s.SessionId, 10),
		Width:     b.Width,
		Height:    b.Height,
		MineCount: b.MineCount,
		Outcome:   s.Player.Outcome().String(),
		Moves:     s.Player.Moves(),
		Flagged:   s.Player.FlaggedMines(),
		Grid:      s.Player.Grid(),
		StartedAt: s.StartedAt.UnixMilli(),
		EndedAt:   endedAt,
	})
}
