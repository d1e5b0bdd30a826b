package main

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mineagent/internal/agent"
)

const (
	createPlayerTable = `
CREATE TABLE IF NOT EXISTS player (
	player_id 		bigint 	GENERATED ALWAYS AS IDENTITY
							PRIMARY KEY,
	username 		text 	UNIQUE NOT NULL,
	password_hash 	bytea 	NOT NULL,
	created_at 		timestamp with time zone
							DEFAULT now()
							NOT NULL
);`
	createSolverSessionTable = `
CREATE TABLE IF NOT EXISTS solver_session (
	session_id		bigint 	GENERATED ALWAYS AS IDENTITY
							PRIMARY KEY,
	player_id		bigint	REFERENCES player (player_id)
							NULL,
	width			integer	NOT NULL,
	height			integer	NOT NULL,
	mine_count		integer	NOT NULL,
	outcome			text	NOT NULL,
	moves			integer	NOT NULL,
	flagged			integer	NOT NULL,
	state			bytea	NOT NULL,
	started_at		timestamp with time zone
							DEFAULT now()
							NOT NULL,
	ended_at		timestamp with time zone
							NULL
);`
	initSql = createPlayerTable + createSolverSessionTable
)

type postgres struct {
	db *pgxpool.Pool
}

func newPostgres(ctx context.Context, dbUrl string) (*postgres, error) {
	dbconfig, err := pgxpool.ParseConfig(dbUrl)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, dbconfig)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(ctx, initSql); err != nil {
		return nil, err
	}
	return &postgres{db}, nil
}

func (pg *postgres) Ping(ctx context.Context) error {
	return pg.db.Ping(ctx)
}

func (pg *postgres) Close() {
	pg.db.Close()
}

func (pg *postgres) CreatePlayer(
	ctx context.Context, username string, passwordHash []byte,
) (int64, error) {
	var playerId int64
	row := pg.db.QueryRow(ctx, `
	INSERT INTO player (username, password_hash)
	VALUES ($1, $2)
	RETURNING player_id;`,
		username, passwordHash)
	err := row.Scan(&playerId)
	return playerId, err
}

func (pg *postgres) GetPlayer(
	ctx context.Context, username string,
) (playerId int64, passwordHash []byte, err error) {
	row := pg.db.QueryRow(ctx, `
	SELECT player_id, password_hash FROM player WHERE username = $1;`,
		username)
	err = row.Scan(&playerId, &passwordHash)
	return
}

func encodePlayer(player *agent.Player) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(player)
	return buf.Bytes(), err
}

func (pg *postgres) CreateSession(
	ctx context.Context, playerId *int64, player *agent.Player,
) (*SolveSession, error) {
	state, err := encodePlayer(player)
	if err != nil {
		return nil, err
	}
	b := player.Board()
	session := &SolveSession{PlayerId: playerId, Player: player}
	row := pg.db.QueryRow(ctx, `
	INSERT INTO solver_session (
		player_id, width, height, mine_count,
		outcome, moves, flagged, state
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING session_id, started_at;`,
		playerId, b.Width, b.Height, b.MineCount,
		player.Outcome().String(), player.Moves(), player.FlaggedMines(),
		state)
	if err := row.Scan(&session.SessionId, &session.StartedAt); err != nil {
		return nil, err
	}
	return session, nil
}

func (pg *postgres) GetSession(
	ctx context.Context, sessionId int64,
) (*SolveSession, error) {
	var (
		session = SolveSession{SessionId: sessionId}
		state   []byte
		endedAt *time.Time
	)
	row := pg.db.QueryRow(ctx, `
	SELECT player_id, state, started_at, ended_at
	FROM solver_session WHERE session_id = $1;`,
		sessionId)
	if err := row.Scan(
		&session.PlayerId, &state, &session.StartedAt, &endedAt,
	); err != nil {
		return nil, err
	}
	if endedAt != nil {
		session.EndedAt = *endedAt
	}
	session.Player = &agent.Player{}
	if err := gob.NewDecoder(bytes.NewReader(state)).Decode(session.Player); err != nil {
		return nil, err
	}
	return &session, nil
}

func (pg *postgres) UpdateSession(
	ctx context.Context, session *SolveSession,
) error {
	state, err := encodePlayer(session.Player)
	if err != nil {
		return err
	}
	var endedAt *time.Time
	if !session.EndedAt.IsZero() {
		endedAt = &session.EndedAt
	}
	_, err = pg.db.Exec(ctx, `
	UPDATE solver_session
	SET outcome = $2, moves = $3, flagged = $4, state = $5, ended_at = $6
	WHERE session_id = $1;`,
		session.SessionId,
		session.Player.Outcome().String(),
		session.Player.Moves(),
		session.Player.FlaggedMines(),
		state, endedAt)
	return err
}
