package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
)

type SolveRecord struct {
	SessionId string  `json:"session_id"`
	Username  *string `json:"username"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	MineCount int     `json:"mine_count"`
	Outcome   string  `json:"outcome"`
	Moves     int     `json:"moves"`
	Playtime  float64 `json:"playtime"`
}

type RecordFilters struct {
	username *string
	params   *SolveParams
}

func (f RecordFilters) WhereClause() (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	clauses := []string{}
	if f.username != nil {
		args["username"] = f.username
		clauses = append(clauses, "username = @username")
	}
	if f.params != nil {
		args["width"] = f.params.Width
		args["height"] = f.params.Height
		args["mineCount"] = f.params.MineCount
		clauses = append(clauses,
			"width = @width",
			"height = @height",
			"mine_count = @mineCount",
		)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return strings.Join(clauses, " and "), args
}

type RecordsOption = func(*RecordFilters)

func RecordsForPlayer(username string) RecordsOption {
	return func(f *RecordFilters) { f.username = &username }
}

func RecordsForParams(params *SolveParams) RecordsOption {
	return func(f *RecordFilters) { f.params = params }
}

func getSolveRecords(
	ctx context.Context, options ...RecordsOption,
) ([]SolveRecord, error) {
	filters := &RecordFilters{}
	for _, op := range options {
		op(filters)
	}

	sql := `
	select
		session_id::text
		, username
		, width
		, height
		, mine_count
		, outcome
		, moves
		, (
			extract('epoch' from ended_at) - extract('epoch' from started_at)
		) * 1000 playtime
	from solver_session
		left outer join player using (player_id)
	where
		outcome = 'won'
		and ended_at is not null`

	whereClause, args := filters.WhereClause()
	if whereClause != "" {
		sql += " and " + whereClause
	}

	sql += " order by moves, playtime"

	rows, err := pg.db.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[SolveRecord])
}

func handleGetRecords(w http.ResponseWriter, r *http.Request) {
	var (
		options []RecordsOption
		params  SolveParams
	)
	if err := dec.Decode(&params, r.URL.Query()); err == nil {
		options = append(options, RecordsForParams(&params))
	}
	records, err := getSolveRecords(r.Context(), options...)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, records); err != nil {
		log.Error(err)
	}
}

func handleGetOwnRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	records, err := getSolveRecords(
		r.Context(), RecordsForPlayer(claims.Username),
	)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, records); err != nil {
		log.Error(err)
	}
}
