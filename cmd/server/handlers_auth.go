package main

import (
	"errors"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

type PlayerInfo struct {
	Username string `json:"username"`
	PlayerId int64  `json:"player_id"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

// This endpoint may be called for the side effect in [authMiddleware]
// that clears expired auth cookies
func handleStatus(w http.ResponseWriter, r *http.Request) {
	var status *Status
	if claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims); ok {
		status = &Status{
			LoggedIn: true,
			Player:   &PlayerInfo{claims.Username, claims.PlayerId},
		}
		refreshPlayerCookie(w, *claims)
	} else {
		status = &Status{LoggedIn: false}
	}
	if _, err := sendJSON(w, status); err != nil {
		log.Error(err)
	}
}

func credentials(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return "", nil, false
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("body must contain url-encoded username and password"))
		return "", nil, false
	}
	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("password must not exceed 72 bytes"))
		return "", nil, false
	}
	return username, passwordBytes, true
}

func handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(w, r)
	if !ok {
		return
	}
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.MinCost)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	playerId, err := pg.CreatePlayer(r.Context(), username, hash)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("username taken"))
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	token, err := createPlayerToken(playerId, username)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	setPlayerCookie(w, token)
	w.WriteHeader(http.StatusCreated)
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentials(w, r)
	if !ok {
		return
	}
	playerId, hash, err := pg.GetPlayer(r.Context(), username)
	if err == pgx.ErrNoRows {
		w.WriteHeader(http.StatusUnauthorized)
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if err := bcrypt.CompareHashAndPassword(hash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			w.WriteHeader(http.StatusUnauthorized)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error("bcrypt compare error: ", err)
		}
		return
	}
	token, err := createPlayerToken(playerId, username)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	setPlayerCookie(w, token)
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	clearPlayerCookie(w)
}
