package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		log.Debug("\tws origin: ", r.Host)
		return true
	},
}

// handleWatch streams the agent's play over a websocket. The client
// sends "step" for a single move or "run" to watch the game out; every
// move goes back as one JSON frame, followed by the session snapshot.
func handleWatch(w http.ResponseWriter, r *http.Request) {
	sessionId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	session, err := pg.GetSession(context.Background(), sessionId)
	if err == pgx.ErrNoRows {
		w.WriteHeader(http.StatusNotFound)
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade: ", err)
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warn("read: ", err)
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}
		command := strings.TrimSpace(string(message))
		log.Debug("\t> ", command)

		switch command {
		case "step":
			if move, ok := session.Player.Step(); ok {
				if err := c.WriteJSON(move); err != nil {
					log.Error("write: ", err)
					return
				}
			}
		case "run":
			for {
				move, ok := session.Player.Step()
				if !ok {
					break
				}
				if err := c.WriteJSON(move); err != nil {
					log.Error("write: ", err)
					return
				}
			}
		default:
			log.Error("unknown watch command: ", command)
			return
		}

		if !saveWatchedSession(session) {
			return
		}
		if err := c.WriteJSON(session); err != nil {
			log.Error("write: ", err)
			break
		}
		log.Debug("\t< <session data>")
	}
}

func saveWatchedSession(session *SolveSession) bool {
	if session.Player.Done() && session.EndedAt.IsZero() {
		session.EndedAt = nowUTC()
	}
	if err := pg.UpdateSession(context.Background(), session); err != nil {
		log.Error(err)
		return false
	}
	return true
}
