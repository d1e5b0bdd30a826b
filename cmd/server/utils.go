package main

import (
	"encoding/json"
	"net/http"
	"time"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func sendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	return w.Write(payload)
}
