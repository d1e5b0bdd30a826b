package main

import "net/http"

func buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/register", handleRegister)
	mux.HandleFunc("POST /v1/login", handleLogin)
	mux.HandleFunc("POST /v1/logout", handleLogout)

	mux.HandleFunc("GET /v1/status", handleStatus)
	mux.HandleFunc("GET /v1/records", handleGetRecords)
	mux.HandleFunc("GET /v1/myrecords", handleGetOwnRecords)

	mux.HandleFunc("POST /v1/solve", handleNewSession)
	mux.HandleFunc("GET /v1/solve/{id}", handleGetSession)
	mux.HandleFunc("POST /v1/solve/{id}/step", handleStep)
	mux.HandleFunc("POST /v1/solve/{id}/run", handleRun)

	mux.HandleFunc("/v1/solve/{id}/watch", handleWatch)

	handler := useMiddleware(mux,
		corsMiddleware,
		authMiddleware,
		rateLimitMiddleware,
		loggingMiddleware,
	)

	return handler
}
