package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"hokm-lite/apps/server/internal/auth"
	"hokm-lite/apps/server/internal/gateway"
	"hokm-lite/apps/server/internal/history"
	"hokm-lite/apps/server/internal/lobby"
)

func main() {
	authService := auth.NewManager()
	defer authService.Close()

	store, historyMode, err := history.NewStoreFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init history store: %v", err)
	}
	defer store.Close()

	lby := lobby.New(store)
	defer lby.Stop()
	gw := gateway.New(lby, authService)
	authHTTP := auth.NewHTTPHandler(authService)
	historyHTTP := history.NewHTTPHandler(authService, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	authHTTP.RegisterRoutes(mux)
	historyHTTP.RegisterRoutes(mux)

	addr := ":8080"
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		addr = ":" + port
	}
	log.Printf("[Server] History mode: %s", historyMode)
	log.Printf("[Server] Starting WebSocket server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
