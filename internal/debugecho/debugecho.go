// Package debugecho implements the peripheral "echo" debug endpoint
// named in spec §1 as out-of-scope glue: a plain WebSocket echo plus a
// liveness probe, neither of which touches matchmaker or game state.
// Unlike the core servers (internal/wsproto), this endpoint is free to
// use the full-featured gorilla/websocket since it isn't part of the
// mandated hand-rolled framing layer.
package debugecho

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler builds the debug HTTP mux: GET /healthz for liveness, and
// GET /echo upgraded to a WebSocket that sends back whatever text
// message it receives, grounded on the original implementation's
// new_websocket echo coroutine.
func Handler(log *zap.SugaredLogger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/echo", handleEcho(log))
	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleEcho(log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debugw("echo upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, message); err != nil {
				return
			}
		}
	}
}
