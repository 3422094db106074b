// Package main is the entry point for the puzzle event server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/PuzzleEspejos/internal/config"
	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/day"
	"github.com/MRamiBalles/PuzzleEspejos/internal/events"
	"github.com/MRamiBalles/PuzzleEspejos/internal/gate"
	"github.com/MRamiBalles/PuzzleEspejos/internal/infra/storage"
	"github.com/MRamiBalles/PuzzleEspejos/internal/infra/submit"
	"github.com/MRamiBalles/PuzzleEspejos/internal/network"
	"github.com/MRamiBalles/PuzzleEspejos/internal/platform/logger"
	"github.com/MRamiBalles/PuzzleEspejos/internal/platform/metrics"
	"github.com/MRamiBalles/PuzzleEspejos/internal/session"
)

func main() {
	log.Println("[PUZZLE-SERVER] Initializing event puzzle server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Loading event config from " + cfg.EventConfig)
	event, err := day.Load(cfg.EventConfig)
	if err != nil {
		appLogger.Error("Failed to load event config: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	store := storage.NewSQLiteStore(db)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(storage.NewSQLiteEventPersister(db))

	dayID := cfg.DayOverride
	if dayID != 0 {
		if _, ok := event.ByID(dayID); !ok {
			appLogger.Warn("No config for requested day, using the applicable day")
			dayID = 0
		}
	}

	appLogger.Info("Bootstrapping session controller...")
	ctrl, err := session.NewController(session.Options{
		Event:        event,
		DayID:        dayID,
		Store:        store,
		Log:          appLogger,
		EventLog:     eventLog,
		TickInterval: session.DefaultTickInterval,
	})
	if err != nil {
		appLogger.Error("Failed to build session: " + err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(ctrl, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)
	hub.StartStateTicker(ctx)

	sched := gate.NewScheduler(event)
	submitter := submit.NewBuilder(event.Form)

	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	mux.HandleFunc("/api/day", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sched.ApplicableDay(time.Now()))
	})

	mux.HandleFunc("/api/gate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, ctrl.GateStatus())
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, ctrl.Snapshot())
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.History()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, entries)
	})

	mux.HandleFunc("/api/profile/name", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := store.SetName(req.Name); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/submit-url", func(w http.ResponseWriter, r *http.Request) {
		reward := ctrl.Reward()
		if reward == nil {
			writeJSON(w, map[string]string{"url": ""})
			return
		}
		profile := ctrl.Profile()
		digits, err := store.Digits()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		url := submitter.URL(submit.Payload{
			ID:           profile.ID,
			Name:         profile.Name,
			FinalCode:    reward.FinalCode,
			PerDayDigits: digits,
			Day:          ctrl.Day().ID,
			Accuracy:     reward.Accuracy,
			TimeUsedSec:  reward.TimeUsedSec,
		})
		writeJSON(w, map[string]string{"url": url})
	})

	// Session transitions. Gate violations surface as the locked snapshot,
	// not as HTTP errors.
	sessionAction := func(fn func() error) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			if err := fn(); err != nil && err != session.ErrLocked && err != session.ErrBadPhase {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, ctrl.Snapshot())
		}
	}

	mux.HandleFunc("/api/reset", sessionAction(ctrl.ResetAll))

	mux.HandleFunc("/api/session/view", sessionAction(ctrl.View))
	mux.HandleFunc("/api/session/start", sessionAction(ctrl.Acknowledge))
	mux.HandleFunc("/api/session/restart", sessionAction(ctrl.Restart))

	cellAction := func(fn func(int) error) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			var req struct {
				Pos int `json:"pos"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
			if err := fn(req.Pos); err != nil && err != session.ErrBadPhase {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, ctrl.Snapshot())
		}
	}

	mux.HandleFunc("/api/session/tap", cellAction(ctrl.Tap))
	mux.HandleFunc("/api/session/drag-start", cellAction(ctrl.DragStart))
	mux.HandleFunc("/api/session/drag-end", cellAction(ctrl.DragEnd))
	mux.HandleFunc("/api/session/drag-cancel", sessionAction(func() error {
		ctrl.DragCancel()
		return nil
	}))

	mux.HandleFunc("/api/session/mirror", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Option string `json:"option"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := ctrl.PickMirror(req.Option); err != nil && err != session.ErrBadPhase {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, ctrl.Snapshot())
	})

	mux.HandleFunc("/api/input-mode", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if err := ctrl.SetInputMode(session.InputMode(req.Mode)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, ctrl.Snapshot())
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Println("[PUZZLE-SERVER] HTTP API & WS Server listening on " + cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[PUZZLE-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[PUZZLE-SERVER] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = db.Close()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the static frontend
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
