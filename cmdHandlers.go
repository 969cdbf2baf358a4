package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crop-recommendation/crop"
	"crop-recommendation/store"
	"crop-recommendation/utils"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/mdobak/go-xerrors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serverConfig is read from the environment (and .env) at startup.
type serverConfig struct {
	DBURL           string
	DBName          string
	DBCollection    string
	ModelDir        string
	ModelServiceURL string
	CertFile        string
	CertKey         string
}

func loadServerConfig() (serverConfig, error) {
	cfg := serverConfig{
		DBURL:           utils.GetEnv("DB_URL", ""),
		DBName:          utils.GetEnv("DB_NAME", store.DefaultDatabase),
		DBCollection:    utils.GetEnv("DB_COLLECTION", store.DefaultCollection),
		ModelDir:        utils.GetEnv("MODEL_DIR", "artifacts"),
		ModelServiceURL: utils.GetEnv("MODEL_SERVICE_URL", ""),
		CertFile:        utils.GetEnv("CERT_FILE", ""),
		CertKey:         utils.GetEnv("CERT_KEY", ""),
	}
	if cfg.DBURL == "" {
		return serverConfig{}, errors.New("DB_URL is not set")
	}
	return cfg, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, crop.PredictionResponse{Success: false, Message: message})
}

func setCORSHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", methods)
}

func newPredictHandler(handler *crop.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w, "POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		resp := handler.Handle(r.Context(), r.Body)
		writeJSON(w, resp.Status, resp)
	}
}

func newHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w, "GET, OPTIONS")
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// newRouter wires the HTTP surface. socketServer may be nil.
func newRouter(handler *crop.Handler, socketServer http.Handler) *http.ServeMux {
	predictHandler := instrument("/predict", newPredictHandler(handler))

	mux := http.NewServeMux()
	if socketServer != nil {
		mux.Handle("/socket.io/", socketServer)
	}
	mux.HandleFunc("/predict", predictHandler)
	mux.HandleFunc("/api/predict", predictHandler)
	mux.HandleFunc("/health", instrument("/health", newHealthHandler()))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// buildPredictionHandler loads the artifacts and opens the store.
func buildPredictionHandler(ctx context.Context, cfg serverConfig, logger *slog.Logger) (*crop.Handler, store.Store, error) {
	var model crop.Model
	if cfg.ModelServiceURL != "" {
		remote := crop.NewRemoteModel(cfg.ModelServiceURL)
		if err := remote.HealthCheck(); err != nil {
			logger.WarnContext(ctx, "model service health check failed", slog.Any("error", err))
		}
		model = remote
	}

	artifacts, err := crop.LoadArtifacts(cfg.ModelDir, model)
	if err != nil {
		return nil, nil, err
	}

	predictionStore, err := store.Open(ctx, cfg.DBURL, cfg.DBName, cfg.DBCollection)
	if err != nil {
		return nil, nil, err
	}

	handler := crop.NewHandler(artifacts.MinMax, artifacts.Standard, artifacts.Model, crop.DefaultLabels(), predictionStore, logger)
	return handler, predictionStore, nil
}

func serve(protocol, port string) {
	protocol = strings.ToLower(protocol)
	logger := utils.GetLogger()
	ctx := context.Background()

	cfg, err := loadServerConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	handler, predictionStore, err := buildPredictionHandler(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to initialise prediction pipeline", slog.Any("error", xerrors.New(err)))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "prediction pipeline ready",
		slog.String("modelDir", cfg.ModelDir),
		slog.Bool("remoteModel", cfg.ModelServiceURL != ""),
		slog.String("collection", cfg.DBCollection),
	)

	var allowOriginFunc = func(r *http.Request) bool {
		return true
	}
	controller := newSocketController(handler)

	socketServer := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: allowOriginFunc,
			},
			&polling.Transport{
				CheckOrigin: allowOriginFunc,
			},
		},
	})

	socketServer.OnConnect("/", func(socket socketio.Conn) error {
		socket.SetContext("")
		log.Printf("CONNECTED: %s, remote addr: %s\n", socket.ID(), socket.RemoteAddr())
		return nil
	})

	socketServer.OnEvent("/", "predict", func(socket socketio.Conn, msg string) {
		go controller.handlePredict(socket, msg)
	})

	socketServer.OnError("/", func(s socketio.Conn, e error) {
		log.Println("meet error:", e)
	})

	socketServer.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("Socket disconnected - ID: %s, Reason: %s\n", s.ID(), reason)
	})

	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("socketio listen error: %s\n", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           newRouter(handler, socketServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go serveHTTP(httpServer, protocol == "https", cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}
	if err := socketServer.Close(); err != nil {
		log.Printf("socketio close: %v", err)
	}
	if err := predictionStore.Close(shutdownCtx); err != nil {
		log.Printf("failed to close store: %v", err)
	}
}

func serveHTTP(server *http.Server, serveHTTPS bool, cfg serverConfig) {
	if serveHTTPS {
		server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if cfg.CertKey == "" || cfg.CertFile == "" {
			log.Fatal("Missing cert")
		}

		log.Printf("Starting HTTPS server on %s\n", server.Addr)
		if err := server.ListenAndServeTLS(cfg.CertFile, cfg.CertKey); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTPS server ListenAndServeTLS: %v", err)
		}
		return
	}

	log.Printf("Starting HTTP server on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP server ListenAndServe: %v", err)
	}
}
