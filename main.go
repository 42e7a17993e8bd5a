package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"Drivecalc/internal/auth"
	"Drivecalc/internal/calc"
	"Drivecalc/internal/calc/batch"
	"Drivecalc/internal/calc/bevel"
	"Drivecalc/internal/calc/chain"
	"Drivecalc/internal/calc/characteristic"
	"Drivecalc/internal/calc/efficiency"
	"Drivecalc/internal/calc/importer"
	"Drivecalc/internal/calc/ratio"
	"Drivecalc/internal/calc/report"
	"Drivecalc/internal/calc/split"
	"Drivecalc/internal/catalog"
	"Drivecalc/internal/config"
	"Drivecalc/internal/metrics"
	"Drivecalc/internal/repo"
	"Drivecalc/internal/session"
)

func CORS(origin string, mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, registry *session.Registry) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.Auth.TokenKey)}
	if !authEnv.Enabled() {
		logrus.Warn("TOKEN_KEY is not set, session API is open")
	}
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.Auth.RateLimit), cfg.Auth.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)
	api.HandleFunc("/catalog", catalog.Handler).Methods("GET")

	tools := api.PathPrefix("/tools").Subrouter()
	tools.HandleFunc("/efficiency/calc", calc.Endpoint("efficiency", efficiency.Calculate)).Methods("POST")
	tools.HandleFunc("/ratio/calc", calc.Endpoint("ratio", ratio.Calculate)).Methods("POST")
	tools.HandleFunc("/split/calc", calc.Endpoint("split", split.Calculate)).Methods("POST")
	tools.HandleFunc("/characteristic/calc", calc.Endpoint("characteristic", characteristic.Calculate)).Methods("POST")
	tools.HandleFunc("/bevel/calc", calc.Endpoint("bevel", bevel.Calculate)).Methods("POST")
	tools.HandleFunc("/chain/calc", calc.Endpoint("chain", chain.Calculate)).Methods("POST")
	tools.HandleFunc("/batch/calc", calc.Endpoint("batch", batch.Calculate)).Methods("POST")

	importH := &importer.Handler{Registry: registry}
	reportH := &report.Handler{Registry: registry}
	tools.HandleFunc("/batch/import", importH.Import).Methods("POST")
	tools.HandleFunc("/batch/template.xlsx", importH.Template).Methods("GET")

	secureApi := api.PathPrefix("/sessions").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)
	secureApi.HandleFunc("/{code}/report.pdf", reportH.Generate).Methods("GET")
	secureApi.HandleFunc("/{code}/results.xlsx", importH.Export).Methods("GET")
	session.NewHandler(registry).Routes(secureApi)

	if cfg.Metrics {
		mux.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := repo.Open(ctx, cfg.Store)
	if err != nil {
		logrus.Fatalf("store: %v", err)
	}
	defer store.Close()

	registry := session.NewRegistry(store, cfg.Store.IdleSessions, session.WithSaveTimeout(cfg.Store.SaveTimeout))
	metrics.OpenSessions(prometheus.DefaultRegisterer, registry.Len)

	router := mux.NewRouter()
	HandleList(router, cfg, registry)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           CORS(cfg.HTTP.CORSOrigin, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{"addr": cfg.HTTP.Addr, "tls": cfg.HTTP.TLS()}).Info("starting server")
		var err error
		if cfg.HTTP.TLS() {
			err = server.ListenAndServeTLS(cfg.HTTP.TLSCert, cfg.HTTP.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutdown signal received, closing active connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.Errorf("server error: %v", err)
		return
	}
	logrus.Info("server stopped")
}
