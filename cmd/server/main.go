package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stockwatch/internal/config"
	"stockwatch/internal/httpx"
	"stockwatch/internal/logging"
	"stockwatch/internal/portfolio"
	"stockwatch/internal/quote"
	"stockwatch/internal/quote/cache"
	"stockwatch/internal/quote/naver"
	"stockwatch/internal/quote/ratelimit"
	"stockwatch/internal/valuation"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	src := buildSource(cfg)
	store := portfolio.NewStore(cfg.Portfolio.DataFile)
	updater := &portfolio.Updater{
		Source:         src,
		MaxConcurrency: cfg.Portfolio.MaxConcurrency,
		Log:            log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handleGetQuote(w, r, src)
	})
	mux.HandleFunc("/api/portfolio", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handleGetPortfolio(w, r, store)
	})
	mux.HandleFunc("/api/portfolio/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handleRefresh(w, r, store, updater)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(recoverPanic(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("server stopped")
}

// buildSource assembles the quote pipeline: fetcher, optional rate limiting,
// then the TTL cache in front.
func buildSource(cfg config.Config) quote.Source {
	hc := httpx.New(time.Duration(cfg.Quotes.TimeoutSec) * time.Second)

	opts := []naver.Option{
		naver.WithHTTPClient(hc),
		naver.WithBaseURL(cfg.Quotes.Endpoint),
	}
	if cfg.Quotes.UserAgent != "" {
		opts = append(opts, naver.WithUserAgent(cfg.Quotes.UserAgent))
	}

	var src quote.Source = naver.New(opts...)
	if cfg.Quotes.MaxRequestsPerMinute > 0 {
		rate := float64(cfg.Quotes.MaxRequestsPerMinute) / 60.0
		burst := cfg.Quotes.Burst
		if burst <= 0 {
			burst = 1
		}
		src = &ratelimit.TokenBucketSource{S: src, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.Quotes.MinRequestIntervalSec > 0 {
		src = &ratelimit.MinInterval{S: src, Interval: time.Duration(cfg.Quotes.MinRequestIntervalSec) * time.Second}
	}
	return cache.New(src, time.Duration(cfg.Quotes.CacheTTLSeconds)*time.Second)
}

type quoteResponse struct {
	quote.Snapshot
	ChangeDisplay string `json:"change_display"`
}

func handleGetQuote(w http.ResponseWriter, r *http.Request, src quote.Source) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code query param", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	snap, err := src.Fetch(ctx, code)
	if err != nil {
		var qe *quote.Error
		if errors.As(err, &qe) && qe.Kind == quote.KindParse {
			http.Error(w, "no quote for code "+code, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, quoteResponse{
		Snapshot:      snap,
		ChangeDisplay: valuation.FormatChange(snap.Change, snap.ChangeRate),
	})
}

type instrumentView struct {
	portfolio.Instrument
	Signal        valuation.Signal `json:"signal"`
	ChangeDisplay string           `json:"change_display"`
}

type portfolioResponse struct {
	User    string            `json:"user"`
	Primary instrumentView    `json:"primary"`
	Watch   []instrumentView  `json:"watch"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func viewOf(set portfolio.Set, user string, errs map[string]error) portfolioResponse {
	resp := portfolioResponse{
		User:    user,
		Primary: instrumentToView(set.Primary),
		Watch:   make([]instrumentView, 0, len(set.Watch)),
	}
	for _, inst := range set.Watch {
		resp.Watch = append(resp.Watch, instrumentToView(inst))
	}
	if len(errs) > 0 {
		resp.Errors = make(map[string]string, len(errs))
		for code, err := range errs {
			resp.Errors[code] = err.Error()
		}
	}
	return resp
}

func instrumentToView(inst portfolio.Instrument) instrumentView {
	return instrumentView{
		Instrument:    inst,
		Signal:        valuation.Evaluate(inst.CurrentPrice, inst.TargetBuy, inst.TargetSell),
		ChangeDisplay: valuation.FormatChange(inst.Change, inst.ChangeRate),
	}
}

func handleGetPortfolio(w http.ResponseWriter, r *http.Request, store *portfolio.Store) {
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "missing user query param", http.StatusBadRequest)
		return
	}
	set, err := store.Load(user)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, viewOf(set, user, nil))
}

func handleRefresh(w http.ResponseWriter, r *http.Request, store *portfolio.Store, updater *portfolio.Updater) {
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "missing user query param", http.StatusBadRequest)
		return
	}
	set, err := store.Load(user)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	updated, errs := updater.RefreshAll(ctx, set)
	if err := store.Save(user, updated); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, viewOf(updated, user, errs))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
