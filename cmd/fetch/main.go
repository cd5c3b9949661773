package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"stockwatch/internal/config"
	"stockwatch/internal/httpx"
	"stockwatch/internal/quote"
	"stockwatch/internal/quote/cache"
	"stockwatch/internal/quote/naver"
	"stockwatch/internal/valuation"
)

// One-shot quote fetch for a list of instrument codes; prints JSON.

type row struct {
	quote.Snapshot
	ChangeDisplay string `json:"change_display"`
	Error         string `json:"error,omitempty"`
}

func main() {
	var codesCSV string
	var timeout int
	var configPath string

	flag.StringVar(&codesCSV, "codes", getenv("CODES", "005930"), "comma-separated instrument codes")
	flag.IntVar(&timeout, "timeout", 15, "overall timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	codes := splitCSV(codesCSV)
	if len(codes) == 0 {
		log.Fatal("no codes provided")
	}

	hc := httpx.New(time.Duration(cfg.Quotes.TimeoutSec) * time.Second)
	opts := []naver.Option{naver.WithHTTPClient(hc), naver.WithBaseURL(cfg.Quotes.Endpoint)}
	if cfg.Quotes.UserAgent != "" {
		opts = append(opts, naver.WithUserAgent(cfg.Quotes.UserAgent))
	}
	src := cache.New(naver.New(opts...), time.Duration(cfg.Quotes.CacheTTLSeconds)*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	type result struct {
		code string
		snap quote.Snapshot
		err  error
	}
	ch := make(chan result, len(codes))
	for _, code := range codes {
		code := code
		go func() {
			snap, err := src.Fetch(ctx, code)
			ch <- result{code: code, snap: snap, err: err}
		}()
	}

	byCode := make(map[string]result, len(codes))
	for range codes {
		r := <-ch
		byCode[r.code] = r
	}

	rows := make([]row, 0, len(codes))
	for _, code := range codes {
		r := byCode[code]
		if r.err != nil {
			log.Printf("%s error: %v", code, r.err)
			rows = append(rows, row{Snapshot: quote.Snapshot{Code: code}, Error: r.err.Error()})
			continue
		}
		rows = append(rows, row{
			Snapshot:      r.snap,
			ChangeDisplay: valuation.FormatChange(r.snap.Change, r.snap.ChangeRate),
		})
	}

	b, _ := json.MarshalIndent(struct {
		Quotes []row `json:"quotes"`
	}{Quotes: rows}, "", "  ")
	fmt.Println(string(b))
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
