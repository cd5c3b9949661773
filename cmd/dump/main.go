package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"stockwatch/internal/config"
	"stockwatch/internal/httpx"
	"stockwatch/internal/quote/extract"
	"stockwatch/internal/quote/naver"
)

// Dumps the raw quote page for one code and prints what the extractor makes
// of it. Used to check the extraction heuristic against live markup whenever
// the source site changes its page.

func main() {
	var code string
	var outPath string
	var configPath string
	var timeoutSec int

	flag.StringVar(&code, "code", "005930", "instrument code")
	flag.StringVar(&outPath, "out", "", "write the raw document to this file (optional)")
	flag.StringVar(&configPath, "config", "", "path to config.json (optional)")
	flag.IntVar(&timeoutSec, "timeout", 10, "HTTP timeout seconds")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	hc := httpx.New(time.Duration(timeoutSec) * time.Second)
	opts := []naver.Option{naver.WithHTTPClient(hc), naver.WithBaseURL(cfg.Quotes.Endpoint)}
	if cfg.Quotes.UserAgent != "" {
		opts = append(opts, naver.WithUserAgent(cfg.Quotes.UserAgent))
	}
	client := naver.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	body, err := client.FetchDocument(ctx, code)
	if err != nil {
		log.Fatalf("fetch: %v", err)
	}
	log.Printf("fetched %d bytes for %s", len(body), code)

	if outPath != "" {
		if err := os.WriteFile(outPath, body, 0o644); err != nil {
			log.Fatalf("write %s: %v", outPath, err)
		}
		log.Printf("wrote %s", outPath)
	}

	res, err := extract.Extract(string(body))
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	fmt.Printf("price=%d change=%d change_rate=%.2f\n", res.Price, res.Change, res.ChangeRate)
}
