package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/olgasafonova/wikidot-mcp-server/internal/wikidot"
)

// measureCachePerformance compares a cold page-ID resolution with a cached one
func measureCachePerformance(ctx context.Context, client *wikidot.Client, page string) {
	fmt.Println("=== Page-ID Cache Test ===")
	fmt.Println()

	start := time.Now()
	id, err := client.ResolvePageID(ctx, page, "")
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	firstCall := time.Since(start)
	fmt.Printf("1. %s resolved to %d\n", page, id)
	fmt.Printf("   First call (network):  %v\n", firstCall)

	start = time.Now()
	_, _ = client.ResolvePageID(ctx, page, "")
	secondCall := time.Since(start)
	fmt.Printf("   Second call (cached):  %v\n", secondCall)
	if secondCall > 0 {
		fmt.Printf("   Speedup: %.0fx faster\n", float64(firstCall)/float64(secondCall))
	}
	fmt.Println()
}

// measureFallbackPerformance times the page-source fallback on its own
func measureFallbackPerformance(ctx context.Context, client *wikidot.Client, page string) {
	fmt.Println("=== Page Source Fetch ===")
	fmt.Println()

	start := time.Now()
	src, err := client.FetchPageSource(ctx, page, true)
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	fmt.Printf("2. norender fetch of %s: %v (%d bytes)\n", page, time.Since(start), len(src))
	fmt.Println()
}

// measureConcurrentPerformance compares sequential lookups with concurrent ones
// on a fresh client, so neither run benefits from the cache.
func measureConcurrentPerformance(ctx context.Context, newClient func() (*wikidot.Client, error), pages []string) {
	fmt.Println("=== Sequential vs Concurrent Resolution ===")
	fmt.Println()

	seq, err := newClient()
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	defer seq.Close()

	start := time.Now()
	for _, p := range pages {
		_, _ = seq.ResolvePageID(ctx, p, "")
	}
	sequentialTime := time.Since(start)
	fmt.Printf("3. Sequential time for %d pages: %v\n", len(pages), sequentialTime)

	par, err := newClient()
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	defer par.Close()

	start = time.Now()
	var wg sync.WaitGroup
	for _, p := range pages {
		wg.Add(1)
		go func(page string) {
			defer wg.Done()
			_, _ = par.ResolvePageID(ctx, page, "")
		}(p)
	}
	wg.Wait()
	concurrentTime := time.Since(start)
	fmt.Printf("   Concurrent time for %d pages: %v\n", len(pages), concurrentTime)
	if concurrentTime > 0 {
		fmt.Printf("   Speedup: %.1fx faster\n", float64(sequentialTime)/float64(concurrentTime))
	}
	fmt.Println()
}

func main() {
	pagesFlag := flag.String("pages", "scp-173,scp-096,scp-682", "comma-separated page names")
	flag.Parse()

	_ = godotenv.Load()

	config, err := wikidot.LoadConfig()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	// Fail fast instead of sitting through the full backoff
	config.MaxRetries = 2

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	newClient := func() (*wikidot.Client, error) {
		return wikidot.NewClient(config, wikidot.WithLogger(logger))
	}

	client, err := newClient()
	if err != nil {
		fmt.Printf("Client error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	pages := strings.Split(*pagesFlag, ",")
	ctx := context.Background()

	fmt.Println("Wikidot MCP Server - Performance Measurements")
	fmt.Println("=============================================")
	fmt.Printf("Site: %s\n\n", client.BaseURL())

	measureCachePerformance(ctx, client, pages[0])
	measureFallbackPerformance(ctx, client, pages[0])
	measureConcurrentPerformance(ctx, newClient, pages)
}
