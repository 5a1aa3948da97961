// Package main provides a standalone health probe for container health checks
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Config holds command-line configuration
type Config struct {
	URL           string
	Timeout       time.Duration
	Verbose       bool
	AllowDegraded bool
	RetryCount    int
	RetryDelay    time.Duration
}

type healthResponse struct {
	Status string `json:"status"`
	Checks []struct {
		Name    string `json:"name"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"checks"`
}

func main() {
	os.Exit(run(parseFlags(), os.Stdout))
}

// parseFlags parses command-line flags
func parseFlags() Config {
	cfg := Config{}
	flag.StringVar(&cfg.URL, "url", envOr("HEALTH_CHECK_URL", "http://localhost:8080/health"), "Health check endpoint URL")
	flag.DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "Request timeout")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Print every dependency check")
	flag.BoolVar(&cfg.AllowDegraded, "allow-degraded", true, "Treat a degraded service as passing")
	flag.IntVar(&cfg.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&cfg.RetryDelay, "retry-delay", time.Second, "Delay between retries")
	flag.Parse()
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(cfg Config, out io.Writer) int {
	client := &http.Client{Timeout: cfg.Timeout}

	var lastErr error
	for attempt := 0; attempt <= cfg.RetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(cfg.RetryDelay)
		}

		health, err := probe(client, cfg.URL)
		if err != nil {
			lastErr = err
			continue
		}

		if cfg.Verbose {
			for _, c := range health.Checks {
				fmt.Fprintf(out, "%-10s %-9s %s\n", c.Name, c.Status, c.Message)
			}
		}
		fmt.Fprintf(out, "status: %s\n", health.Status)

		switch {
		case health.Status == "healthy":
			return exitCodeSuccess
		case health.Status == "degraded" && cfg.AllowDegraded:
			return exitCodeSuccess
		default:
			return exitCodeFailure
		}
	}

	fmt.Fprintf(out, "health check failed after %d attempts: %v\n", cfg.RetryCount+1, lastErr)
	return exitCodeError
}

func probe(client *http.Client, url string) (*healthResponse, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("unreadable response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &health, nil
}
