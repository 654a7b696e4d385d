package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Configuration
var (
	targetURL    = flag.String("url", "http://localhost:5001/flags/evaluate", "Evaluate endpoint URL")
	serviceToken = flag.String("token", "flaggate-dev-token", "Service token")
	totalVUs     = flag.Int("c", 200, "Total Virtual Users (Concurrency)")
	duration     = flag.Duration("d", 60*time.Second, "Test duration")
	featureKey   = flag.String("feature", "loadtest-latency-check", "Feature name to evaluate")
)

// Metrics
var (
	requestsOK   int64
	requestsFail int64
	latencySum   int64 // milliseconds
	latencyCount int64
)

func main() {
	flag.Parse()

	fmt.Printf("Starting evaluate load test\n")
	fmt.Printf("   Target: %s\n", *targetURL)
	fmt.Printf("   VUs: %d\n", *totalVUs)
	fmt.Printf("   Duration: %v\n", *duration)

	http.DefaultTransport.(*http.Transport).MaxIdleConns = *totalVUs
	http.DefaultTransport.(*http.Transport).MaxConnsPerHost = *totalVUs

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	// Metric Reporter
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ok := atomic.SwapInt64(&requestsOK, 0)
				fails := atomic.SwapInt64(&requestsFail, 0)
				latSum := atomic.SwapInt64(&latencySum, 0)
				latCnt := atomic.SwapInt64(&latencyCount, 0)

				avgLat := float64(0)
				if latCnt > 0 {
					avgLat = float64(latSum) / float64(latCnt)
				}
				fmt.Printf("rps=%d errors=%d avg_latency=%.1fms\n", ok, fails, avgLat)
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < *totalVUs; i++ {
		wg.Add(1)
		go func(vu int) {
			defer wg.Done()
			runVU(ctx, vu)
		}(i)
	}

	wg.Wait()
	fmt.Println("load test finished")
}

func runVU(ctx context.Context, vu int) {
	client := &http.Client{Timeout: 5 * time.Second}
	userID := fmt.Sprintf("loadtest-user-%d", vu)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		url := fmt.Sprintf("%s?user_id=%s&feature_name=%s", *targetURL, userID, *featureKey)
		req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
		req.Header.Set("X-Service-Token", *serviceToken)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddInt64(&requestsFail, 1)
			continue
		}

		var decision struct {
			FeatureKey string `json:"feature_key"`
			Enabled    bool   `json:"enabled"`
			Source     string `json:"source"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&decision)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK || decodeErr != nil {
			atomic.AddInt64(&requestsFail, 1)
			continue
		}

		atomic.AddInt64(&requestsOK, 1)
		atomic.AddInt64(&latencySum, time.Since(start).Milliseconds())
		atomic.AddInt64(&latencyCount, 1)
	}
}
