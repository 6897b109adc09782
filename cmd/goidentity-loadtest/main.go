// Command goidentity-loadtest drives the identity client against an
// in-process API stub and reports request latency and refresh behavior under
// concurrency. Every -expire-every operations the server invalidates the
// current access token, forcing a 401 storm that the refresh coordinator must
// collapse into a single refresh call.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goIdentity "github.com/MrEthical07/goIdentity"
	"github.com/MrEthical07/goIdentity/token"
)

type apiStub struct {
	mu          sync.Mutex
	validAccess string
	generation  int

	refreshCalls atomic.Int64
	dataCalls    atomic.Int64
	rejections   atomic.Int64
}

func (s *apiStub) issueAccess() string {
	s.generation++
	header, _ := json.Marshal(map[string]any{"alg": "HS256", "typ": "JWT"})
	payload, _ := json.Marshal(map[string]any{
		"sub": "load-user",
		"gen": s.generation,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	enc := base64.RawURLEncoding
	tok := enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".sig"
	s.validAccess = tok
	return tok
}

func (s *apiStub) expire() {
	s.mu.Lock()
	s.validAccess = ""
	s.mu.Unlock()
}

func (s *apiStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/identity/authentication", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		access := s.issueAccess()
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"succeeded":    true,
			"accessToken":  access,
			"refreshToken": "load-refresh",
		})
	})
	mux.HandleFunc("/v1/identity/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)
		s.mu.Lock()
		access := s.issueAccess()
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"succeeded":    true,
			"accessToken":  access,
			"refreshToken": "load-refresh",
		})
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		s.dataCalls.Add(1)
		s.mu.Lock()
		valid := s.validAccess
		s.mu.Unlock()
		if valid == "" || r.Header.Get("Authorization") != "Bearer "+valid {
			s.rejections.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"succeeded": true})
	})
	return mux
}

func main() {
	var (
		workers     = flag.Int("workers", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "total requests to issue")
		expireEvery = flag.Int("expire-every", 2000, "invalidate the access token every N requests (0 disables)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *workers <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "workers and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	stub := &apiStub{}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client, err := goIdentity.NewBuilder().
		WithBaseURL(server.URL).
		WithKV(token.NewRedisKV(rdb, "loadtest")).
		WithNavigator(goIdentity.NavigatorFunc(func(string) {})).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client build: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if _, err := client.Login(ctx, goIdentity.LoginRequest{Email: "load@example.com", Password: "load"}); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("running %d ops across %d workers...\n", *ops, *workers)

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, *ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= *ops {
					return
				}
				if *expireEvery > 0 && i > 0 && i%*expireEvery == 0 {
					stub.expire()
				}

				t0 := time.Now()
				err := client.Do(ctx, http.MethodGet, "/data", nil, nil)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)

	stats := computeStats(total, latencies, failures)
	printStats("requests", stats)

	fmt.Println("---- refresh behavior ----")
	fmt.Printf("  401 rejections observed:  %d\n", stub.rejections.Load())
	fmt.Printf("  refresh network calls:    %d\n", stub.refreshCalls.Load())
	fmt.Printf("  refresh successes:        %d\n", client.Metrics().Value(goIdentity.MetricRefreshSuccess))
	fmt.Printf("  coalesced waiters:        %d\n", client.Metrics().Value(goIdentity.MetricRefreshCoalesced))
	fmt.Printf("  retries:                  %d\n", client.Metrics().Value(goIdentity.MetricRequestRetried))
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples)*p + 99) / 100
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("---- %s ----\n", name)
	fmt.Printf("  ops:       %d\n", s.ops)
	fmt.Printf("  failures:  %d\n", s.failures)
	fmt.Printf("  total:     %s\n", s.total.Round(time.Millisecond))
	fmt.Printf("  ops/sec:   %.0f\n", s.opsPerS)
	fmt.Printf("  p50:       %s\n", s.p50)
	fmt.Printf("  p95:       %s\n", s.p95)
	fmt.Printf("  p99:       %s\n", s.p99)
}
