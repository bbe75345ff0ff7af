// Command testserver is a local HTTP target for trying volley by hand.
//
//	go run ./scripts/testserver -port 8080
//	volley http://localhost:8080/flaky?fail=0.1 -n 500 -c 20
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("test server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, newMux()))
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", handleSlow)
	mux.HandleFunc("/status/", handleStatus)
	mux.HandleFunc("/flaky", handleFlaky)
	mux.HandleFunc("/echo", handleEcho)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "path": r.URL.Path})
	})
	return mux
}

// handleSlow sleeps for ?ms= milliseconds, plus up to ?jitter= more.
func handleSlow(w http.ResponseWriter, r *http.Request) {
	delay := queryInt(r, "ms", 100)
	if jitter := queryInt(r, "jitter", 0); jitter > 0 {
		delay += rand.Intn(jitter)
	}
	select {
	case <-time.After(time.Duration(delay) * time.Millisecond):
	case <-r.Context().Done():
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"delay_ms": delay})
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/status/"))
	if err != nil || code < 100 || code > 599 {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "status must be 100-599"})
		return
	}
	w.WriteHeader(code)
}

// handleFlaky fails with 503 for roughly ?fail= of requests.
func handleFlaky(w http.ResponseWriter, r *http.Request) {
	ratio, err := strconv.ParseFloat(r.URL.Query().Get("fail"), 64)
	if err != nil {
		ratio = 0.1
	}
	if rand.Float64() < ratio {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "unlucky"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	headers := map[string]string{}
	for key := range r.Header {
		headers[key] = r.Header.Get(key)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"method":  r.Method,
		"headers": headers,
		"body":    string(body),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
