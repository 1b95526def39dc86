// Mock identity provider exposing the user-info endpoint the gateway
// introspects bearer tokens against. Magic tokens map to fixed personas so
// local runs and e2e checks can exercise every authorization path without a
// real SSO deployment.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort      = "9000"
	defaultLatencyMs = "50"
)

type groupRef struct {
	Name string `json:"name"`
}

type userInfo struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Groups   []groupRef `json:"groups"`
}

// personas keyed by magic bearer token.
var personas = map[string]userInfo{
	"admin-token": {
		Username: "root",
		Email:    "root@example.com",
		Groups:   []groupRef{{Name: "admins"}},
	},
	"contractor-token": {
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Groups:   []groupRef{{Name: "contractors"}},
	},
	"scoped-token": {
		Username: "asmith",
		Email:    "asmith@example.com",
		Groups:   []groupRef{{Name: "contractor-site-42"}},
	},
	"no-groups-token": {
		Username: "visitor",
		Email:    "visitor@example.com",
	},
}

var latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/api/v3/core/user/me/", handleUserInfo)

	log.Printf("mock identity provider starting on port %s", port)
	log.Printf("simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "identity-provider",
	})
}

func handleUserInfo(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		writeError(w, http.StatusForbidden, "missing bearer token")
		return
	}

	// The magic token "slow" simulates an introspection timeout.
	if token == "slow" {
		time.Sleep(30 * time.Second)
	}

	persona, ok := personas[token]
	if !ok {
		writeError(w, http.StatusForbidden, "invalid token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(persona)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": message,
		"code":  code,
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	v := getEnv(key, fallback)
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
