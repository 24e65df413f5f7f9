// cmd/mcp-server/main.go — Standalone HTTP MCP server for symopt
//
// Exposes the optimizer tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//   go run cmd/mcp-server/main.go -port 8080
//
// Environment:
//   SYMOPT_PORT       port to listen on when -port is not given (default 8080)
//   SYMOPT_PRECISION  significant digits of rendered floats (default 15)
//   SYMOPT_DEBUG      log every tool call when set to true
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/njchilds90/symopt"
	"github.com/xyproto/env/v2"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	port := flag.Int("port", env.Int("SYMOPT_PORT", 8080), "Port to listen on")
	flag.Parse()

	level := slog.LevelInfo
	if env.Bool("SYMOPT_DEBUG") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	precision := env.Int("SYMOPT_PRECISION", symopt.DefaultPrecision)

	mux := http.NewServeMux()

	// POST /tool — handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in /tool", "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req symopt.ToolRequest
		if err := dec.Decode(&req); err != nil {
			writeError(w, err.Error())
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeError(w, "invalid JSON: trailing data")
			return
		}
		if req.Tool == "optimise" && req.Params != nil {
			if _, ok := req.Params["precision"]; !ok {
				req.Params["precision"] = float64(precision)
			}
		}

		start := time.Now()
		resp := symopt.HandleToolCall(req)
		logger.Debug("tool call", "tool", req.Tool, "took", time.Since(start), "error", resp.Error)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	// GET /schema — return tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, symopt.MCPToolSpec())
	})

	// GET /health — liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("symopt MCP server listening", "addr", addr, "precision", precision)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func writeError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
