// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/grepdb/pkg/grep"
	"github.com/kraklabs/grepdb/pkg/highlight"
	"github.com/kraklabs/grepdb/pkg/store"
)

// serveFlags holds configuration for the serve command.
type serveFlags struct {
	port string
}

// grepServer holds the server state.
type grepServer struct {
	cfg    *Config
	logger *slog.Logger

	searchesTotal  *prometheus.CounterVec
	rowsMatched    prometheus.Counter
	searchDuration prometheus.Histogram
}

// runServe starts a local HTTP server that exposes the search API.
func runServe(args []string, cfg *Config) int {
	f := &serveFlags{}

	// Parse flags
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--port", "-p":
			if i+1 < len(args) {
				f.port = args[i+1]
				i++
			}
		case "--help", "-h":
			printServeUsage()
			return 0
		}
	}

	// Defaults
	if f.port == "" {
		f.port = cfg.Serve.Port
	}
	if f.port == "" {
		f.port = getEnv("GREPDB_SERVE_PORT", "8080")
	}

	if len(cfg.Sources) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no sources configured. Run 'grepdb init' first or point --config at a configuration file")
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	srv := &grepServer{
		cfg:    cfg,
		logger: logger,
		searchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grepdb_searches_total",
			Help: "Search requests by outcome.",
		}, []string{"outcome"}),
		rowsMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grepdb_rows_matched_total",
			Help: "Rows returned by searches.",
		}),
		searchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grepdb_search_duration_seconds",
			Help:    "Wall time of search requests.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/v1/search", srv.handleSearch)
	mux.HandleFunc("/v1/schema", srv.handleSchema)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + f.port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("server.shutdown")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	logger.Info("server.start", "addr", "http://0.0.0.0:"+f.port, "sources", len(cfg.Sources))
	logger.Info("server.endpoints",
		"health", "GET /health",
		"search", "POST /v1/search",
		"schema", "GET /v1/schema?source=<name>[&table=<table>]",
		"metrics", "GET /metrics",
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}

	return 0
}

func (s *grepServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"sources": len(s.cfg.Sources),
	})
}

// searchRequest is the POST /v1/search body.
type searchRequest struct {
	Pattern     string   `json:"pattern"`
	Identifiers []string `json:"identifiers"`
	IgnoreCase  bool     `json:"ignore_case"`
	ShowValues  string   `json:"show_values"` // "a", "l", a context width, or "none"
	ColumnTypes []string `json:"column_types,omitempty"`
	Limit       int      `json:"limit"`
	TimeoutMs   int      `json:"timeout_ms"`
}

func (s *grepServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	outcome := "error"
	defer func() {
		s.searchesTotal.WithLabelValues(outcome).Inc()
		s.searchDuration.Observe(time.Since(start).Seconds())
	}()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		outcome = "bad_request"
		http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Pattern == "" {
		outcome = "bad_request"
		http.Error(w, "pattern is required", http.StatusBadRequest)
		return
	}
	if len(req.Identifiers) == 0 {
		outcome = "bad_request"
		http.Error(w, "at least one identifier is required", http.StatusBadRequest)
		return
	}

	idents := make([]grep.Identifier, 0, len(req.Identifiers))
	for _, raw := range req.Identifiers {
		id, err := grep.ParseIdentifier(raw)
		if err != nil {
			outcome = "bad_request"
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		idents = append(idents, id)
	}

	show := true
	mode := highlight.Line()
	if req.ShowValues != "" && req.ShowValues != "l" {
		if req.ShowValues == "none" {
			show = false
		} else {
			var err error
			mode, err = highlight.ParseMode(req.ShowValues)
			if err != nil {
				outcome = "bad_request"
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	greq := &grep.Request{
		Pattern:     req.Pattern,
		IgnoreCase:  req.IgnoreCase,
		Mode:        mode,
		ShowValues:  show,
		Mark:        func(s string) string { return s },
		ColumnTypes: grep.ColumnTypes(req.ColumnTypes),
		Limit:       req.Limit,
	}
	h, err := greq.Compile()
	if err != nil {
		outcome = "bad_request"
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	engine := grep.NewEngine(func(source string) (*store.Store, error) {
		path, err := s.cfg.SourcePath(source)
		if err != nil {
			return nil, err
		}
		return store.Open(path)
	})
	defer func() { _ = engine.Close() }()

	timeout := 30 * time.Second
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	queries, err := engine.Plan(ctx, idents, greq.ColumnTypes)
	if err != nil {
		outcome = "bad_request"
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var results []searchOutput
	for _, q := range queries {
		res, err := engine.Run(ctx, q, greq, h)
		if err != nil {
			if ctx.Err() != nil {
				outcome = "timeout"
				http.Error(w, "search timeout", http.StatusRequestTimeout)
				return
			}
			s.logger.Error("search.field.error", "field", q.String(), "err", err)
			http.Error(w, "search error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if len(res.Rows) == 0 {
			continue
		}
		s.rowsMatched.Add(float64(len(res.Rows)))
		results = append(results, fieldJSON(res, nil))
	}
	if results == nil {
		results = []searchOutput{}
	}

	outcome = "ok"
	s.logger.Info("search.done",
		"pattern", req.Pattern,
		"fields", len(queries),
		"matched_fields", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
}

func (s *grepServer) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		http.Error(w, "source is required", http.StatusBadRequest)
		return
	}
	path, err := s.cfg.SourcePath(source)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	st, err := store.Open(path)
	if err != nil {
		http.Error(w, "cannot open source: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	if table := r.URL.Query().Get("table"); table != "" {
		cols, err := st.Columns(ctx, table)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		type columnInfo struct {
			Name     string `json:"name"`
			DeclType string `json:"decl_type"`
			Text     bool   `json:"text"`
			Char     bool   `json:"char"`
		}
		infos := make([]columnInfo, 0, len(cols))
		for _, c := range cols {
			infos = append(infos, columnInfo{Name: c.Name, DeclType: c.DeclType, Text: c.IsText(), Char: c.IsChar()})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"source": source, "table": table, "columns": infos})
		return
	}

	tables, err := st.Tables(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"source": source, "tables": tables})
}

func printServeUsage() {
	fmt.Println(`Usage: grepdb serve [options]

Description:
  Start a local HTTP server that exposes the grepdb search API, so
  other tools can grep the configured sources over HTTP.

Options:
  -p, --port <port>        Port to listen on (default: 8080, or serve.port from config)
  -h, --help               Show this help message

Environment Variables:
  GREPDB_SERVE_PORT        Port to listen on (default: 8080)
  GREPDB_CONFIG_PATH       Path to .grepdb/config.yaml

API Endpoints:
  GET  /health             Health check
  POST /v1/search          Run a search (JSON body)
  GET  /v1/schema          List tables or columns of a source
  GET  /metrics            Prometheus metrics

Examples:
  # Start server with default settings
  grepdb serve

  # Start on a specific port
  grepdb serve --port 9090

  # Search over HTTP
  curl -s localhost:8080/v1/search -d '{
    "pattern": "connection refused",
    "identifiers": ["app.logs"]
  }' | jq .`)
}
