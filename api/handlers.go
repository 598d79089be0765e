package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"executive-analytics/ai"
	"executive-analytics/export"
	"executive-analytics/models"
	"executive-analytics/services"
)

const kpisDataset = "kpis"

type dataRequest struct {
	Filters map[string]any `json:"filters"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

type exportRequest struct {
	Dataset string         `json:"dataset"`
	Filters map[string]any `json:"filters"`
}

type analyzeRequest struct {
	Query string `json:"query"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads an optional JSON body into v. An empty body leaves v as is.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// currentState returns the published run, answering 503 when none exists yet.
func (s *Server) currentState(w http.ResponseWriter) (*state, bool) {
	st := s.current.Load()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "no data loaded yet")
		return nil, false
	}
	return st, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "healthy",
		"timestamp": s.now(),
		"clients":   s.hub.Clients(),
	}
	if res := s.Latest(); res != nil {
		body["run_id"] = res.Snapshot.RunID
		body["generated_at"] = res.Snapshot.GeneratedAt
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	st, ok := s.currentState(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st.result.Snapshot)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	st, ok := s.currentState(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": st.result.Snapshot.Insights})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	st, ok := s.currentState(w)
	if !ok {
		return
	}
	id := models.ChartID(mux.Vars(r)["chart"])
	chart, err := st.result.Chart(id)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%v: %s", err, id))
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["dataset"]
	dataset, known := models.ParseDataset(name)
	if !known {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%v: %s", services.ErrUnknownDataset, name))
		return
	}

	var req dataRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, ok := s.currentState(w)
	if !ok {
		return
	}
	rows := services.FilterRows(st.rc.Rows(dataset), models.SchemaFor(dataset), req.Filters, req.Limit, req.Offset)
	writeJSON(w, http.StatusOK, map[string]any{"data": rows, "count": len(rows)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported format")
		return
	}

	req := exportRequest{Dataset: kpisDataset}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Dataset == "" {
		req.Dataset = kpisDataset
	}

	st, ok := s.currentState(w)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if req.Dataset == kpisDataset {
		err = s.exporter.KPIs(r.Context(), &buf, format, st.result.Snapshot)
	} else {
		dataset, known := models.ParseDataset(req.Dataset)
		if !known {
			writeError(w, http.StatusNotFound, fmt.Sprintf("%v: %s", services.ErrUnknownDataset, req.Dataset))
			return
		}
		rows := services.FilterRows(st.rc.Rows(dataset), models.SchemaFor(dataset), req.Filters, 0, 0)
		err = s.exporter.Rows(&buf, format, dataset, rows)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("[api] export %s/%s: %v", req.Dataset, format, err)
		writeError(w, status, err.Error())
		return
	}

	filename := export.Filename(req.Dataset, format, s.now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	st, ok := s.currentState(w)
	if !ok {
		return
	}

	ctx := r.Context()
	if s.cfg.AITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AITimeout)
		defer cancel()
	}

	payload := ai.BuildContext(st.result.Snapshot, s.cfg.AIContextBudget)
	res := s.analyzer.Analyze(ctx, req.Query, payload)

	status := http.StatusOK
	switch {
	case res.Success:
	case res.Error == ai.ErrNotConfigured.Error():
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res := s.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "refreshed",
		"run_id":       res.Snapshot.RunID,
		"generated_at": res.Snapshot.GeneratedAt,
		"notes":        res.Snapshot.Notes,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var greeting []byte
	if res := s.Latest(); res != nil {
		msg, err := metricsUpdate(res.Snapshot)
		if err == nil {
			greeting = msg
		}
	}
	s.hub.ServeWS(w, r, greeting)
}
