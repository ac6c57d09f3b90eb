package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"kokorolog/internal/emotion"
	"kokorolog/internal/export"
	"kokorolog/internal/journal"
	"kokorolog/internal/logging"
	"kokorolog/internal/reply"
)

const studentCookieMaxAge = 365 * 24 * 60 * 60

// ensureStudentID reads the identity cookie, minting one for first-time
// visitors. The cookie is the only student identity the system has.
func (s *Server) ensureStudentID(w http.ResponseWriter, r *http.Request) string {
	name := s.cfg.Server.CookieName
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    sid,
		Path:     "/",
		MaxAge:   studentCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func classOrDefault(classID string) string {
	if v := strings.TrimSpace(classID); v != "" {
		return v
	}
	return "default"
}

func queryInt(r *http.Request, key, def string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		v = def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// submitError maps classification errors onto client status codes.
func submitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, emotion.ErrEmptyText):
		writeError(w, r, http.StatusBadRequest, "prompt/text は必須です。")
	case errors.Is(err, emotion.ErrUnknownLabel):
		writeError(w, r, http.StatusUnprocessableEntity, "selected_emotion を正規化できません。")
	default:
		logging.WithRequestID(logging.CategoryServer, RequestID(r)).Error("submit failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

type analyzeRequest struct {
	Prompt          string `json:"prompt"`
	Text            string `json:"text"`
	ClassID         string `json:"class_id"`
	SelectedEmotion string `json:"selected_emotion"`
}

func (a analyzeRequest) text() string {
	if a.Prompt != "" {
		return a.Prompt
	}
	return a.Text
}

type analyzeResponse struct {
	ID        int64           `json:"id"`
	ClassID   string          `json:"class_id"`
	Day       string          `json:"day"`
	CreatedAt string          `json:"created_at"`
	Labels    emotion.Vector  `json:"labels"`
	Emotion   string          `json:"emotion"`
	Score     float64         `json:"score"`
	StudentID string          `json:"student_id"`
	Signals   emotion.Signals `json:"signals"`
}

// handleAnalyze classifies a journal entry and persists the blended
// day state. A manual selection is echoed back as-is; automatic
// classification returns the blended distribution the row now holds.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := s.ensureStudentID(w, r)
	out, err := s.journal.Submit(r.Context(), journal.Submission{
		StudentID: sid,
		ClassID:   classOrDefault(req.ClassID),
		Text:      req.text(),
		Selected:  req.SelectedEmotion,
		RequestID: RequestID(r),
	})
	if err != nil {
		submitError(w, r, err)
		return
	}

	labels := out.Entry.Labels
	label := out.Entry.Emotion
	score := out.Entry.Score
	if out.Classified.Manual {
		labels = out.Classified.Labels
		label = out.Classified.Emotion
		score = out.Classified.Score
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		ID:        out.Entry.ID,
		ClassID:   out.Entry.ClassID,
		Day:       out.Entry.Day,
		CreatedAt: out.Entry.CreatedAt.UTC().Format(time.RFC3339),
		Labels:    labels,
		Emotion:   label.String(),
		Score:     score,
		StudentID: sid,
		Signals:   out.Entry.Signals,
	})
}

type askRequest struct {
	Prompt          string `json:"prompt"`
	ClassID         string `json:"class_id"`
	SelectedEmotion string `json:"selected_emotion"`
	Style           string `json:"style"`
	Followup        bool   `json:"followup"`
}

type askResponse struct {
	Reply    string         `json:"reply"`
	Emotion  string         `json:"emotion"`
	Labels   emotion.Vector `json:"labels"`
	UsedLLM  bool           `json:"used_llm"`
	Reason   string         `json:"llm_reason,omitempty"`
	Style    string         `json:"style"`
	Followup bool           `json:"followup"`
}

// handleAsk is handleAnalyze plus an empathetic reply. The reply is
// keyed to the fresh classification, not the blended day state.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := s.ensureStudentID(w, r)
	out, err := s.journal.Submit(r.Context(), journal.Submission{
		StudentID: sid,
		ClassID:   classOrDefault(req.ClassID),
		Text:      req.Prompt,
		Selected:  req.SelectedEmotion,
		RequestID: RequestID(r),
	})
	if err != nil {
		submitError(w, r, err)
		return
	}

	style := req.Style
	if style == "" {
		style = s.cfg.Reply.Persona
	}
	persona := reply.ParsePersona(style)
	rep := s.replier.Reply(r.Context(), strings.TrimSpace(req.Prompt), out.Classified.Emotion, persona, req.Followup)

	writeJSON(w, http.StatusOK, askResponse{
		Reply:    rep.Text,
		Emotion:  out.Classified.Emotion.String(),
		Labels:   out.Classified.Labels,
		UsedLLM:  rep.UsedLLM,
		Reason:   rep.Reason,
		Style:    rep.Persona,
		Followup: rep.Followup,
	})
}

// handleSummary serves an uncached report; short windows are allowed.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Summary(r.Context(), strings.TrimSpace(r.URL.Query().Get("class_id")), queryInt(r, "days", "7"))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "report generation failed")
		return
	}
	if r.URL.Query().Get("view") == "full" {
		writeJSON(w, http.StatusOK, rep)
		return
	}
	writeJSON(w, http.StatusOK, rep.Compact())
}

// handleWeekly serves the TTL-cached weekly report.
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Weekly(r.Context(), strings.TrimSpace(r.URL.Query().Get("class_id")), queryInt(r, "days", "7"))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "report generation failed")
		return
	}
	if r.URL.Query().Get("view") == "full" {
		writeJSON(w, http.StatusOK, rep)
		return
	}
	writeJSON(w, http.StatusOK, rep.Compact())
}

// handleDashboard serves raw per-day counts; class_id is required.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	classID := strings.TrimSpace(r.URL.Query().Get("class_id"))
	if classID == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "class_id は必須です。")
		return
	}
	d, err := s.reports.Dashboard(r.Context(), classID, queryInt(r, "days", "7"))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "dashboard generation failed")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleExport streams rows as a download; every export is audited.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	classID := strings.TrimSpace(r.URL.Query().Get("class_id"))
	logging.ExportRequest(RequestID(r), classID, string(format))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	if _, err := s.exporter.Export(r.Context(), w, format, classID, queryInt(r, "limit", "1000")); err != nil {
		// headers are out; all we can do is log
		logging.WithRequestID(logging.CategoryExport, RequestID(r)).Error("export failed: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}
