package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/omriShneor/whatsapp_eventer/internal/calendar"
	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/gcal"
	"github.com/omriShneor/whatsapp_eventer/internal/language"
)

type conversationRequest struct {
	Conversation string `json:"conversation"`
}

type textRequest struct {
	Text string `json:"text"`
}

// Health Check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"database": "connected",
		"detector": s.detector.Name(),
		"timezone": s.mapper.Location().String(),
	})
}

// Pipeline API

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"language":         language.Detect(req.Text),
		"contains_hebrew":  language.ContainsHebrew(req.Text),
		"contains_english": language.ContainsEnglish(req.Text),
	})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	events, ok := s.detectFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	events, ok := s.detectFromRequest(w, r)
	if !ok {
		return
	}

	doc, err := s.mapper.ConvertToJSON(events)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"document":   json.RawMessage(doc),
		"validation": s.validator.Validate(doc),
	})
}

// handleValidate grades a raw calendar document. Malformed JSON is a
// validation failure, not a bad request.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.validator.Validate(string(body)))
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	events, ok := s.detectFromRequest(w, r)
	if !ok {
		return
	}

	ics, err := calendar.ExportICS(s.mapper.Convert(events))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, ics)
}

func (s *Server) handleGoogleEvents(w http.ResponseWriter, r *http.Request) {
	events, ok := s.detectFromRequest(w, r)
	if !ok {
		return
	}
	items := gcal.ToGoogleEvents(s.mapper.Convert(events))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": items,
		"count":  len(items),
	})
}

func (s *Server) detectFromRequest(w http.ResponseWriter, r *http.Request) ([]detector.DetectedEvent, bool) {
	var req conversationRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}
	events := s.detector.DetectEvents(req.Conversation)
	if events == nil {
		events = []detector.DetectedEvent{}
	}
	return events, true
}

// Helpers

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return body, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
