package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/omriShneor/whatsapp_eventer/internal/database"
	"github.com/omriShneor/whatsapp_eventer/internal/evaluation"
)

type createRunRequest struct {
	Mode       database.RunMode `json:"mode"`
	Difficulty string           `json:"difficulty,omitempty"`
	Name       string           `json:"name,omitempty"`
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases := s.corpus.All()
	if value := r.URL.Query().Get("difficulty"); value != "" {
		d, err := evaluation.ParseDifficulty(value)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		cases = s.corpus.ByDifficulty(d)
	}
	if cases == nil {
		cases = []evaluation.Case{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cases": cases,
		"count": len(cases),
	})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = database.RunModeDetection
	}
	if req.Mode != database.RunModeDetection && req.Mode != database.RunModeCalendar {
		respondError(w, http.StatusBadRequest, "mode must be 'detection' or 'calendar'")
		return
	}

	cases, filter, err := s.corpus.Select(req.Difficulty, req.Name)
	if errors.Is(err, evaluation.ErrCaseNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	runner := evaluation.NewRunner(s.detector, s.corpus, evaluation.RunnerOptions{
		Mapper:    s.mapper,
		Validator: s.validator,
		Logger:    s.logger,
	})

	var run *database.EvaluationRun
	if req.Mode == database.RunModeCalendar {
		run = evaluation.NewCalendarRecord(runner.RunCalendarCases(cases), filter)
	} else {
		run = evaluation.NewDetectionRecord(runner.RunCases(cases), filter)
	}

	if err := s.db.SaveRun(run); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("saved evaluation run",
		"id", run.ID,
		"mode", run.Mode,
		"filter", filter,
		"passed", run.PassedTests,
		"total", run.TotalTests,
	)
	respondJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := database.DefaultRunListLimit
	if value := r.URL.Query().Get("limit"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.GetRun(r.PathValue("id"))
	if database.IsRunNotFound(err) {
		respondError(w, http.StatusNotFound, "evaluation run not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteRun(r.PathValue("id"))
	if database.IsRunNotFound(err) {
		respondError(w, http.StatusNotFound, "evaluation run not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
