package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/domain"
	"github.com/hamed0406/linkchecker/internal/linkcheck"
	"github.com/hamed0406/linkchecker/internal/repo"
)

const maxBodyBytes = 1 << 20

type urlPayload struct {
	URL string `json:"url"`
}

type batchPayload struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var p batchPayload
	if err := decode(w, r, &p); err != nil || len(p.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	results, err := s.Validator.ValidateBatch(r.Context(), p.URLs)
	if errors.Is(err, linkcheck.ErrBatchTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		s.Logger.Warn("validate_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "validation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var p urlPayload
	if err := decode(w, r, &p); err != nil || p.URL == "" {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	writeJSON(w, http.StatusOK, s.Validator.ValidateOne(r.Context(), p.URL))
}

func (s *Server) handlePageLinks(w http.ResponseWriter, r *http.Request) {
	var p urlPayload
	if err := decode(w, r, &p); err != nil || p.URL == "" {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	links, err := s.Extractor.Links(r.Context(), p.URL)
	if err != nil {
		var ge *linkcheck.GuardError
		if errors.As(err, &ge) {
			writeError(w, http.StatusBadRequest, ge.Reason)
			return
		}
		s.Logger.Info("page_fetch_error", zap.String("url", p.URL), zap.Error(err))
		writeError(w, http.StatusBadGateway, "could not fetch page")
		return
	}

	toCheck := links
	if limit := min(s.MaxBatch, linkcheck.DefaultMaxBatch); len(toCheck) > limit {
		toCheck = toCheck[:limit]
	}
	results, err := s.Validator.ValidateBatch(r.Context(), toCheck)
	if err != nil {
		s.Logger.Warn("page_validate_error", zap.String("url", p.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "validation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":      p.URL,
		"links":     links,
		"results":   results,
		"truncated": len(links) > len(toCheck),
	})
}

func (s *Server) handleAddTarget(w http.ResponseWriter, r *http.Request) {
	var p urlPayload
	if err := decode(w, r, &p); err != nil || p.URL == "" {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	u := normalizeHTTPURL(p.URL)
	if err := s.Guard(u); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if existing, err := s.Targets.GetByURL(r.Context(), u); err != nil {
		s.Logger.Error("target_lookup_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not add")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "already watched")
		return
	}

	t := &domain.Target{URL: u, CreatedAt: time.Now().UTC()}
	if err := s.Targets.Add(r.Context(), t); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			writeError(w, http.StatusConflict, "already watched")
			return
		}
		s.Logger.Error("target_add_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not add")
		return
	}

	// one synchronous check for immediate feedback
	res := s.Validator.ValidateOne(r.Context(), u)
	cr := domain.FromValidation(t.ID, res)
	if err := s.Results.Append(r.Context(), cr); err != nil {
		s.Logger.Warn("result_append_error", zap.String("url", u), zap.Error(err))
	}

	s.Logger.Info("added_target",
		zap.String("url", u),
		zap.Bool("valid", res.IsValid),
		zap.Int("status", res.StatusCode),
	)
	writeJSON(w, http.StatusCreated, map[string]any{"target": t, "result": cr})
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Targets.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if ts == nil {
		ts = []*domain.Target{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Results.Latest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "latest error")
		return
	}
	if rows == nil {
		rows = []repo.LatestRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
