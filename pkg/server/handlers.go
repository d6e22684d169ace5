package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := *s.page
	page.CSRFToken = csrf.Token(r)

	var buf bytes.Buffer
	if _, err := s.renderer.Profile(page, &buf); err != nil {
		s.logger.Error("render page failed", "error", err, "requestID", r.Context().Value(contextKeyRequestID))
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to render page", true, nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("response write failed", "error", err)
	}
}

// handleSubmit reads the management form of every page group from the
// posted form.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid form body", false,
			map[string]any{"error": err.Error()})
		return
	}

	resp := SubmissionResponse{Groups: make([]formset.ManagementForm, 0, len(s.configs))}
	for _, cfg := range s.configs {
		form, err := formset.InspectGroup(r.PostForm, cfg)
		if err != nil {
			status, code := formsetError(err)
			WriteError(w, r, status, code, err.Error(), false, map[string]any{"group": cfg.Tag})
			return
		}
		resp.Groups = append(resp.Groups, form)
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleFragments runs the add operation on posted HTML. A failed add
// returns an error and no markup, even when earlier adds in the batch
// committed.
func (s *Server) handleFragments(w http.ResponseWriter, r *http.Request) {
	var req FragmentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		WriteError(w, r, status, ErrCodeInvalidRequest, "Invalid JSON body", false,
			map[string]any{"error": err.Error()})
		return
	}

	req.Group = strings.TrimSpace(req.Group)
	if req.Times == 0 {
		req.Times = 1
	}
	switch {
	case strings.TrimSpace(req.HTML) == "":
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "html is required", false, nil)
		return
	case req.Group == "":
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "group is required", false, nil)
		return
	case req.Times < 1 || req.Times > s.config.MaxAdds:
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "times out of range", false,
			map[string]any{"min": 1, "max": s.config.MaxAdds})
		return
	}

	doc, err := formset.ParseString(req.HTML)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid html", false,
			map[string]any{"error": err.Error()})
		return
	}

	var added []AddedFragment
	manager, err := formset.New(doc,
		formset.WithRegistry(s.registry),
		formset.WithLogger(s.logger),
		formset.WithAddHook(func(result formset.Result) {
			added = append(added, AddedFragment{Index: result.Index, Total: result.Total})
		}),
	)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, err.Error(), false, nil)
		return
	}

	if _, err := manager.AddN(req.Group, req.Times); err != nil {
		status, code := formsetError(err)
		fragmentFailures.WithLabelValues(code).Inc()
		s.logger.Debug("add fragment rejected", "group", req.Group, "code", code, "error", err)
		WriteError(w, r, status, code, err.Error(), false, map[string]any{
			"group":     req.Group,
			"committed": len(added),
		})
		return
	}
	fragmentsAdded.WithLabelValues(req.Group).Add(float64(len(added)))

	markup, err := formset.RenderString(manager.Document())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to render html", true, nil)
		return
	}

	respondJSON(w, http.StatusOK, FragmentResponse{
		HTML:   markup,
		Added:  added,
		Groups: formset.Present(manager.Discover()),
	})
}

func (s *Server) handleGroups(w http.ResponseWriter, _ *http.Request) {
	resp := struct {
		Name      string              `json:"name"`
		Version   string              `json:"version"`
		Timestamp string              `json:"timestamp"`
		Groups    []model.GroupConfig `json:"groups"`
	}{
		Name:      s.config.Name,
		Version:   s.config.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Groups:    s.configs,
	}
	respondJSON(w, http.StatusOK, resp)
}
