package api

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/framecast/editor-agent/internal/editor"
	"github.com/framecast/editor-agent/internal/shell"
	"github.com/framecast/editor-agent/internal/timeline"
)

const maxActionBytes = 4 << 20

func openSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := cfg.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, s)
	}
}

func listSessionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := cfg.Sessions.List()
		if sessions == nil {
			sessions = []editor.Session{}
		}
		WriteJSON(w, http.StatusOK, SessionsResponse{Sessions: sessions})
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, s)
	}
}

func closeSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func dispatchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBytes))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		action, err := timeline.DecodeAction(body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
			return
		}

		s, err := cfg.Sessions.Dispatch(chi.URLParam(r, "id"), action)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, s)
	}
}

func switchTabHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TabRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		if req.Tab != shell.TabEdit && req.Tab != shell.TabPreview {
			WriteError(w, http.StatusBadRequest, "tab must be edit or preview", CodeBadRequest)
			return
		}

		s, patch, err := cfg.Sessions.SwitchTab(chi.URLParam(r, "id"), req.Tab)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, TabResponse{Session: s, Patch: patch})
	}
}

func playerTimeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayerTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		if req.CurrentTime == nil {
			WriteError(w, http.StatusBadRequest, "current_time is required", CodeBadRequest)
			return
		}

		s, err := cfg.Sessions.ReportPlayerTime(chi.URLParam(r, "id"), *req.CurrentTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, s)
	}
}

func selectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		s, err := cfg.Sessions.UpdateSelection(chi.URLParam(r, "id"), req.Update())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, s)
	}
}

func snapHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SnapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		if req.Value == nil {
			WriteError(w, http.StatusBadRequest, "value is required", CodeBadRequest)
			return
		}

		var opts []timeline.SnapOption
		if req.Step != nil {
			opts = append(opts, timeline.WithStep(*req.Step))
		}
		if req.Threshold != nil {
			opts = append(opts, timeline.WithThreshold(*req.Threshold))
		}

		v, err := cfg.Sessions.Snap(chi.URLParam(r, "id"), *req.Value, opts...)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SnapResponse{Value: v})
	}
}

func cueHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("t")
		if raw == "" {
			WriteError(w, http.StatusBadRequest, "t is required", CodeBadRequest)
			return
		}
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
			WriteError(w, http.StatusBadRequest, "t must be a number", CodeBadRequest)
			return
		}

		cue, ok, err := cfg.Sessions.Cue(chi.URLParam(r, "id"), t)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !ok {
			WriteError(w, http.StatusNotFound, "timeline is empty", CodeNotFound)
			return
		}
		WriteJSON(w, http.StatusOK, CueResponse{Time: t, Cue: cue})
	}
}
