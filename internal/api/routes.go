package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/framecast/editor-agent/internal/editor"
	"github.com/framecast/editor-agent/internal/project"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(LoopbackGuard())
		r.Get("/recordings/{id}/media", recordingMediaHandler(cfg))
		r.Head("/recordings/{id}/media", recordingMediaHandler(cfg))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))
		r.Post("/projects/{id}/sessions", openSessionHandler(cfg))
		r.Post("/projects/{id}/exports", queueExportHandler(cfg))

		r.Get("/recordings", listRecordingsHandler(cfg))
		r.Post("/recordings", registerRecordingHandler(cfg))

		r.Get("/sessions", listSessionsHandler(cfg))
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", getSessionHandler(cfg))
			r.Delete("/", closeSessionHandler(cfg))
			r.Post("/actions", dispatchHandler(cfg))
			r.Post("/tab", switchTabHandler(cfg))
			r.Post("/player", playerTimeHandler(cfg))
			r.Patch("/selection", selectionHandler(cfg))
			r.Post("/snap", snapHandler(cfg))
			r.Get("/cue", cueHandler(cfg))
		})

		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))
	})

	return r
}

// writeServiceError maps the service sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrRecordingNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, project.ErrUnsupportedFormat):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
	}
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		projectsCount, _ := cfg.Projects.CountProjects(ctx)
		jobs, _ := cfg.Repository.ListJobs(ctx, 20)

		resp := StatusResponse{
			State:         "idle",
			ProjectsCount: projectsCount,
			Autosave:      cfg.Runner == nil || !cfg.Runner.IsPaused(),
		}

		if cfg.Sessions != nil {
			for _, s := range cfg.Sessions.List() {
				resp.SessionsOpen++
				if s.Dirty {
					resp.DirtySessions++
				}
			}
		}
		if resp.SessionsOpen > 0 {
			resp.State = "editing"
		}

		for _, j := range jobs {
			switch j.Status {
			case project.JobStatusRunning:
				resp.State = "exporting"
				active := JobToResponse(j)
				resp.ActiveJob = &active
				resp.JobsRunning++
			case project.JobStatusPending:
				resp.JobsPending++
			case project.JobStatusFailed:
				if resp.LastError == "" {
					resp.LastError = j.Error
				}
			}
		}

		if !resp.Autosave {
			resp.State = "paused"
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Projects.ListProjects(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", CodeInternal)
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectSummary, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToSummary(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		scenes := req.Scenes
		if len(req.RecordingIDs) > 0 {
			fromRecordings, err := cfg.Projects.ScenesFromRecordings(r.Context(), req.RecordingIDs)
			if err != nil {
				if errors.Is(err, project.ErrRecordingNotFound) {
					WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
					return
				}
				WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
				return
			}
			scenes = append(scenes, fromRecordings...)
		}

		p, err := cfg.Projects.CreateProject(r.Context(), req.Title, req.InstantMode, scenes)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Projects.LoadProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cfg.Projects.DeleteProject(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		if cfg.Sessions != nil {
			cfg.Sessions.Discard(id)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func queueExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
				return
			}
		}

		projectID := chi.URLParam(r, "id")
		// The export reads the stored project, so pending edits go first.
		if cfg.Sessions != nil {
			if _, err := cfg.Sessions.FlushDirty(r.Context()); err != nil {
				cfg.Logger.Warn("flush before export failed", "project_id", projectID, "error", err)
			}
		}

		job, err := cfg.Projects.QueueExport(r.Context(), projectID, req.Format)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, ExportResponse{JobID: job.ID})
	}
}

func listRecordingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := cfg.Projects.ListRecordings(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list recordings", CodeInternal)
			return
		}

		resp := RecordingsResponse{Recordings: make([]RecordingResponse, len(recs))}
		for i, rec := range recs {
			resp.Recordings[i] = RecordingToResponse(rec)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func registerRecordingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRecordingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", CodeBadRequest)
			return
		}

		rec, err := cfg.Projects.RegisterRecording(r.Context(), req.Path, req.Duration)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
			return
		}
		WriteJSON(w, http.StatusCreated, RecordingToResponse(rec))
	}
}

func recordingMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, err := cfg.Projects.GetRecording(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if err := cfg.PlaybackServer.ServeFile(w, r, rec.Path); err != nil {
			cfg.Logger.Error("playback error", "error", err, "recording_id", id)
		}
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.Repository.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", CodeInternal)
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "job id required", CodeBadRequest)
			return
		}

		job, err := cfg.Repository.GetJob(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", CodeNotFound)
			return
		}

		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}
