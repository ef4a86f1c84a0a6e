package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"

	"resumatch/resumatch/config"
	"resumatch/resumatch/controllers"
	"resumatch/resumatch/middlewares"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 10 << 20

func ResumeRoutes(ctrl *controllers.ResumeController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	// POST /resumes/upload : multipart batch of resume files under "files"
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			http.Error(w, "no files provided", http.StatusBadRequest)
			return
		}

		files := make(map[string][]byte, len(headers))
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			files[header.Filename] = data
		}

		results := ctrl.UploadMany(r.Context(), files)
		json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	})

	// GET /resumes/ : stored candidates
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		summaries, err := ctrl.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"resumes": summaries})
	})

	// GET /resumes/{candidate_name}/download : originally uploaded document
	r.Get("/{candidate_name}/download", func(w http.ResponseWriter, r *http.Request) {
		candidate := chi.URLParam(r, "candidate_name")
		data, key, err := ctrl.Download(r.Context(), candidate)
		if err != nil {
			if errors.Is(err, controllers.ErrCandidateNotFound) || errors.Is(err, controllers.ErrNoArchive) {
				http.Error(w, err.Error(), http.StatusNotFound)
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=\""+path.Base(key)+"\"")
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	})

	// DELETE /resumes/ : clear the candidate pool
	r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Clear(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Data store cleared."})
	})

	return r
}
