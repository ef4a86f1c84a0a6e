package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"resumatch/resumatch/config"
	"resumatch/resumatch/controllers"
	"resumatch/resumatch/middlewares"
	"resumatch/resumatch/types"

	"github.com/go-chi/chi/v5"
)

func ToolsRoutes(ctrl *controllers.ToolsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	writeErr := func(w http.ResponseWriter, err error) {
		switch {
		case errors.Is(err, controllers.ErrNotEnoughResumes):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, controllers.ErrCandidateNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}

	// POST /tools/ask : question about one named candidate
	r.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
		var req types.AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.CandidateName == "" || req.Question == "" {
			http.Error(w, "candidate_name and question are required", http.StatusBadRequest)
			return
		}
		resp, err := ctrl.Ask(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		json.NewEncoder(w).Encode(resp)
	})

	// POST /tools/compare : full comparison of all stored candidates
	r.Post("/compare", func(w http.ResponseWriter, r *http.Request) {
		result, err := ctrl.Compare(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		json.NewEncoder(w).Encode(result)
	})

	// POST /tools/blog : generated comparison post
	r.Post("/blog", func(w http.ResponseWriter, r *http.Request) {
		resp, err := ctrl.Blog(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		json.NewEncoder(w).Encode(resp)
	})

	// POST /tools/stats : per-candidate scores and chart payload
	r.Post("/stats", func(w http.ResponseWriter, r *http.Request) {
		resp, err := ctrl.Stats(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		json.NewEncoder(w).Encode(resp)
	})

	return r
}
