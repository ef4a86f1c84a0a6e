package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"resumatch/resumatch/config"
	"resumatch/resumatch/controllers"
	"resumatch/resumatch/middlewares"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/logging"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /chat/ : process one turn
		gr.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req types.ChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if req.Query == "" {
				http.Error(w, "query is required", http.StatusBadRequest)
				return
			}
			result, err := ctrl.Chat(r.Context(), req)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(result)
		})

		// POST /chat/session : create a session up front
		gr.Post("/session", func(w http.ResponseWriter, r *http.Request) {
			var req types.CreateSessionRequest
			if r.ContentLength > 0 {
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
			}
			resp, err := ctrl.CreateSession(r.Context(), req)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(resp)
		})

		// GET /chat/session/{session_id}/messages : full transcript
		gr.Get("/session/{session_id}/messages", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "session_id")
			msgs, err := ctrl.GetMessages(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, dao.ErrSessionNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
				} else {
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
				return
			}
			json.NewEncoder(w).Encode(msgs)
		})

		// DELETE /chat/session/{session_id} : wipe transcript, keep the
		// session usable
		gr.Delete("/session/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "session_id")
			if err := ctrl.ClearSession(r.Context(), sessionID); err != nil {
				if errors.Is(err, dao.ErrSessionNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
				} else {
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	// Websocket transport: one turn per message, with stage updates
	// streamed while the pipeline runs.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var input struct {
			Token       string            `json:"token"`
			ChatRequest types.ChatRequest `json:"chat_request"`
		}
		if err := json.Unmarshal(data, &input); err != nil {
			_ = conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid json"}`))
			return
		}

		if cfg.JWTSecret != "" {
			token, err := jwt.Parse(input.Token, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				_ = conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid token"}`))
				conn.Close(websocket.StatusPolicyViolation, "invalid token")
				return
			}
		}

		notify := func(stage string) {
			payload, _ := json.Marshal(map[string]string{"status": stage})
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				logging.ErrorLogger.Error("websocket status write failed",
					zap.String("stage", stage), zap.Error(err))
			}
		}
		result, err := ctrl.ChatWithProgress(ctx, input.ChatRequest, notify)
		if err != nil {
			payload, _ := json.Marshal(map[string]string{"error": err.Error()})
			if werr := conn.Write(ctx, websocket.MessageText, payload); werr != nil {
				logging.ErrorLogger.Error("websocket error write failed", zap.Error(werr))
			}
			conn.Close(websocket.StatusInternalError, "turn failed")
			return
		}
		payload, _ := json.Marshal(map[string]interface{}{"result": result})
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			logging.ErrorLogger.Error("websocket result write failed", zap.Error(err))
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})
	return r
}
