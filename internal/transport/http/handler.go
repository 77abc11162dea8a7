package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// Handler exposes the quiz use cases over REST and WebSocket.
type Handler struct {
	service *app.Service
	ws      *WSHandler
	origins []string
	logger  *slog.Logger
}

func NewHandler(service *app.Service, ws *WSHandler, origins []string, logger *slog.Logger) *Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{service: service, ws: ws, origins: origins, logger: logger}
}

// Router builds the chi mux with CORS applied to every route.
func (h *Handler) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/questions", h.listQuestions)
	mux.Post("/host/start_question", h.startQuestion)
	mux.Post("/submit_answer", h.submitAnswer)
	mux.Get("/leaderboard", h.leaderboard)
	mux.Get("/export/summary", h.exportSummary)
	mux.Get("/ws", h.ws.ServeWS)

	return mux
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Questions())
}

func (h *Handler) startQuestion(w http.ResponseWriter, r *http.Request) {
	qid, err := strconv.Atoi(r.URL.Query().Get("qid"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "qid must be an integer")
		return
	}
	if err := h.service.StartQuestion(r.Context(), qid); err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitRequest struct {
	Name        string   `json:"name"`
	QuestionID  *int     `json:"qid"`
	ChosenIndex *int     `json:"chosen_index"`
	TimeTaken   *float64 `json:"time_taken"`
}

type submitResponse struct {
	Status  string `json:"status"`
	Correct bool   `json:"correct"`
	Score   int    `json:"score"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.QuestionID == nil || req.ChosenIndex == nil || req.TimeTaken == nil {
		h.writeError(w, http.StatusBadRequest, "qid, chosen_index and time_taken are required")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), req.Name, *req.QuestionID, *req.ChosenIndex, *req.TimeTaken)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, submitResponse{
		Status:  "ok",
		Correct: result.Correct,
		Score:   result.CurrentScore,
	})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Leaderboard())
}

func (h *Handler) exportSummary(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportSummary(r.Context())
	if err != nil {
		h.logger.Error("export failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="summary_export.csv"`)
	w.Write(data)
}

func (h *Handler) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownQuestion):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidPayload):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
