package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gridbot/middleware"
	"gridbot/services"
)

// AdminHTTPHandler exposes the out-of-band administrative operations
// that mutate ambient bot state: mood, memory bank, recent happenings,
// and history pruning. The decision pipeline only ever reads this state.
type AdminHTTPHandler struct {
	botStateService     services.BotStateService
	conversationService services.ConversationService
}

func NewAdminHTTPHandler(
	botStateService services.BotStateService,
	conversationService services.ConversationService,
) *AdminHTTPHandler {
	return &AdminHTTPHandler{
		botStateService:     botStateService,
		conversationService: conversationService,
	}
}

type SetMoodRequest struct {
	Mood        string  `json:"mood"`
	Description string  `json:"description"`
	Intensity   float64 `json:"intensity"`
}

type SaveMemoryRequest struct {
	Value  string  `json:"value"`
	Source *string `json:"source"`
}

type SetHappeningsRequest struct {
	Content string `json:"content"`
}

type PruneHistoryRequest struct {
	OlderThanDays int `json:"older_than_days"`
}

func (h *AdminHTTPHandler) HandleGetMood(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Get mood request received from %s", r.RemoteAddr)

	mood, err := h.botStateService.GetMood(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get mood: %v", err)
		http.Error(w, "failed to get mood", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, mood)
}

func (h *AdminHTTPHandler) HandleSetMood(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Set mood request received from %s", r.RemoteAddr)

	var req SetMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Failed to parse request body: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.botStateService.SetMood(r.Context(), req.Mood, req.Description, req.Intensity); err != nil {
		log.Printf("❌ Failed to set mood: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHTTPHandler) HandleListMemories(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 List memories request received from %s", r.RemoteAddr)

	memories, err := h.botStateService.GetAllMemories(r.Context())
	if err != nil {
		log.Printf("❌ Failed to list memories: %v", err)
		http.Error(w, "failed to list memories", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, memories)
}

func (h *AdminHTTPHandler) HandleSaveMemory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	log.Printf("📋 Save memory request received for key %s from %s", key, r.RemoteAddr)

	var req SaveMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Failed to parse request body: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.botStateService.SaveMemory(r.Context(), key, req.Value, req.Source); err != nil {
		log.Printf("❌ Failed to save memory: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHTTPHandler) HandleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	log.Printf("📋 Delete memory request received for key %s from %s", key, r.RemoteAddr)

	deleted, err := h.botStateService.DeleteMemory(r.Context(), key)
	if err != nil {
		log.Printf("❌ Failed to delete memory: %v", err)
		http.Error(w, "failed to delete memory", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "memory not found", http.StatusNotFound)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AdminHTTPHandler) HandleGetHappenings(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Get happenings request received from %s", r.RemoteAddr)

	content, err := h.botStateService.GetHappenings(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get happenings: %v", err)
		http.Error(w, "failed to get happenings", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"content": content})
}

func (h *AdminHTTPHandler) HandleSetHappenings(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Set happenings request received from %s", r.RemoteAddr)

	var req SetHappeningsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Failed to parse request body: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.botStateService.SetHappenings(r.Context(), req.Content); err != nil {
		log.Printf("❌ Failed to set happenings: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHTTPHandler) HandlePruneHistory(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Prune history request received from %s", r.RemoteAddr)

	var req PruneHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Failed to parse request body: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.OlderThanDays <= 0 {
		http.Error(w, "older_than_days must be positive", http.StatusBadRequest)
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -req.OlderThanDays)
	deleted, err := h.conversationService.PruneMessagesOlderThan(r.Context(), cutoff)
	if err != nil {
		log.Printf("❌ Failed to prune history: %v", err)
		http.Error(w, "failed to prune history", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *AdminHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.TokenAuthMiddleware) {
	log.Printf("🚀 Registering admin API endpoints")

	router.HandleFunc("/admin/mood", authMiddleware.WithAuth(h.HandleGetMood)).Methods("GET")
	router.HandleFunc("/admin/mood", authMiddleware.WithAuth(h.HandleSetMood)).Methods("PUT")
	log.Printf("✅ GET/PUT /admin/mood endpoints registered")

	router.HandleFunc("/admin/memories", authMiddleware.WithAuth(h.HandleListMemories)).Methods("GET")
	router.HandleFunc("/admin/memories/{key}", authMiddleware.WithAuth(h.HandleSaveMemory)).Methods("PUT")
	router.HandleFunc("/admin/memories/{key}", authMiddleware.WithAuth(h.HandleDeleteMemory)).Methods("DELETE")
	log.Printf("✅ /admin/memories endpoints registered")

	router.HandleFunc("/admin/happenings", authMiddleware.WithAuth(h.HandleGetHappenings)).Methods("GET")
	router.HandleFunc("/admin/happenings", authMiddleware.WithAuth(h.HandleSetHappenings)).Methods("PUT")
	log.Printf("✅ GET/PUT /admin/happenings endpoints registered")

	router.HandleFunc("/admin/history/prune", authMiddleware.WithAuth(h.HandlePruneHistory)).Methods("POST")
	log.Printf("✅ POST /admin/history/prune endpoint registered")
}

func (h *AdminHTTPHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
