package sheets

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"scanmaster/internal/repo"
)

type Handler struct {
	Repo repo.Repository
}

func userID(r *http.Request) (int, bool) {
	id, ok := r.Context().Value("userID").(int)
	return id, ok && id != 0
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var sheet repo.TechniqueSheet
	if err := json.NewDecoder(r.Body).Decode(&sheet); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	sheet.UserID = uid
	if sheet.Status == "" {
		sheet.Status = "draft"
	}
	if err := h.Repo.SaveSheet(r.Context(), sheet); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": sheet.ID})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sheet, err := h.Repo.GetSheet(r.Context(), mux.Vars(r)["id"], uid)
	if err != nil {
		http.Error(w, "Sheet not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sheet)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Repo.ListSheets(r.Context(), uid)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Submit queues a sheet for admin review; the review bot approves or rejects
// the resulting ticket.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := h.Repo.GetSheet(r.Context(), id, uid); err != nil {
		http.Error(w, "Sheet not found", http.StatusNotFound)
		return
	}
	ticketID, err := h.Repo.CreateReviewTicket(r.Context(), id, uid)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if err := h.Repo.SetSheetStatus(r.Context(), id, "submitted"); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"ticket_id": ticketID})
}
