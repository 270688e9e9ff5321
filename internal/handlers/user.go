package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/sethu45/social-network/internal/models"
	"github.com/sethu45/social-network/internal/services"
)

type UserHandler struct {
	userService services.UserServiceInterface
}

func NewUserHandler(userService services.UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

type UserSearchResponse struct {
	Users    []models.UserSummary `json:"users"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Count    int                  `json:"count"`
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := r.URL.Query().Get("q")
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	users, total, err := h.userService.Search(r.Context(), query, page)
	if err != nil {
		log.Printf("Error searching users: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserSearchResponse{
		Users:    users,
		Page:     page,
		PageSize: services.SearchPageSize,
		Count:    total,
	})
}
