package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sethu45/social-network/internal/models"
	"github.com/sethu45/social-network/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type SendRequestRequest struct {
	ReceiverID string `json:"receiver_id"`
}

type FriendListResponse struct {
	Friends []models.UserSummary `json:"friends"`
}

type PendingRequestsResponse struct {
	Requests []models.PendingRequest `json:"requests"`
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid receiver ID")
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), user.ID, receiverID)
	switch {
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeError(w, http.StatusBadRequest, "Cannot send a friend request to yourself")
		return
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, services.ErrRequestAlreadyPending):
		writeError(w, http.StatusBadRequest, "Friend request already sent")
		return
	case errors.Is(err, services.ErrRequestRateLimited):
		writeError(w, http.StatusTooManyRequests, "Only 3 friend requests per minute are allowed")
		return
	case err != nil:
		log.Printf("Error sending friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := parseRequestID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	err = h.friendService.AcceptRequest(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusBadRequest, "Friend request not found")
		return
	case errors.Is(err, services.ErrRequestAlreadyProcessed):
		writeError(w, http.StatusBadRequest, "Friend request already processed")
		return
	case err != nil:
		log.Printf("Error accepting friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request accepted"})
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := parseRequestID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	err = h.friendService.RejectRequest(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusBadRequest, "Friend request not found")
		return
	case errors.Is(err, services.ErrRequestAlreadyProcessed):
		writeError(w, http.StatusBadRequest, "Friend request already processed")
		return
	case err != nil:
		log.Printf("Error rejecting friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request rejected"})
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing friends: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Friends: friends})
}

func (h *FriendHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.friendService.ListPendingRequests(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing pending requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PendingRequestsResponse{Requests: requests})
}

// parseRequestID pulls the friend-request id out of paths shaped like
// /api/friends/requests/{id} and /api/friends/requests/{id}/accept.
func parseRequestID(r *http.Request) (uuid.UUID, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	for i, part := range parts {
		if part == "requests" && i+1 < len(parts) {
			return uuid.Parse(parts[i+1])
		}
	}
	return uuid.Nil, fmt.Errorf("no request id in path %q", r.URL.Path)
}
