package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// FriendRequest is the directed half of the relation. Rows are never deleted;
// pending is the only mutable state and accepted/rejected are terminal.
type FriendRequest struct {
	ID         uuid.UUID           `json:"id"`
	SenderID   uuid.UUID           `json:"sender_id"`
	ReceiverID uuid.UUID           `json:"receiver_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}

// PendingRequest is a FriendRequest joined with the sender's username for
// the receiver's inbox listing.
type PendingRequest struct {
	FriendRequest
	SenderUsername string `json:"sender_username"`
}

// Friendship is the confirmed, symmetric relation. The pair is unordered;
// storage order of user_id/friend_id carries no meaning.
type Friendship struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FriendID  uuid.UUID `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}
