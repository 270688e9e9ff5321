package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sethu45/social-network/internal/logging"
	"github.com/sethu45/social-network/internal/models"
)

var (
	ErrCannotFriendSelf        = errors.New("cannot send a friend request to yourself")
	ErrRequestAlreadyPending   = errors.New("friend request already sent")
	ErrRequestNotFound         = errors.New("friend request not found")
	ErrRequestAlreadyProcessed = errors.New("friend request already processed")
	ErrRequestRateLimited      = errors.New("friend request rate limit exceeded")
)

const (
	// SendRequestLimit requests per SendRequestWindow per sender, counted
	// over all statuses against wall-clock now.
	SendRequestLimit  = 3
	SendRequestWindow = "60 seconds"
)

type FriendServiceInterface interface {
	SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, receiverID, requestID uuid.UUID) error
	RejectRequest(ctx context.Context, receiverID, requestID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error)
	ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
}

type FriendService struct {
	db           DB
	emailService EmailServiceInterface
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) SetEmailService(emailService EmailServiceInterface) {
	s.emailService = emailService
}

// SendRequest creates a pending request from sender to receiver. Re-sending
// while a pending request exists is a no-op surfaced as
// ErrRequestAlreadyPending; the partial unique index makes this safe under
// concurrent sends.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrCannotFriendSelf
	}

	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, receiverID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking receiver: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	var recent int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM friend_requests
		 WHERE sender_id = $1 AND created_at > NOW() - INTERVAL '`+SendRequestWindow+`'`,
		senderID,
	).Scan(&recent)
	if err != nil {
		return nil, fmt.Errorf("counting recent requests: %w", err)
	}
	if recent >= SendRequestLimit {
		return nil, ErrRequestRateLimited
	}

	request := &models.FriendRequest{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO friend_requests (sender_id, receiver_id, status)
		 VALUES ($1, $2, 'pending')
		 ON CONFLICT (sender_id, receiver_id) WHERE status = 'pending' DO NOTHING
		 RETURNING id, sender_id, receiver_id, status, created_at`,
		senderID, receiverID,
	).Scan(&request.ID, &request.SenderID, &request.ReceiverID, &request.Status, &request.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestAlreadyPending
	}
	if err != nil {
		return nil, fmt.Errorf("insert friend request: %w", err)
	}

	return request, nil
}

// AcceptRequest flips a pending request to accepted and creates the
// friendship in the same transaction. The FOR UPDATE lock on the request row
// serializes concurrent accepts: exactly one wins, the rest observe a
// processed request.
func (s *FriendService) AcceptRequest(ctx context.Context, receiverID, requestID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin accept transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	request, err := loadRequestForUpdate(ctx, tx, receiverID, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrRequestAlreadyProcessed
	}

	if err := lockUserPairForUpdate(ctx, tx, request.SenderID, request.ReceiverID); err != nil {
		return fmt.Errorf("lock users: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE friend_requests SET status = 'accepted' WHERE id = $1`,
		request.ID,
	); err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}

	// Another accepted thread may already link the pair; the unordered
	// unique index dedups instead of failing the accept.
	if _, err := tx.Exec(ctx,
		`INSERT INTO friendships (user_id, friend_id)
		 VALUES ($1, $2)
		 ON CONFLICT ((LEAST(user_id, friend_id)), (GREATEST(user_id, friend_id))) DO NOTHING`,
		request.SenderID, request.ReceiverID,
	); err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}

	var senderEmail, senderUsername, receiverUsername string
	if s.emailService != nil {
		err = tx.QueryRow(ctx,
			`SELECT s.email, s.username, r.username
			 FROM users s, users r
			 WHERE s.id = $1 AND r.id = $2`,
			request.SenderID, request.ReceiverID,
		).Scan(&senderEmail, &senderUsername, &receiverUsername)
		if err != nil {
			return fmt.Errorf("load notification recipients: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit accept: %w", err)
	}
	committed = true

	if s.emailService != nil {
		if err := s.emailService.SendFriendRequestAccepted(ctx, senderEmail, senderUsername, receiverUsername); err != nil {
			logging.Error("Failed to send acceptance notification", map[string]interface{}{
				"error":       err.Error(),
				"sender_id":   request.SenderID.String(),
				"receiver_id": request.ReceiverID.String(),
			})
		}
	}

	return nil
}

// RejectRequest flips a pending request to rejected. No friendship is created.
func (s *FriendService) RejectRequest(ctx context.Context, receiverID, requestID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reject transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	request, err := loadRequestForUpdate(ctx, tx, receiverID, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrRequestAlreadyProcessed
	}

	if _, err := tx.Exec(ctx,
		`UPDATE friend_requests SET status = 'rejected' WHERE id = $1`,
		request.ID,
	); err != nil {
		return fmt.Errorf("reject friend request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reject: %w", err)
	}
	committed = true

	return nil
}

// loadRequestForUpdate resolves a request addressed to receiverID. Requests
// addressed to other users are indistinguishable from missing ones.
func loadRequestForUpdate(ctx context.Context, tx Tx, receiverID, requestID uuid.UUID) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := tx.QueryRow(ctx,
		`SELECT id, sender_id, receiver_id, status, created_at
		 FROM friend_requests
		 WHERE id = $1 AND receiver_id = $2
		 FOR UPDATE`,
		requestID, receiverID,
	).Scan(&request.ID, &request.SenderID, &request.ReceiverID, &request.Status, &request.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load friend request: %w", err)
	}
	return request, nil
}

// ListFriends resolves the other side of every friendship the user is part of.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.username, u.email, u.created_at
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		 WHERE f.user_id = $1 OR f.friend_id = $1
		 ORDER BY f.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	friends := []models.UserSummary{}
	for rows.Next() {
		var friend models.UserSummary
		if err := rows.Scan(&friend.ID, &friend.Username, &friend.Email, &friend.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friends: %w", err)
	}
	return friends, nil
}

// ListPendingRequests returns the receiver's inbox, oldest first.
func (s *FriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at, u.username
		 FROM friend_requests fr
		 JOIN users u ON u.id = fr.sender_id
		 WHERE fr.receiver_id = $1 AND fr.status = 'pending'
		 ORDER BY fr.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	requests := []models.PendingRequest{}
	for rows.Next() {
		var request models.PendingRequest
		if err := rows.Scan(&request.ID, &request.SenderID, &request.ReceiverID, &request.Status, &request.CreatedAt, &request.SenderUsername); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending requests: %w", err)
	}
	return requests, nil
}
