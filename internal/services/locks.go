package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// lockUserPairForUpdate takes row locks on both users in a fixed byte
// order so two transactions touching the same pair cannot deadlock.
func lockUserPairForUpdate(ctx context.Context, q DBConn, userA, userB uuid.UUID) error {
	lo, hi := userA, userB
	if bytes.Compare(lo[:], hi[:]) > 0 {
		lo, hi = hi, lo
	}

	if err := lockUserForUpdate(ctx, q, lo); err != nil {
		return err
	}
	if lo == hi {
		return nil
	}
	return lockUserForUpdate(ctx, q, hi)
}

// lockUserForUpdate returns pgx.ErrNoRows unchanged so callers can map
// a vanished user to their own not-found error.
func lockUserForUpdate(ctx context.Context, q DBConn, userID uuid.UUID) error {
	var lockedID uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}
