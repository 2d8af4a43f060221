package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"partnerhub/internal/model"
)

// Caller is the acting identity, resolved by the transport layer and passed
// explicitly into every engine call.
type Caller struct {
	LeaderID int
	Email    string
	IsAdmin  bool
}

// groupLookup is the slice of group access the authorization check needs.
type groupLookup interface {
	GetByChurch(ctx context.Context, churchID int) (*model.Group, error)
}

// authorizeChurchAccess allows admins, and leaders of the church's group.
func authorizeChurchAccess(ctx context.Context, groups groupLookup, caller Caller, churchID int) error {
	if caller.IsAdmin {
		return nil
	}
	g, err := groups.GetByChurch(ctx, churchID)
	if err != nil {
		if isNoRows(err) {
			return ErrForbidden
		}
		return err
	}
	if g.LeaderID == caller.LeaderID {
		return nil
	}
	if g.CoLeaderID != nil && *g.CoLeaderID == caller.LeaderID {
		return nil
	}
	return ErrForbidden
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
