package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

func (r *repository) HouseholdExists(ctx context.Context, householdID string) (bool, error) {
	var count int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM households WHERE id = ?`, householdID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check household: %w", err)
	}
	return count > 0, nil
}

func (r *repository) IsActiveMember(ctx context.Context, householdID, userID string) (bool, error) {
	var count int
	err := r.queryRow(ctx, `
		SELECT COUNT(*) FROM household_members
		WHERE household_id = ? AND user_id = ? AND status = ?`,
		householdID, userID, string(ledger.MemberActive)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

func (r *repository) SharedAccountIDs(ctx context.Context, householdID string) (map[string]bool, error) {
	rows, err := r.query(ctx,
		`SELECT account_id FROM household_account_shares WHERE household_id = ?`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shared account IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account ID: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *repository) IsAccountShared(ctx context.Context, householdID, accountID string) (bool, error) {
	var count int
	err := r.queryRow(ctx, `
		SELECT COUNT(*) FROM household_account_shares
		WHERE household_id = ? AND account_id = ?`,
		householdID, accountID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check account share: %w", err)
	}
	return count > 0, nil
}

func (r *repository) SaveHousehold(ctx context.Context, household *ledger.HouseholdInfo) error {
	_, err := r.exec(ctx, `
		INSERT INTO households (id, name, created_by, created_at)
		VALUES (?, ?, ?, ?)`,
		household.ID, household.Name, household.CreatedBy, household.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save household: %w", err)
	}
	return nil
}

func (r *repository) FindMember(ctx context.Context, householdID, userID string) (*ledger.Member, error) {
	var (
		m                   ledger.Member
		role, status        string
		invitedBy           sql.NullString
		invitedAt, joinedAt sql.NullTime
	)
	err := r.queryRow(ctx, `
		SELECT household_id, user_id, role, status, invited_by, invited_at, joined_at
		FROM household_members
		WHERE household_id = ? AND user_id = ?`,
		householdID, userID).Scan(&m.HouseholdID, &m.UserID, &role, &status, &invitedBy, &invitedAt, &joinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	m.Role = ledger.HouseholdRole(role)
	m.Status = ledger.MemberStatus(status)
	m.InvitedBy = invitedBy.String
	if invitedAt.Valid {
		m.InvitedAt = &invitedAt.Time
	}
	if joinedAt.Valid {
		m.JoinedAt = &joinedAt.Time
	}
	return &m, nil
}

// SaveMember inserts a membership, or updates role, status and join time.
func (r *repository) SaveMember(ctx context.Context, member *ledger.Member) error {
	query := `
		INSERT INTO household_members (household_id, user_id, role, status, invited_by, invited_at, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(household_id, user_id) DO UPDATE SET
			role = excluded.role,
			status = excluded.status,
			joined_at = excluded.joined_at
	`

	_, err := r.exec(ctx, query,
		member.HouseholdID,
		member.UserID,
		string(member.Role),
		string(member.Status),
		nullString(member.InvitedBy),
		nullTime(member.InvitedAt),
		nullTime(member.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save membership: %w", err)
	}
	return nil
}

func (r *repository) HasActiveMembership(ctx context.Context, userID, exceptHouseholdID string) (bool, error) {
	var count int
	err := r.queryRow(ctx, `
		SELECT COUNT(*) FROM household_members
		WHERE user_id = ? AND status = ? AND household_id <> ?`,
		userID, string(ledger.MemberActive), exceptHouseholdID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check memberships: %w", err)
	}
	return count > 0, nil
}

func (r *repository) SaveShare(ctx context.Context, householdID, accountID string, sharedAt time.Time) error {
	_, err := r.exec(ctx, `
		INSERT INTO household_account_shares (household_id, account_id, shared_at)
		VALUES (?, ?, ?)`,
		householdID, accountID, sharedAt)
	if isUniqueViolation(err) {
		return ledger.NewConflict("Account is already shared into this household")
	}
	if err != nil {
		return fmt.Errorf("failed to save share: %w", err)
	}
	return nil
}

func (r *repository) DeleteShare(ctx context.Context, householdID, accountID string) error {
	_, err := r.exec(ctx,
		`DELETE FROM household_account_shares WHERE household_id = ? AND account_id = ?`,
		householdID, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
