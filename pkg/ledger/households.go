package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// CreateHousehold creates a household with the actor as its active OWNER.
// A user can be active in only one household at a time.
func (l *Ledger) CreateHousehold(ctx context.Context, actorID, name string) (*HouseholdInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("Household name is required")
	}

	var household *HouseholdInfo
	err := l.store.Update(ctx, func(repo Repository) error {
		active, err := repo.HasActiveMembership(ctx, actorID, "")
		if err != nil {
			return fmt.Errorf("failed to check memberships: %w", err)
		}
		if active {
			return conflictf("Cannot create a household while already an active member of another household")
		}

		now := l.timestamp()
		household = &HouseholdInfo{
			ID:        l.newID(),
			Name:      name,
			CreatedBy: actorID,
			CreatedAt: now,
		}
		if err := repo.SaveHousehold(ctx, household); err != nil {
			return fmt.Errorf("failed to save household: %w", err)
		}
		return repo.SaveMember(ctx, &Member{
			HouseholdID: household.ID,
			UserID:      actorID,
			Role:        RoleOwner,
			Status:      MemberActive,
			JoinedAt:    &now,
		})
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Household created", slog.String("id", household.ID), slog.String("owner", actorID))
	return household, nil
}

// InviteMember invites the user registered under email. Only an active OWNER
// or ADMIN may invite.
func (l *Ledger) InviteMember(ctx context.Context, actorID, householdID, email string) (*Member, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalidf("email is required")
	}

	var member *Member
	err := l.store.Update(ctx, func(repo Repository) error {
		inviter, err := requireMembership(ctx, repo, householdID, actorID)
		if err != nil {
			return err
		}
		if inviter.Role != RoleOwner && inviter.Role != RoleAdmin {
			return forbiddenf("Only OWNER or ADMIN can invite members")
		}

		invitee, err := repo.FindUserByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if invitee == nil {
			return invalidf("User not found with email: %s", email)
		}

		existing, err := repo.FindMember(ctx, householdID, invitee.ID)
		if err != nil {
			return fmt.Errorf("failed to load membership: %w", err)
		}
		if existing != nil {
			return conflictf("User is already a member or has a pending invite")
		}
		active, err := repo.HasActiveMembership(ctx, invitee.ID, "")
		if err != nil {
			return fmt.Errorf("failed to check memberships: %w", err)
		}
		if active {
			return conflictf("User is already an active member of another household")
		}

		now := l.timestamp()
		member = &Member{
			HouseholdID: householdID,
			UserID:      invitee.ID,
			Role:        RoleMember,
			Status:      MemberInvited,
			InvitedBy:   actorID,
			InvitedAt:   &now,
		}
		return repo.SaveMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// AcceptInvite activates the actor's pending invite to householdID.
func (l *Ledger) AcceptInvite(ctx context.Context, actorID, householdID string) (*Member, error) {
	var member *Member
	err := l.store.Update(ctx, func(repo Repository) error {
		var err error
		member, err = repo.FindMember(ctx, householdID, actorID)
		if err != nil {
			return fmt.Errorf("failed to load membership: %w", err)
		}
		if member == nil {
			return notFoundf("No invite found for this household")
		}
		if member.Status != MemberInvited {
			return invalidf("No pending invite to accept")
		}

		elsewhere, err := repo.HasActiveMembership(ctx, actorID, householdID)
		if err != nil {
			return fmt.Errorf("failed to check memberships: %w", err)
		}
		if elsewhere {
			return conflictf("Leave your current household before accepting another invite")
		}

		now := l.timestamp()
		member.Status = MemberActive
		member.JoinedAt = &now
		return repo.SaveMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ShareAccount makes an account the actor owns visible to householdID.
func (l *Ledger) ShareAccount(ctx context.Context, actorID, householdID, accountID string) error {
	return l.store.Update(ctx, func(repo Repository) error {
		if _, err := requireMembership(ctx, repo, householdID, actorID); err != nil {
			return err
		}
		if _, err := ownedAccount(ctx, repo, actorID, accountID, "Only the account owner can share an account"); err != nil {
			return err
		}

		shared, err := repo.IsAccountShared(ctx, householdID, accountID)
		if err != nil {
			return fmt.Errorf("failed to check account share: %w", err)
		}
		if shared {
			return conflictf("Account is already shared into this household")
		}
		if err := repo.SaveShare(ctx, householdID, accountID, l.timestamp()); err != nil {
			return fmt.Errorf("failed to save share: %w", err)
		}
		return nil
	})
}

// UnshareAccount revokes a share. Transactions already tagged with the
// household keep their tag.
func (l *Ledger) UnshareAccount(ctx context.Context, actorID, householdID, accountID string) error {
	return l.store.Update(ctx, func(repo Repository) error {
		if _, err := requireMembership(ctx, repo, householdID, actorID); err != nil {
			return err
		}

		shared, err := repo.IsAccountShared(ctx, householdID, accountID)
		if err != nil {
			return fmt.Errorf("failed to check account share: %w", err)
		}
		if !shared {
			return notFoundf("Account is not shared into this household")
		}
		if _, err := ownedAccount(ctx, repo, actorID, accountID, "Only the account owner can unshare an account"); err != nil {
			return err
		}

		if err := repo.DeleteShare(ctx, householdID, accountID); err != nil {
			return fmt.Errorf("failed to delete share: %w", err)
		}
		return nil
	})
}

// requireMembership returns the actor's active membership.
func requireMembership(ctx context.Context, repo Repository, householdID, userID string) (*Member, error) {
	if householdID == "" {
		return nil, invalidf("householdId is required")
	}
	member, err := repo.FindMember(ctx, householdID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if member == nil {
		return nil, forbiddenf("Not a member of this household")
	}
	if member.Status != MemberActive {
		return nil, forbiddenf("Membership is not active")
	}
	return member, nil
}

func ownedAccount(ctx context.Context, repo Repository, actorID, accountID, notOwner string) (*Account, error) {
	found, err := repo.FindAccountsByIDs(ctx, []string{accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if len(found) == 0 {
		return nil, notFoundf("Account not found")
	}
	if found[0].OwnerID != actorID {
		return nil, forbiddenf("%s", notOwner)
	}
	return &found[0], nil
}
