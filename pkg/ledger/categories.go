package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CreateCategory adds a category tag for actorID. Names are unique per owner
// regardless of case; a blank color is stored as none.
func (l *Ledger) CreateCategory(ctx context.Context, actorID, name, color string) (*CategoryTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("Category name is required")
	}

	var tag *CategoryTag
	err := l.store.Update(ctx, func(repo Repository) error {
		taken, err := repo.CategoryNameTaken(ctx, actorID, name)
		if err != nil {
			return fmt.Errorf("failed to check category name: %w", err)
		}
		if taken {
			return conflictf("Category '%s' already exists", name)
		}

		tag = &CategoryTag{
			ID:        l.newID(),
			OwnerID:   actorID,
			Name:      name,
			Color:     strings.TrimSpace(color),
			CreatedAt: l.timestamp(),
		}
		if err := repo.SaveCategoryTag(ctx, tag); err != nil {
			return fmt.Errorf("failed to save category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// ListCategories returns the actor's category tags ordered by name.
func (l *Ledger) ListCategories(ctx context.Context, actorID string) ([]CategoryTag, error) {
	var tags []CategoryTag
	err := l.store.View(ctx, func(repo Repository) error {
		var err error
		tags, err = repo.FindCategoryTagsByOwner(ctx, actorID)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
	return tags, nil
}

// UpdateCategory renames and recolors a tag the actor owns.
func (l *Ledger) UpdateCategory(ctx context.Context, actorID, tagID, name, color string) (*CategoryTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("Category name is required")
	}

	var tag *CategoryTag
	err := l.store.Update(ctx, func(repo Repository) error {
		var err error
		tag, err = l.ownedCategory(ctx, repo, actorID, tagID)
		if err != nil {
			return err
		}

		if !strings.EqualFold(tag.Name, name) {
			taken, err := repo.CategoryNameTaken(ctx, actorID, name)
			if err != nil {
				return fmt.Errorf("failed to check category name: %w", err)
			}
			if taken {
				return conflictf("Category '%s' already exists", name)
			}
		}

		tag.Name = name
		tag.Color = strings.TrimSpace(color)
		if err := repo.SaveCategoryTag(ctx, tag); err != nil {
			return fmt.Errorf("failed to save category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteCategory removes a tag the actor owns. Tags still referenced by a
// split cannot be deleted.
func (l *Ledger) DeleteCategory(ctx context.Context, actorID, tagID string) error {
	return l.store.Update(ctx, func(repo Repository) error {
		tag, err := l.ownedCategory(ctx, repo, actorID, tagID)
		if err != nil {
			return err
		}

		inUse, err := repo.CategoryTagInUse(ctx, tag.ID)
		if err != nil {
			return fmt.Errorf("failed to check category usage: %w", err)
		}
		if inUse {
			return conflictf("Category is in use and cannot be deleted")
		}

		if err := repo.DeleteCategoryTag(ctx, tag.ID); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}

func (l *Ledger) ownedCategory(ctx context.Context, repo Repository, actorID, tagID string) (*CategoryTag, error) {
	found, err := repo.FindCategoryTagsByIDs(ctx, []string{tagID})
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if len(found) == 0 {
		return nil, notFoundf("Category not found")
	}
	if found[0].OwnerID != actorID {
		return nil, forbiddenf("Not the owner of this category")
	}
	return &found[0], nil
}
