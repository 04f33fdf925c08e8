package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

const categoryColumns = `id, owner_id, name, color, created_at`

func (r *repository) queryCategoryTags(ctx context.Context, query string, args ...any) ([]ledger.CategoryTag, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category tags: %w", err)
	}
	defer rows.Close()

	var tags []ledger.CategoryTag
	for rows.Next() {
		var t ledger.CategoryTag
		var color sql.NullString
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category tag: %w", err)
		}
		t.Color = color.String
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *repository) FindCategoryTagsByIDs(ctx context.Context, ids []string) ([]ledger.CategoryTag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryCategoryTags(ctx,
		`SELECT `+categoryColumns+` FROM category_tags WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
}

func (r *repository) FindCategoryTagsByOwner(ctx context.Context, ownerID string) ([]ledger.CategoryTag, error) {
	return r.queryCategoryTags(ctx,
		`SELECT `+categoryColumns+` FROM category_tags WHERE owner_id = ? ORDER BY name_key`,
		ownerID)
}

func (r *repository) CategoryNameTaken(ctx context.Context, ownerID, name string) (bool, error) {
	var count int
	err := r.queryRow(ctx,
		`SELECT COUNT(*) FROM category_tags WHERE owner_id = ? AND name_key = ?`,
		ownerID, strings.ToLower(name)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

func (r *repository) CategoryTagInUse(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.queryRow(ctx,
		`SELECT COUNT(*) FROM ledger_splits WHERE category_tag_id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check category usage: %w", err)
	}
	return count > 0, nil
}

// SaveCategoryTag inserts the tag, or updates name and color when the id exists.
func (r *repository) SaveCategoryTag(ctx context.Context, tag *ledger.CategoryTag) error {
	query := `
		INSERT INTO category_tags (id, owner_id, name, name_key, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_key = excluded.name_key,
			color = excluded.color
	`

	_, err := r.exec(ctx, query,
		tag.ID,
		tag.OwnerID,
		tag.Name,
		strings.ToLower(tag.Name),
		nullString(tag.Color),
		tag.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ledger.NewConflict("Category '%s' already exists", tag.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to save category tag: %w", err)
	}
	return nil
}

func (r *repository) DeleteCategoryTag(ctx context.Context, id string) error {
	if _, err := r.exec(ctx, `DELETE FROM category_tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category tag: %w", err)
	}
	return nil
}
