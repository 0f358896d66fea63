package db

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

const promotionColumns = `id, title, description, valid_from, valid_until, is_active, created_at`

// Все акции, новые сверху
func (s *Storage) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	promotions := []models.Promotion{}
	query := `SELECT ` + promotionColumns + ` FROM promotions ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &promotions, query); err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return promotions, nil
}

// ListCurrentPromotions - включённые акции, срок которых не истёк по часам базы.
// Пустой valid_until означает бессрочную акцию, valid_from не проверяется.
func (s *Storage) ListCurrentPromotions(ctx context.Context) ([]models.Promotion, error) {
	promotions := []models.Promotion{}
	query := `
        SELECT ` + promotionColumns + `
        FROM promotions
        WHERE is_active = true
          AND (valid_until IS NULL OR valid_until > CURRENT_TIMESTAMP)
        ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &promotions, query); err != nil {
		return nil, fmt.Errorf("list current promotions: %w", err)
	}
	return promotions, nil
}

// CreatePromotion возвращает id новой акции. is_active по умолчанию true,
// незаданные valid_from/valid_until сохраняются как NULL.
func (s *Storage) CreatePromotion(ctx context.Context, in *models.PromotionInput) (int64, error) {
	query := `
        INSERT INTO promotions (title, description, valid_from, valid_until, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		strOr(in.Title, ""), in.Description, in.ValidFrom.TimePtr(), in.ValidUntil.TimePtr(),
		boolOr(in.IsActive, true)).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create promotion: %w", err)
	}
	return id, nil
}

// UpdatePromotion: valid_from не меняется никогда.
func (s *Storage) UpdatePromotion(ctx context.Context, id int64, in *models.PromotionInput) error {
	query := `
        UPDATE promotions SET
            title = COALESCE($1, title),
            description = COALESCE($2, description),
            valid_until = COALESCE($3, valid_until),
            is_active = COALESCE($4, is_active)
        WHERE id = $5`
	res, err := s.db.ExecContext(ctx, query,
		in.Title, in.Description, in.ValidUntil.TimePtr(), in.IsActive, id)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	return affected(res, "update promotion")
}
