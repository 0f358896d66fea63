package db

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

// ListOwnerObjects - объекты собственника со статистикой для личного кабинета.
// Объект без строки статистики получает нули.
func (s *Storage) ListOwnerObjects(ctx context.Context, ownerID int64) ([]models.DashboardObject, error) {
	query := `
        SELECT ` + propertyColumns + `,` + propertyPhotos + `,
               COALESCE(s.views_count, 0) AS "stats.views",
               COALESCE(s.telegram_clicks_count, 0) AS "stats.telegram_clicks",
               s.last_view_at AS "stats.last_view_at",
               s.last_click_at AS "stats.last_click_at"
        FROM objects o
        LEFT JOIN owners ow ON o.owner_id = ow.id
        LEFT JOIN object_stats s ON o.id = s.object_id
        WHERE o.owner_id = $1
        ORDER BY o.created_at DESC`
	objects := []models.DashboardObject{}
	if err := s.db.SelectContext(ctx, &objects, query, ownerID); err != nil {
		return nil, fmt.Errorf("list owner objects: %w", err)
	}
	return objects, nil
}
