package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

// Флаги объекта/номера, которые можно переключать
type Flag string

const (
	FlagPublished Flag = "is_published"
	FlagArchived  Flag = "is_archived"
)

func (f Flag) valid() bool {
	return f == FlagPublished || f == FlagArchived
}

// Счётчики статистики
type StatKind string

const (
	StatView  StatKind = "view"
	StatClick StatKind = "click"
)

const (
	defaultCategory = "hotel"
	defaultMinHours = 1
)

const propertyColumns = `
        o.id, o.owner_id, ow.full_name AS owner_name, o.category, o.name, o.address, o.metro,
        o.description, o.phone, o.telegram, o.area, o.bedrooms, o.price, o.min_hours,
        o.lat, o.lon, o.image_url, o.is_published, o.is_archived, o.created_at, o.updated_at`

// Уникальные фото объекта в порядке первого появления
const propertyPhotos = `
        COALESCE((
            SELECT array_agg(ph.photo_url ORDER BY ph.first_order)
            FROM (
                SELECT photo_url, MIN(sort_order) AS first_order
                FROM object_photos
                WHERE object_id = o.id
                GROUP BY photo_url
            ) ph
        ), '{}') AS photos`

// ListProperties - все объекты с фото, числом номеров и статистикой, новые сверху.
func (s *Storage) ListProperties(ctx context.Context) ([]models.PropertySummary, error) {
	query := `
        SELECT ` + propertyColumns + `,` + propertyPhotos + `,
               (SELECT COUNT(*) FROM rooms r WHERE r.object_id = o.id) AS room_count,
               COALESCE(s.views_count, 0) AS views,
               COALESCE(s.telegram_clicks_count, 0) AS clicks
        FROM objects o
        LEFT JOIN owners ow ON o.owner_id = ow.id
        LEFT JOIN object_stats s ON o.id = s.object_id
        ORDER BY o.created_at DESC`
	properties := []models.PropertySummary{}
	if err := s.db.SelectContext(ctx, &properties, query); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return properties, nil
}

// GetProperty - объект с номерами; у каждого номера особенности, удобства и фото.
func (s *Storage) GetProperty(ctx context.Context, id int64) (*models.PropertyDetails, error) {
	query := `
        SELECT ` + propertyColumns + `,` + propertyPhotos + `
        FROM objects o
        LEFT JOIN owners ow ON o.owner_id = ow.id
        WHERE o.id = $1`
	details := &models.PropertyDetails{}
	if err := s.db.GetContext(ctx, &details.Property, query, id); err != nil {
		return nil, notFound(err, "get property")
	}

	rooms, err := listRooms(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	details.Rooms = rooms
	return details, nil
}

// CreateProperty создаёт объект, его статистику, фото и вложенные номера одной транзакцией.
func (s *Storage) CreateProperty(ctx context.Context, in *models.PropertyInput) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO objects (
                owner_id, category, name, address, metro, description, phone, telegram,
                area, bedrooms, price, min_hours, lat, lon, image_url, is_published, is_archived
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
            RETURNING id`
		err := tx.QueryRowxContext(ctx, query,
			in.OwnerID, strOr(in.Category, defaultCategory), strOr(in.Name, ""), in.Address, in.Metro,
			in.Description, in.Phone, in.Telegram, in.Area, in.Bedrooms, in.Price,
			intOr(in.MinHours, defaultMinHours), in.Lat, in.Lon, in.ImageURL,
			boolOr(in.IsPublished, false), boolOr(in.IsArchived, false)).
			Scan(&id)
		if err != nil {
			return fmt.Errorf("insert property: %w", err)
		}

		// Статистика создаётся вместе с объектом
		_, err = tx.ExecContext(ctx,
			`INSERT INTO object_stats (object_id, views_count, telegram_clicks_count) VALUES ($1, 0, 0)`, id)
		if err != nil {
			return fmt.Errorf("insert property stats: %w", err)
		}

		if in.Photos != nil {
			if err := insertPhotos(ctx, tx, id, *in.Photos); err != nil {
				return err
			}
		}

		for i := range in.Rooms {
			room := in.Rooms[i]
			room.ObjectID = id
			if _, err := insertRoom(ctx, tx, &room); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateProperty обновляет объект в выбранном режиме.
// Ключ photos задан - фото заменяются целиком, не задан - остаются как были.
func (s *Storage) UpdateProperty(ctx context.Context, id int64, in *models.PropertyInput, mode UpdateMode) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var query string
		var args []interface{}
		if mode == UpdateReplace {
			query = `
                UPDATE objects SET
                    owner_id = $1, category = $2, name = $3, address = $4, metro = $5,
                    description = $6, phone = $7, telegram = $8, area = $9, bedrooms = $10,
                    price = $11, min_hours = $12, lat = $13, lon = $14, image_url = $15,
                    is_published = $16, is_archived = $17, updated_at = CURRENT_TIMESTAMP
                WHERE id = $18`
			args = []interface{}{
				in.OwnerID, strOr(in.Category, defaultCategory), strOr(in.Name, ""), in.Address, in.Metro,
				in.Description, in.Phone, in.Telegram, in.Area, in.Bedrooms, in.Price,
				intOr(in.MinHours, defaultMinHours), in.Lat, in.Lon, in.ImageURL,
				boolOr(in.IsPublished, false), boolOr(in.IsArchived, false), id,
			}
		} else {
			query = `
                UPDATE objects SET
                    owner_id = COALESCE($1, owner_id),
                    category = COALESCE($2, category),
                    name = COALESCE($3, name),
                    address = COALESCE($4, address),
                    metro = COALESCE($5, metro),
                    description = COALESCE($6, description),
                    phone = COALESCE($7, phone),
                    telegram = COALESCE($8, telegram),
                    area = COALESCE($9, area),
                    bedrooms = COALESCE($10, bedrooms),
                    price = COALESCE($11, price),
                    min_hours = COALESCE($12, min_hours),
                    lat = COALESCE($13, lat),
                    lon = COALESCE($14, lon),
                    image_url = COALESCE($15, image_url),
                    is_published = COALESCE($16, is_published),
                    is_archived = COALESCE($17, is_archived),
                    updated_at = CURRENT_TIMESTAMP
                WHERE id = $18`
			args = []interface{}{
				in.OwnerID, in.Category, in.Name, in.Address, in.Metro,
				in.Description, in.Phone, in.Telegram, in.Area, in.Bedrooms, in.Price,
				in.MinHours, in.Lat, in.Lon, in.ImageURL, in.IsPublished, in.IsArchived, id,
			}
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update property: %w", err)
		}
		if err := affected(res, "update property"); err != nil {
			return err
		}

		if in.Photos != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM object_photos WHERE object_id = $1`, id); err != nil {
				return fmt.Errorf("delete property photos: %w", err)
			}
			if err := insertPhotos(ctx, tx, id, *in.Photos); err != nil {
				return err
			}
		}
		return nil
	})
}

// TogglePropertyFlag выставляет флаг в value, а при value == nil инвертирует его.
func (s *Storage) TogglePropertyFlag(ctx context.Context, id int64, flag Flag, value *bool) (bool, error) {
	return s.toggleFlag(ctx, "objects", id, flag, value)
}

func (s *Storage) toggleFlag(ctx context.Context, table string, id int64, flag Flag, value *bool) (bool, error) {
	if !flag.valid() {
		return false, fmt.Errorf("toggle %s: unknown flag %q", table, flag)
	}
	query := fmt.Sprintf(`
        UPDATE %[1]s SET %[2]s = COALESCE($1, NOT %[2]s), updated_at = CURRENT_TIMESTAMP
        WHERE id = $2
        RETURNING %[2]s`, table, flag)
	var result bool
	if err := s.db.QueryRowxContext(ctx, query, value, id).Scan(&result); err != nil {
		return false, notFound(err, "toggle "+table+" "+string(flag))
	}
	return result, nil
}

// RecordStat увеличивает счётчик просмотров или кликов и ставит отметку времени.
func (s *Storage) RecordStat(ctx context.Context, objectID int64, kind StatKind) error {
	var query string
	switch kind {
	case StatView:
		query = `
            INSERT INTO object_stats (object_id, views_count, telegram_clicks_count, last_view_at)
            SELECT id, 1, 0, CURRENT_TIMESTAMP FROM objects WHERE id = $1
            ON CONFLICT (object_id) DO UPDATE
            SET views_count = object_stats.views_count + 1, last_view_at = CURRENT_TIMESTAMP`
	case StatClick:
		query = `
            INSERT INTO object_stats (object_id, views_count, telegram_clicks_count, last_click_at)
            SELECT id, 0, 1, CURRENT_TIMESTAMP FROM objects WHERE id = $1
            ON CONFLICT (object_id) DO UPDATE
            SET telegram_clicks_count = object_stats.telegram_clicks_count + 1, last_click_at = CURRENT_TIMESTAMP`
	default:
		return fmt.Errorf("record stat: unknown kind %q", kind)
	}
	res, err := s.db.ExecContext(ctx, query, objectID)
	if err != nil {
		return fmt.Errorf("record stat: %w", err)
	}
	return affected(res, "record stat")
}

func insertPhotos(ctx context.Context, tx *sqlx.Tx, objectID int64, photos []string) error {
	for i, url := range photos {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO object_photos (object_id, photo_url, sort_order) VALUES ($1, $2, $3)`,
			objectID, url, i)
		if err != nil {
			return fmt.Errorf("insert property photo: %w", err)
		}
	}
	return nil
}

func strOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
