package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

const defaultRoomMinHours = 2

const roomColumns = `id, object_id, name, type, price, capacity, area, description, min_hours,
        telegram, phone, is_published, is_archived, created_at, updated_at`

// Запросы, которые можно выполнять и в транзакции, и вне её
type queryer interface {
	sqlx.QueryerContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// CreateRoom создаёт номер со всеми вложенными коллекциями и возвращает его.
func (s *Storage) CreateRoom(ctx context.Context, in *models.RoomInput) (*models.Room, error) {
	var room *models.Room
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, err := insertRoom(ctx, tx, in)
		if err != nil {
			return err
		}
		room, err = getRoom(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom - номер с особенностями, удобствами и фото.
func (s *Storage) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	return getRoom(ctx, s.db, id)
}

// UpdateRoom перезаписывает скалярные поля номера.
// Коллекция features/amenities/images заменяется целиком, только если она передана.
func (s *Storage) UpdateRoom(ctx context.Context, id int64, in *models.RoomInput) (*models.Room, error) {
	var room *models.Room
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
            UPDATE rooms SET
                name = $1, type = $2, price = $3, capacity = $4, area = $5, description = $6,
                min_hours = $7, telegram = $8, phone = $9, is_published = $10, is_archived = $11,
                updated_at = CURRENT_TIMESTAMP
            WHERE id = $12`
		res, err := tx.ExecContext(ctx, query,
			in.Name, in.Type, in.Price, in.Capacity, in.Area, in.Description,
			intOr(in.MinHours, defaultRoomMinHours), in.Telegram, in.Phone,
			in.IsPublished, in.IsArchived, id)
		if err != nil {
			return fmt.Errorf("update room: %w", err)
		}
		if err := affected(res, "update room"); err != nil {
			return err
		}

		if err := replaceRoomChildren(ctx, tx, id, in, true); err != nil {
			return err
		}
		room, err = getRoom(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom удаляет номер вместе с особенностями, удобствами и фото.
func (s *Storage) DeleteRoom(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"room_features", "room_amenities", "room_images"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE room_id = $1`, id); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return affected(res, "delete room")
	})
}

// ToggleRoomFlag - то же, что TogglePropertyFlag, для номера.
func (s *Storage) ToggleRoomFlag(ctx context.Context, id int64, flag Flag, value *bool) (bool, error) {
	return s.toggleFlag(ctx, "rooms", id, flag, value)
}

func insertRoom(ctx context.Context, tx *sqlx.Tx, in *models.RoomInput) (int64, error) {
	query := `
        INSERT INTO rooms (
            object_id, name, type, price, capacity, area, description, min_hours,
            telegram, phone, is_published, is_archived
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id`
	var id int64
	err := tx.QueryRowxContext(ctx, query,
		in.ObjectID, in.Name, in.Type, in.Price, in.Capacity, in.Area, in.Description,
		intOr(in.MinHours, defaultRoomMinHours), in.Telegram, in.Phone,
		in.IsPublished, in.IsArchived).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert room: %w", err)
	}
	if err := replaceRoomChildren(ctx, tx, id, in, false); err != nil {
		return 0, err
	}
	return id, nil
}

// replaceRoomChildren пишет переданные коллекции номера.
// clear - сначала удалить старые строки (при обновлении).
func replaceRoomChildren(ctx context.Context, tx *sqlx.Tx, roomID int64, in *models.RoomInput, clear bool) error {
	if in.Features != nil {
		if err := clearChildren(ctx, tx, "room_features", roomID, clear); err != nil {
			return err
		}
		for _, f := range *in.Features {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO room_features (room_id, icon, label) VALUES ($1, $2, $3)`,
				roomID, f.Icon, f.Label)
			if err != nil {
				return fmt.Errorf("insert room feature: %w", err)
			}
		}
	}

	if in.Amenities != nil {
		if err := clearChildren(ctx, tx, "room_amenities", roomID, clear); err != nil {
			return err
		}
		for _, a := range *in.Amenities {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO room_amenities (room_id, amenity) VALUES ($1, $2)`,
				roomID, a)
			if err != nil {
				return fmt.Errorf("insert room amenity: %w", err)
			}
		}
	}

	if in.Images != nil {
		if err := clearChildren(ctx, tx, "room_images", roomID, clear); err != nil {
			return err
		}
		for i, url := range *in.Images {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO room_images (room_id, image_url, sort_order) VALUES ($1, $2, $3)`,
				roomID, url, i)
			if err != nil {
				return fmt.Errorf("insert room image: %w", err)
			}
		}
	}
	return nil
}

func clearChildren(ctx context.Context, tx *sqlx.Tx, table string, roomID int64, clear bool) error {
	if !clear {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func getRoom(ctx context.Context, q queryer, id int64) (*models.Room, error) {
	room := models.Room{}
	if err := sqlx.GetContext(ctx, q, &room, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id); err != nil {
		return nil, notFound(err, "get room")
	}
	rooms := []models.Room{room}
	if err := hydrateRooms(ctx, q, rooms); err != nil {
		return nil, err
	}
	return &rooms[0], nil
}

// listRooms - номера объекта по цене, уже с вложенными коллекциями.
func listRooms(ctx context.Context, q queryer, objectID int64) ([]models.Room, error) {
	rooms := []models.Room{}
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE object_id = $1 ORDER BY price, id`
	if err := q.SelectContext(ctx, &rooms, query, objectID); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if err := hydrateRooms(ctx, q, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// hydrateRooms подгружает особенности, удобства и фото для всех номеров тремя запросами.
func hydrateRooms(ctx context.Context, q queryer, rooms []models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	ids := make([]int64, len(rooms))
	byID := make(map[int64]*models.Room, len(rooms))
	for i := range rooms {
		rooms[i].Features = []models.RoomFeature{}
		rooms[i].Amenities = []string{}
		rooms[i].Images = []string{}
		ids[i] = rooms[i].ID
		byID[rooms[i].ID] = &rooms[i]
	}

	var features []struct {
		RoomID int64 `db:"room_id"`
		models.RoomFeature
	}
	err := q.SelectContext(ctx, &features,
		`SELECT room_id, icon, label FROM room_features WHERE room_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list room features: %w", err)
	}
	for _, f := range features {
		if r, ok := byID[f.RoomID]; ok {
			r.Features = append(r.Features, f.RoomFeature)
		}
	}

	var amenities []struct {
		RoomID  int64  `db:"room_id"`
		Amenity string `db:"amenity"`
	}
	err = q.SelectContext(ctx, &amenities,
		`SELECT room_id, amenity FROM room_amenities WHERE room_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list room amenities: %w", err)
	}
	for _, a := range amenities {
		if r, ok := byID[a.RoomID]; ok {
			r.Amenities = append(r.Amenities, a.Amenity)
		}
	}

	var images []struct {
		RoomID   int64  `db:"room_id"`
		ImageURL string `db:"image_url"`
	}
	err = q.SelectContext(ctx, &images,
		`SELECT room_id, image_url FROM room_images WHERE room_id = ANY($1) ORDER BY sort_order, id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list room images: %w", err)
	}
	for _, img := range images {
		if r, ok := byID[img.RoomID]; ok {
			r.Images = append(r.Images, img.ImageURL)
		}
	}
	return nil
}
