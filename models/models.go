package models

import (
	"time"

	"github.com/lib/pq"
)

// Собственник (владелец объектов)
type Owner struct {
	ID           int64     `db:"id" json:"id"`
	Username     *string   `db:"username" json:"username"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Phone        *string   `db:"phone" json:"phone"`
	Telegram     *string   `db:"telegram" json:"telegram"`
	Email        *string   `db:"email" json:"email"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Собственник со счётчиком объектов (список в админке)
type OwnerWithCount struct {
	Owner
	ObjectsCount int `db:"objects_count" json:"objects_count"`
}

// OwnerInput - тело запроса на создание собственника с учётными данными.
type OwnerInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Telegram string `json:"telegram"`
	Email    string `json:"email"`
}

// OwnerPatch - частичное обновление: nil означает "не менять".
type OwnerPatch struct {
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	Telegram     *string `json:"telegram"`
	IsActive     *bool   `json:"is_active"`
	Password     *string `json:"password"`
	PasswordHash *string `json:"-"`
}

// Empty сообщает, что в патче нет ни одного поля для записи.
func (p OwnerPatch) Empty() bool {
	return p.FullName == nil && p.Phone == nil && p.Telegram == nil &&
		p.IsActive == nil && p.PasswordHash == nil
}

// Администратор панели
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     *string   `db:"full_name" json:"full_name"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// Объект размещения (отель / апартаменты / сауна / зал)
type Property struct {
	ID          int64          `db:"id" json:"id"`
	OwnerID     *int64         `db:"owner_id" json:"owner_id"`
	OwnerName   *string        `db:"owner_name" json:"owner_name,omitempty"`
	Category    string         `db:"category" json:"category"`
	Name        string         `db:"name" json:"name"`
	Address     *string        `db:"address" json:"address"`
	Metro       *string        `db:"metro" json:"metro"`
	Description *string        `db:"description" json:"description"`
	Phone       *string        `db:"phone" json:"phone"`
	Telegram    *string        `db:"telegram" json:"telegram"`
	Area        *float64       `db:"area" json:"area"`
	Bedrooms    *int           `db:"bedrooms" json:"bedrooms"`
	Price       *float64       `db:"price" json:"price"`
	MinHours    *int           `db:"min_hours" json:"min_hours"`
	Lat         *float64       `db:"lat" json:"lat"`
	Lon         *float64       `db:"lon" json:"lon"`
	ImageURL    *string        `db:"image_url" json:"image_url"`
	IsPublished bool           `db:"is_published" json:"is_published"`
	IsArchived  bool           `db:"is_archived" json:"is_archived"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time     `db:"updated_at" json:"updated_at"`
	Photos      pq.StringArray `db:"photos" json:"photos"`
}

// Строка списка объектов: агрегаты по номерам и статистике
type PropertySummary struct {
	Property
	RoomCount int `db:"room_count" json:"room_count"`
	Views     int `db:"views" json:"views"`
	Clicks    int `db:"clicks" json:"clicks"`
}

// Объект с полностью загруженными номерами
type PropertyDetails struct {
	Property
	Rooms []Room `json:"rooms"`
}

// PropertyInput используется и для создания, и для обновления объекта.
// Photos == nil означает "фото не трогать".
type PropertyInput struct {
	OwnerID     *int64      `json:"owner_id"`
	Category    *string     `json:"category"`
	Name        *string     `json:"name"`
	Address     *string     `json:"address"`
	Metro       *string     `json:"metro"`
	Description *string     `json:"description"`
	Phone       *string     `json:"phone"`
	Telegram    *string     `json:"telegram"`
	Area        *float64    `json:"area"`
	Bedrooms    *int        `json:"bedrooms"`
	Price       *float64    `json:"price"`
	MinHours    *int        `json:"min_hours"`
	Lat         *float64    `json:"lat"`
	Lon         *float64    `json:"lon"`
	ImageURL    *string     `json:"image_url"`
	IsPublished *bool       `json:"is_published"`
	IsArchived  *bool       `json:"is_archived"`
	Photos      *[]string   `json:"photos"`
	Rooms       []RoomInput `json:"rooms"`
}

// Статистика просмотров объекта
type ObjectStats struct {
	Views          int        `db:"views" json:"views"`
	TelegramClicks int        `db:"telegram_clicks" json:"telegram_clicks"`
	LastViewAt     *time.Time `db:"last_view_at" json:"last_view_at"`
	LastClickAt    *time.Time `db:"last_click_at" json:"last_click_at"`
}

// Объект в личном кабинете собственника
type DashboardObject struct {
	Property
	Stats ObjectStats `db:"stats" json:"stats"`
}

// Номер внутри объекта
type Room struct {
	ID          int64         `db:"id" json:"id"`
	ObjectID    int64         `db:"object_id" json:"object_id"`
	Name        string        `db:"name" json:"name"`
	Type        *string       `db:"type" json:"type"`
	Price       float64       `db:"price" json:"price"`
	Capacity    *int          `db:"capacity" json:"capacity"`
	Area        *float64      `db:"area" json:"area"`
	Description *string       `db:"description" json:"description"`
	MinHours    int           `db:"min_hours" json:"min_hours"`
	Telegram    *string       `db:"telegram" json:"telegram"`
	Phone       *string       `db:"phone" json:"phone"`
	IsPublished bool          `db:"is_published" json:"is_published"`
	IsArchived  bool          `db:"is_archived" json:"is_archived"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time    `db:"updated_at" json:"updated_at"`
	Features    []RoomFeature `db:"-" json:"features"`
	Amenities   []string      `db:"-" json:"amenities"`
	Images      []string      `db:"-" json:"images"`
}

// Особенность номера: иконка + подпись
type RoomFeature struct {
	Icon  string `db:"icon" json:"icon"`
	Label string `db:"label" json:"label"`
}

// RoomInput - тело запроса на создание/обновление номера.
// Для вложенных коллекций nil = "не менять", пустой срез = "очистить".
type RoomInput struct {
	ObjectID    int64          `json:"object_id"`
	Name        string         `json:"name" validate:"required"`
	Type        *string        `json:"type"`
	Price       float64        `json:"price" validate:"gte=0"`
	Capacity    *int           `json:"capacity"`
	Area        *float64       `json:"area"`
	Description *string        `json:"description"`
	MinHours    *int           `json:"min_hours"`
	Telegram    *string        `json:"telegram"`
	Phone       *string        `json:"phone"`
	IsPublished bool           `json:"is_published"`
	IsArchived  bool           `json:"is_archived"`
	Features    *[]RoomFeature `json:"features"`
	Amenities   *[]string      `json:"amenities"`
	Images      *[]string      `json:"images"`
}

// Акция
type Promotion struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	ValidFrom   *time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil  *time.Time `db:"valid_until" json:"valid_until"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// PromotionInput - создание и COALESCE-обновление акции.
// ValidFrom при обновлении игнорируется.
type PromotionInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ValidFrom   *Timestamp `json:"valid_from"`
	ValidUntil  *Timestamp `json:"valid_until"`
	IsActive    *bool      `json:"is_active"`
}
