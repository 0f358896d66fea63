package handlers

import (
	"context"

	"github.com/pr-poehali-dev/apartment-rental-moscow/db"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/media"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/notify"
	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

type StorageInterface interface {
	Ping(ctx context.Context) error

	ListOwners(ctx context.Context) ([]models.OwnerWithCount, error)
	ListOwnersByName(ctx context.Context) ([]models.Owner, error)
	CreateOwner(ctx context.Context, o *models.Owner) error
	UpdateOwner(ctx context.Context, id int64, p models.OwnerPatch) (*models.Owner, error)
	GetOwnerByUsername(ctx context.Context, username string) (*models.Owner, error)
	GetActiveOwner(ctx context.Context, id int64) (*models.Owner, error)
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)

	ListProperties(ctx context.Context) ([]models.PropertySummary, error)
	GetProperty(ctx context.Context, id int64) (*models.PropertyDetails, error)
	CreateProperty(ctx context.Context, in *models.PropertyInput) (int64, error)
	UpdateProperty(ctx context.Context, id int64, in *models.PropertyInput, mode db.UpdateMode) error
	TogglePropertyFlag(ctx context.Context, id int64, flag db.Flag, value *bool) (bool, error)
	RecordStat(ctx context.Context, objectID int64, kind db.StatKind) error

	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	CreateRoom(ctx context.Context, in *models.RoomInput) (*models.Room, error)
	UpdateRoom(ctx context.Context, id int64, in *models.RoomInput) (*models.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	ToggleRoomFlag(ctx context.Context, id int64, flag db.Flag, value *bool) (bool, error)

	ListPromotions(ctx context.Context) ([]models.Promotion, error)
	ListCurrentPromotions(ctx context.Context) ([]models.Promotion, error)
	CreatePromotion(ctx context.Context, in *models.PromotionInput) (int64, error)
	UpdatePromotion(ctx context.Context, id int64, in *models.PromotionInput) error

	ListOwnerObjects(ctx context.Context, ownerID int64) ([]models.DashboardObject, error)
}

// Notifier отправляет заявки в чат
type Notifier interface {
	SendBrief(ctx context.Context, b notify.Brief) error
	SecretsInfo() map[string]interface{}
}

// Uploader кладёт картинку в хранилище и возвращает её публичный адрес
type Uploader interface {
	Upload(ctx context.Context, data, fileName string) (*media.Result, error)
}
