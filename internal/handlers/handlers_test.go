package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/pr-poehali-dev/apartment-rental-moscow/db"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/auth"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/config"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/handlers"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/handlers/testutils"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/media"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/notify"
	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// MockStorage реализует StorageInterface
type MockStorage struct {
	GetOwnerByUsernameFunc    func(ctx context.Context, username string) (*models.Owner, error)
	GetAdminByUsernameFunc    func(ctx context.Context, username string) (*models.Admin, error)
	CreateOwnerFunc           func(ctx context.Context, o *models.Owner) error
	UpdateOwnerFunc           func(ctx context.Context, id int64, p models.OwnerPatch) (*models.Owner, error)
	GetActiveOwnerFunc        func(ctx context.Context, id int64) (*models.Owner, error)
	ListPropertiesFunc        func(ctx context.Context) ([]models.PropertySummary, error)
	GetPropertyFunc           func(ctx context.Context, id int64) (*models.PropertyDetails, error)
	CreatePropertyFunc        func(ctx context.Context, in *models.PropertyInput) (int64, error)
	UpdatePropertyFunc        func(ctx context.Context, id int64, in *models.PropertyInput, mode db.UpdateMode) error
	TogglePropertyFlagFunc    func(ctx context.Context, id int64, flag db.Flag, value *bool) (bool, error)
	RecordStatFunc            func(ctx context.Context, objectID int64, kind db.StatKind) error
	GetRoomFunc               func(ctx context.Context, id int64) (*models.Room, error)
	CreateRoomFunc            func(ctx context.Context, in *models.RoomInput) (*models.Room, error)
	UpdateRoomFunc            func(ctx context.Context, id int64, in *models.RoomInput) (*models.Room, error)
	DeleteRoomFunc            func(ctx context.Context, id int64) error
	ListCurrentPromotionsFunc func(ctx context.Context) ([]models.Promotion, error)
	UpdatePromotionFunc       func(ctx context.Context, id int64, in *models.PromotionInput) error
	ListOwnerObjectsFunc      func(ctx context.Context, ownerID int64) ([]models.DashboardObject, error)
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }

func (m *MockStorage) ListOwners(ctx context.Context) ([]models.OwnerWithCount, error) {
	return []models.OwnerWithCount{}, nil
}

func (m *MockStorage) ListOwnersByName(ctx context.Context) ([]models.Owner, error) {
	return []models.Owner{}, nil
}

func (m *MockStorage) CreateOwner(ctx context.Context, o *models.Owner) error {
	if m.CreateOwnerFunc != nil {
		return m.CreateOwnerFunc(ctx, o)
	}
	o.ID = 1
	o.IsActive = true
	return nil
}

func (m *MockStorage) UpdateOwner(ctx context.Context, id int64, p models.OwnerPatch) (*models.Owner, error) {
	if m.UpdateOwnerFunc != nil {
		return m.UpdateOwnerFunc(ctx, id, p)
	}
	return &models.Owner{ID: id}, nil
}

func (m *MockStorage) GetOwnerByUsername(ctx context.Context, username string) (*models.Owner, error) {
	if m.GetOwnerByUsernameFunc != nil {
		return m.GetOwnerByUsernameFunc(ctx, username)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) GetActiveOwner(ctx context.Context, id int64) (*models.Owner, error) {
	if m.GetActiveOwnerFunc != nil {
		return m.GetActiveOwnerFunc(ctx, id)
	}
	return &models.Owner{ID: id, FullName: "Owner", IsActive: true}, nil
}

func (m *MockStorage) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if m.GetAdminByUsernameFunc != nil {
		return m.GetAdminByUsernameFunc(ctx, username)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListProperties(ctx context.Context) ([]models.PropertySummary, error) {
	if m.ListPropertiesFunc != nil {
		return m.ListPropertiesFunc(ctx)
	}
	return []models.PropertySummary{}, nil
}

func (m *MockStorage) GetProperty(ctx context.Context, id int64) (*models.PropertyDetails, error) {
	if m.GetPropertyFunc != nil {
		return m.GetPropertyFunc(ctx, id)
	}
	return &models.PropertyDetails{Property: models.Property{ID: id, Name: "Hotel"}, Rooms: []models.Room{}}, nil
}

func (m *MockStorage) CreateProperty(ctx context.Context, in *models.PropertyInput) (int64, error) {
	if m.CreatePropertyFunc != nil {
		return m.CreatePropertyFunc(ctx, in)
	}
	return 10, nil
}

func (m *MockStorage) UpdateProperty(ctx context.Context, id int64, in *models.PropertyInput, mode db.UpdateMode) error {
	if m.UpdatePropertyFunc != nil {
		return m.UpdatePropertyFunc(ctx, id, in, mode)
	}
	return nil
}

func (m *MockStorage) TogglePropertyFlag(ctx context.Context, id int64, flag db.Flag, value *bool) (bool, error) {
	if m.TogglePropertyFlagFunc != nil {
		return m.TogglePropertyFlagFunc(ctx, id, flag, value)
	}
	return true, nil
}

func (m *MockStorage) RecordStat(ctx context.Context, objectID int64, kind db.StatKind) error {
	if m.RecordStatFunc != nil {
		return m.RecordStatFunc(ctx, objectID, kind)
	}
	return nil
}

func (m *MockStorage) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, id)
	}
	return &models.Room{ID: id, Features: []models.RoomFeature{}, Amenities: []string{}, Images: []string{}}, nil
}

func (m *MockStorage) CreateRoom(ctx context.Context, in *models.RoomInput) (*models.Room, error) {
	if m.CreateRoomFunc != nil {
		return m.CreateRoomFunc(ctx, in)
	}
	return &models.Room{ID: 1, ObjectID: in.ObjectID, Name: in.Name}, nil
}

func (m *MockStorage) UpdateRoom(ctx context.Context, id int64, in *models.RoomInput) (*models.Room, error) {
	if m.UpdateRoomFunc != nil {
		return m.UpdateRoomFunc(ctx, id, in)
	}
	return &models.Room{ID: id, Name: in.Name}, nil
}

func (m *MockStorage) DeleteRoom(ctx context.Context, id int64) error {
	if m.DeleteRoomFunc != nil {
		return m.DeleteRoomFunc(ctx, id)
	}
	return nil
}

func (m *MockStorage) ToggleRoomFlag(ctx context.Context, id int64, flag db.Flag, value *bool) (bool, error) {
	return false, nil
}

func (m *MockStorage) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	return []models.Promotion{}, nil
}

func (m *MockStorage) ListCurrentPromotions(ctx context.Context) ([]models.Promotion, error) {
	if m.ListCurrentPromotionsFunc != nil {
		return m.ListCurrentPromotionsFunc(ctx)
	}
	return []models.Promotion{}, nil
}

func (m *MockStorage) CreatePromotion(ctx context.Context, in *models.PromotionInput) (int64, error) {
	return 3, nil
}

func (m *MockStorage) UpdatePromotion(ctx context.Context, id int64, in *models.PromotionInput) error {
	if m.UpdatePromotionFunc != nil {
		return m.UpdatePromotionFunc(ctx, id, in)
	}
	return nil
}

func (m *MockStorage) ListOwnerObjects(ctx context.Context, ownerID int64) ([]models.DashboardObject, error) {
	if m.ListOwnerObjectsFunc != nil {
		return m.ListOwnerObjectsFunc(ctx, ownerID)
	}
	return []models.DashboardObject{}, nil
}

type mockNotifier struct {
	sent []notify.Brief
	err  error
}

func (n *mockNotifier) SendBrief(ctx context.Context, b notify.Brief) error {
	n.sent = append(n.sent, b)
	return n.err
}

func (n *mockNotifier) SecretsInfo() map[string]interface{} {
	return map[string]interface{}{"bot_token_exists": true, "bot_token_length": 5, "chat_id_exists": false, "chat_id_length": 0}
}

type mockUploader struct {
	fileName string
}

func (u *mockUploader) Upload(ctx context.Context, data, fileName string) (*media.Result, error) {
	if data == "" {
		return nil, media.ErrNoFile
	}
	u.fileName = fileName
	return &media.Result{URL: "https://cdn/x." + media.Extension(fileName), FileName: "x." + media.Extension(fileName)}, nil
}

func newTestHandler(store *MockStorage, mutate ...func(*config.Config)) *handlers.Handler {
	cfg := &config.Config{CatalogUpdateMode: config.UpdateModePatch}
	for _, fn := range mutate {
		fn(cfg)
	}
	return handlers.NewHandler(store, &mockNotifier{}, &mockUploader{}, cfg, zerolog.Nop())
}

func TestPingHandler(t *testing.T) {
	r := newTestHandler(&MockStorage{}).Router()
	w := testutils.Do(t, r, http.MethodGet, "/api/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestPreflightShortCircuits(t *testing.T) {
	called := false
	store := &MockStorage{
		ListPropertiesFunc: func(ctx context.Context) ([]models.PropertySummary, error) {
			called = true
			return nil, nil
		},
	}
	r := newTestHandler(store).Router()
	w := testutils.Do(t, r, http.MethodOptions, "/api/catalog?entity=hotels", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.String())
	require.False(t, called)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type, X-Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestDispatchUnknownCombinations(t *testing.T) {
	r := newTestHandler(&MockStorage{}).Router()

	w := testutils.Do(t, r, http.MethodGet, "/api/admin?action=drop_everything", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Endpoint not found", testutils.DecodeBody(t, w)["error"])
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// Чужой метод или отсутствующий id в табличных эндпоинтах - тоже 404
	for _, c := range []struct{ method, target string }{
		{http.MethodPatch, "/api/catalog?entity=rooms&id=1"},
		{http.MethodPut, "/api/catalog?entity=hotels"},
		{http.MethodDelete, "/api/catalog?entity=hotels"},
		{http.MethodGet, "/api/catalog?entity=rooms"},
		{http.MethodPost, "/api/admin?action=get_owners"},
	} {
		w = testutils.Do(t, r, c.method, c.target, "")
		require.Equal(t, http.StatusNotFound, w.Code, c.method+" "+c.target)
		require.Equal(t, "Endpoint not found", testutils.DecodeBody(t, w)["error"])
	}

	// Эндпоинты с одной операцией отвечают 405
	w = testutils.Do(t, r, http.MethodGet, "/api/auth", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "Method not allowed", testutils.DecodeBody(t, w)["error"])
}

func TestInternalErrorDetailsAreOptIn(t *testing.T) {
	store := &MockStorage{
		ListPropertiesFunc: func(ctx context.Context) ([]models.PropertySummary, error) {
			return nil, errors.New("relation \"objects\" does not exist")
		},
	}

	w := testutils.Do(t, newTestHandler(store).Router(), http.MethodGet, "/api/admin?action=get_objects", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := testutils.DecodeBody(t, w)
	require.Equal(t, "Internal server error", body["error"])
	require.NotContains(t, body, "details")

	exposed := newTestHandler(store, func(c *config.Config) { c.ExposeErrorDetails = true }).Router()
	w = testutils.Do(t, exposed, http.MethodGet, "/api/admin?action=get_objects", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, testutils.DecodeBody(t, w)["details"], "does not exist")
}

func TestMalformedJSONIsInternalError(t *testing.T) {
	w := testutils.Do(t, newTestHandler(&MockStorage{}).Router(), http.MethodPost, "/api/catalog?entity=hotels", "{not json")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestOwnerLoginDistinguishesBadPasswordFromDisabled(t *testing.T) {
	hash := auth.HashPassword("secret")
	username := "ivan"
	store := &MockStorage{
		GetOwnerByUsernameFunc: func(ctx context.Context, u string) (*models.Owner, error) {
			switch u {
			case "ivan":
				return &models.Owner{ID: 7, Username: &username, PasswordHash: &hash, FullName: "Иван", IsActive: true}, nil
			case "blocked":
				return &models.Owner{ID: 8, PasswordHash: &hash, FullName: "Пётр", IsActive: false}, nil
			}
			return nil, db.ErrNotFound
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPost, "/api/auth", `{"username":"ivan","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid credentials", testutils.DecodeBody(t, w)["error"])

	w = testutils.Do(t, r, http.MethodPost, "/api/auth", `{"username":"nobody","password":"secret"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutils.Do(t, r, http.MethodPost, "/api/auth", `{"username":"blocked","password":"secret"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Account is disabled", testutils.DecodeBody(t, w)["error"])

	w = testutils.Do(t, r, http.MethodPost, "/api/auth", `{"username":"  ivan ","password":" secret "}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := testutils.DecodeBody(t, w)
	require.Equal(t, float64(7), body["owner_id"])
	require.Equal(t, "Иван", body["full_name"])
	require.Len(t, body["token"], 43)

	w = testutils.Do(t, r, http.MethodPost, "/api/auth", `{"username":"ivan"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminLogin(t *testing.T) {
	fullName := "Админ"
	store := &MockStorage{
		GetAdminByUsernameFunc: func(ctx context.Context, u string) (*models.Admin, error) {
			if u != "admin" {
				return nil, db.ErrNotFound
			}
			return &models.Admin{ID: 1, Username: "admin", PasswordHash: auth.HashPassword("pass"), FullName: &fullName}, nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPost, "/api/auth-admin", `{"username":"admin","password":"pass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := testutils.DecodeBody(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, "admin", body["admin"].(map[string]interface{})["username"])

	w = testutils.Do(t, r, http.MethodPost, "/api/auth-admin", `{"username":"admin","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOwnersWithSamePasswordStoreSameHash(t *testing.T) {
	var hashes []string
	store := &MockStorage{
		CreateOwnerFunc: func(ctx context.Context, o *models.Owner) error {
			require.NotNil(t, o.PasswordHash)
			hashes = append(hashes, *o.PasswordHash)
			o.ID = int64(len(hashes))
			return nil
		},
	}
	r := newTestHandler(store).Router()

	for _, name := range []string{"anna", "boris"} {
		w := testutils.Do(t, r, http.MethodPost, "/api/admin?action=create_owner",
			`{"username":"`+name+`","password":"same-pass","full_name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotContains(t, w.Body.String(), "same-pass")
		require.NotContains(t, w.Body.String(), "password_hash")
	}

	require.Len(t, hashes, 2)
	require.Equal(t, hashes[0], hashes[1])
	require.Equal(t, auth.HashPassword("same-pass"), hashes[0])
}

func TestCreateOwnerRequiresFields(t *testing.T) {
	w := testutils.Do(t, newTestHandler(&MockStorage{}).Router(), http.MethodPost, "/api/admin?action=create_owner",
		`{"username":"  ","password":"x","full_name":"X"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOwner(t *testing.T) {
	var got models.OwnerPatch
	store := &MockStorage{
		UpdateOwnerFunc: func(ctx context.Context, id int64, p models.OwnerPatch) (*models.Owner, error) {
			if id == 404 {
				return nil, db.ErrNotFound
			}
			got = p
			return &models.Owner{ID: id, FullName: "New"}, nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPut, "/api/admin?action=update_owner&id=5", `{"is_active":false,"password":"n3w"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.IsActive)
	require.False(t, *got.IsActive)
	require.Equal(t, auth.HashPassword("n3w"), *got.PasswordHash)

	w = testutils.Do(t, r, http.MethodPut, "/api/admin?action=update_owner&id=5", `{"password":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "No fields to update", testutils.DecodeBody(t, w)["error"])

	w = testutils.Do(t, r, http.MethodPut, "/api/admin?action=update_owner&id=404", `{"full_name":"X"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Owner not found", testutils.DecodeBody(t, w)["error"])
}

func TestGetPropertyWithoutRoomsReturnsEmptyArray(t *testing.T) {
	store := &MockStorage{
		GetPropertyFunc: func(ctx context.Context, id int64) (*models.PropertyDetails, error) {
			if id != 1 {
				return nil, db.ErrNotFound
			}
			return &models.PropertyDetails{Property: models.Property{ID: 1, Name: "Empty"}}, nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodGet, "/api/catalog?id=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"rooms":[]`)

	w = testutils.Do(t, r, http.MethodGet, "/api/catalog?entity=hotels&id=2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Hotel not found", testutils.DecodeBody(t, w)["error"])
}

func TestCreatePropertyRequiresName(t *testing.T) {
	r := newTestHandler(&MockStorage{}).Router()

	w := testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=hotels", `{"address":"Арбат, 1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=hotels", `{"name":"Отель","rooms":[{"price":100}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=hotels", `{"name":"Отель","photos":["a.jpg"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdatePropertyModeFollowsConfig(t *testing.T) {
	var gotMode db.UpdateMode
	var gotPhotos *[]string
	store := &MockStorage{
		UpdatePropertyFunc: func(ctx context.Context, id int64, in *models.PropertyInput, mode db.UpdateMode) error {
			gotMode = mode
			gotPhotos = in.Photos
			return nil
		},
	}

	w := testutils.Do(t, newTestHandler(store).Router(), http.MethodPut, "/api/catalog?entity=hotels&id=3", `{"price":5000}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, db.UpdatePatch, gotMode)
	require.Nil(t, gotPhotos)

	replace := newTestHandler(store, func(c *config.Config) { c.CatalogUpdateMode = config.UpdateModeReplace }).Router()
	w = testutils.Do(t, replace, http.MethodPut, "/api/catalog?entity=hotels&id=3", `{"price":5000}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.Do(t, replace, http.MethodPut, "/api/catalog?entity=hotels&id=3", `{"name":"Новое","photos":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, db.UpdateReplace, gotMode)
	require.NotNil(t, gotPhotos)
	require.Empty(t, *gotPhotos)
}

func TestTogglePublishAndArchive(t *testing.T) {
	var gotFlag db.Flag
	var gotValue *bool
	store := &MockStorage{
		TogglePropertyFlagFunc: func(ctx context.Context, id int64, flag db.Flag, value *bool) (bool, error) {
			gotFlag, gotValue = flag, value
			if value == nil {
				return true, nil
			}
			return *value, nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPut, "/api/catalog?entity=hotels&id=4&action=publish", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, db.FlagPublished, gotFlag)
	require.Nil(t, gotValue)
	require.Equal(t, true, testutils.DecodeBody(t, w)["is_published"])

	w = testutils.Do(t, r, http.MethodPut, "/api/catalog?entity=hotels&id=4&action=archive", `{"value":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, db.FlagArchived, gotFlag)
	require.NotNil(t, gotValue)
	require.False(t, *gotValue)

	w = testutils.Do(t, r, http.MethodDelete, "/api/catalog?entity=hotels&id=4", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, db.FlagArchived, gotFlag)
	require.True(t, *gotValue)
}

func TestUpdateRoomOmittedAmenitiesStayNil(t *testing.T) {
	var got *models.RoomInput
	store := &MockStorage{
		UpdateRoomFunc: func(ctx context.Context, id int64, in *models.RoomInput) (*models.Room, error) {
			got = in
			return &models.Room{ID: id, Name: in.Name}, nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPut, "/api/catalog?entity=rooms&id=9",
		`{"name":"Люкс","price":3000,"features":[{"icon":"wifi","label":"Wi-Fi"}],"images":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, got.Amenities)
	require.Nil(t, got.Images)
	require.NotNil(t, got.Features)
	require.Len(t, *got.Features, 1)

	w = testutils.Do(t, r, http.MethodPut, "/api/catalog?entity=rooms&id=9", `{"name":"Люкс","amenities":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.Amenities)
	require.Empty(t, *got.Amenities)
}

func TestCreateAndDeleteRoom(t *testing.T) {
	store := &MockStorage{
		DeleteRoomFunc: func(ctx context.Context, id int64) error {
			if id == 404 {
				return db.ErrNotFound
			}
			return nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=rooms", `{"name":"Стандарт","price":1500}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=rooms", `{"object_id":2,"name":"Стандарт","price":1500}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutils.Do(t, r, http.MethodDelete, "/api/catalog?entity=rooms&id=3", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = testutils.Do(t, r, http.MethodDelete, "/api/catalog?entity=rooms&id=404", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Room not found", testutils.DecodeBody(t, w)["error"])
}

func TestGetRoom(t *testing.T) {
	store := &MockStorage{
		GetRoomFunc: func(ctx context.Context, id int64) (*models.Room, error) {
			if id == 404 {
				return nil, db.ErrNotFound
			}
			return &models.Room{
				ID:        id,
				ObjectID:  2,
				Name:      "Люкс",
				Features:  []models.RoomFeature{},
				Amenities: []string{"Фен", "Сейф"},
				Images:    []string{},
			}, nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodGet, "/api/catalog?entity=rooms&id=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := testutils.DecodeBody(t, w)
	require.Equal(t, "Люкс", body["name"])
	require.Equal(t, []interface{}{"Фен", "Сейф"}, body["amenities"])
	require.Equal(t, []interface{}{}, body["images"])

	w = testutils.Do(t, r, http.MethodGet, "/api/catalog?entity=rooms&id=404", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Room not found", testutils.DecodeBody(t, w)["error"])
}

func TestRecordStat(t *testing.T) {
	var gotKind db.StatKind
	store := &MockStorage{
		RecordStatFunc: func(ctx context.Context, objectID int64, kind db.StatKind) error {
			gotKind = kind
			if objectID == 404 {
				return db.ErrNotFound
			}
			return nil
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=stats&id=1&action=click", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, db.StatClick, gotKind)

	w = testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=stats&id=404&action=view", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = testutils.Do(t, r, http.MethodPost, "/api/catalog?entity=stats&id=1&action=like", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardOwnerWithoutObjects(t *testing.T) {
	store := &MockStorage{
		ListOwnerObjectsFunc: func(ctx context.Context, ownerID int64) ([]models.DashboardObject, error) {
			return nil, nil
		},
	}
	w := testutils.Do(t, newTestHandler(store).Router(), http.MethodGet, "/api/owner-dashboard?owner_id=3", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"objects":[]`)
	require.Contains(t, w.Body.String(), `"promotions":[]`)
}

func TestDashboardErrors(t *testing.T) {
	store := &MockStorage{
		GetActiveOwnerFunc: func(ctx context.Context, id int64) (*models.Owner, error) {
			return nil, db.ErrNotFound
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodGet, "/api/owner-dashboard", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.Do(t, r, http.MethodGet, "/api/owner-dashboard?owner_id=77", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Owner not found", testutils.DecodeBody(t, w)["error"])
}

func TestDashboardReturnsCurrentPromotions(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	store := &MockStorage{
		ListCurrentPromotionsFunc: func(ctx context.Context) ([]models.Promotion, error) {
			return []models.Promotion{
				{ID: 2, Title: "running", IsActive: true, ValidUntil: &future},
				{ID: 3, Title: "open-ended", IsActive: true},
			}, nil
		},
	}
	w := testutils.Do(t, newTestHandler(store).Router(), http.MethodGet, "/api/owner-dashboard?owner_id=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Promotions []models.Promotion `json:"promotions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Promotions, 2)
	require.Equal(t, "running", body.Promotions[0].Title)
	require.Nil(t, body.Promotions[1].ValidUntil)
}

func TestPromotions(t *testing.T) {
	store := &MockStorage{
		UpdatePromotionFunc: func(ctx context.Context, id int64, in *models.PromotionInput) error {
			return db.ErrNotFound
		},
	}
	r := newTestHandler(store).Router()

	w := testutils.Do(t, r, http.MethodPost, "/api/admin?action=create_promotion", `{"description":"без названия"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.Do(t, r, http.MethodPost, "/api/admin?action=create_promotion",
		`{"title":"Скидка","valid_from":"2024-01-01","valid_until":"2024-02-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, float64(3), testutils.DecodeBody(t, w)["id"])

	w = testutils.Do(t, r, http.MethodPut, "/api/admin?action=update_promotion&id=8", `{"is_active":false}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendBrief(t *testing.T) {
	n := &mockNotifier{}
	h := handlers.NewHandler(&MockStorage{}, n, &mockUploader{}, &config.Config{}, zerolog.Nop())

	w := testutils.Do(t, h.Router(), http.MethodPost, "/api/send-brief", `{"category":"hotel","name":"Тест","objectsCount":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, n.sent, 1)
	require.Equal(t, notify.FlexCount("2"), n.sent[0].ObjectsCount)

	n.err = &notify.UpstreamError{StatusCode: 400, Description: "Bad Request: chat not found"}
	w = testutils.Do(t, h.Router(), http.MethodPost, "/api/send-brief", `{}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Bad Request: chat not found", testutils.DecodeBody(t, w)["error"])

	n.err = notify.ErrNotConfigured
	w = testutils.Do(t, h.Router(), http.MethodPost, "/api/send-brief", `{}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Telegram credentials not configured", testutils.DecodeBody(t, w)["error"])
}

func TestCheckSecrets(t *testing.T) {
	w := testutils.Do(t, newTestHandler(&MockStorage{}).Router(), http.MethodGet, "/api/check-secrets", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := testutils.DecodeBody(t, w)
	require.Equal(t, true, body["bot_token_exists"])
	require.Equal(t, float64(0), body["chat_id_length"])
}

func TestUploadImage(t *testing.T) {
	u := &mockUploader{}
	h := handlers.NewHandler(&MockStorage{}, &mockNotifier{}, u, &config.Config{}, zerolog.Nop())

	w := testutils.Do(t, h.Router(), http.MethodPost, "/api/upload-image", `{"fileName":"a.png"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = testutils.Do(t, h.Router(), http.MethodPost, "/api/upload-image", `{"file":"data:image/png;base64,aGk=","fileName":"Cover.PNG"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Cover.PNG", u.fileName)
	require.Equal(t, "x.png", testutils.DecodeBody(t, w)["fileName"])
}
