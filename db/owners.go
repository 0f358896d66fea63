package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
)

const ownerColumns = `id, username, password_hash, full_name, phone, telegram, email, is_active, created_at`

// Собственники со счётчиком объектов, новые сверху
func (s *Storage) ListOwners(ctx context.Context) ([]models.OwnerWithCount, error) {
	query := `
        SELECT o.id, o.username, o.password_hash, o.full_name, o.phone, o.telegram, o.email,
               o.is_active, o.created_at,
               COUNT(obj.id) AS objects_count
        FROM owners o
        LEFT JOIN objects obj ON o.id = obj.owner_id
        GROUP BY o.id
        ORDER BY o.created_at DESC`
	owners := []models.OwnerWithCount{}
	if err := s.db.SelectContext(ctx, &owners, query); err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

// Справочник собственников для каталога, по имени
func (s *Storage) ListOwnersByName(ctx context.Context) ([]models.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners ORDER BY full_name`
	owners := []models.Owner{}
	if err := s.db.SelectContext(ctx, &owners, query); err != nil {
		return nil, fmt.Errorf("list owners by name: %w", err)
	}
	return owners, nil
}

// CreateOwner вставляет собственника и дописывает в o id, is_active и created_at.
// Username и PasswordHash могут быть nil (собственник без входа в кабинет).
func (s *Storage) CreateOwner(ctx context.Context, o *models.Owner) error {
	query := `
        INSERT INTO owners (username, password_hash, full_name, phone, telegram, email)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, is_active, created_at`
	err := s.db.QueryRowxContext(ctx, query,
		o.Username, o.PasswordHash, o.FullName, o.Phone, o.Telegram, o.Email).
		Scan(&o.ID, &o.IsActive, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

// UpdateOwner меняет только заданные поля патча.
func (s *Storage) UpdateOwner(ctx context.Context, id int64, p models.OwnerPatch) (*models.Owner, error) {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.FullName != nil {
		add("full_name", *p.FullName)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Telegram != nil {
		add("telegram", *p.Telegram)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if p.PasswordHash != nil {
		add("password_hash", *p.PasswordHash)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("update owner: no fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE owners SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ownerColumns)

	owner := &models.Owner{}
	if err := s.db.GetContext(ctx, owner, query, args...); err != nil {
		return nil, notFound(err, "update owner")
	}
	return owner, nil
}

// Собственник по логину (для входа в кабинет)
func (s *Storage) GetOwnerByUsername(ctx context.Context, username string) (*models.Owner, error) {
	owner := &models.Owner{}
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE username = $1`
	if err := s.db.GetContext(ctx, owner, query, username); err != nil {
		return nil, notFound(err, "get owner by username")
	}
	return owner, nil
}

// Только активный собственник; неактивный неотличим от отсутствующего.
func (s *Storage) GetActiveOwner(ctx context.Context, id int64) (*models.Owner, error) {
	owner := &models.Owner{}
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1 AND is_active = true`
	if err := s.db.GetContext(ctx, owner, query, id); err != nil {
		return nil, notFound(err, "get active owner")
	}
	return owner, nil
}

// Администратор по логину
func (s *Storage) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	admin := &models.Admin{}
	query := `SELECT id, username, password_hash, full_name, created_at FROM admins WHERE username = $1`
	if err := s.db.GetContext(ctx, admin, query, username); err != nil {
		return nil, notFound(err, "get admin by username")
	}
	return admin, nil
}

// CreateAdmin заводит администратора; для существующего логина меняет пароль и имя.
// В a дописываются id и created_at.
func (s *Storage) CreateAdmin(ctx context.Context, a *models.Admin) error {
	query := `
        INSERT INTO admins (username, password_hash, full_name)
        VALUES ($1, $2, $3)
        ON CONFLICT (username) DO UPDATE
        SET password_hash = EXCLUDED.password_hash,
            full_name = COALESCE(EXCLUDED.full_name, admins.full_name)
        RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, query, a.Username, a.PasswordHash, a.FullName).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
