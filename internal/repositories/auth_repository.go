package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"occupancy_backend/internal/models"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// authRepository implements the AuthRepository interface.
type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

const selectUserFields = `
	u.id, u.username, u.password_hash, u.full_name, u.role_id, u.is_active, u.created_at,
	COALESCE(ro.name, '') AS role_name
`

func scanUserRow(row scanner) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string
	var fullName, roleName sql.NullString
	var roleID sql.NullInt64

	err := row.Scan(
		&user.ID, &user.Username, &hashedPassword, &fullName,
		&roleID, &user.IsActive, &user.CreatedAt, &roleName,
	)
	if err != nil {
		return nil, "", err
	}

	if fullName.Valid {
		user.FullName = &fullName.String
	}
	if roleID.Valid {
		user.RoleID = &roleID.Int64
		if roleName.Valid && roleName.String != "" {
			user.Role = &models.Role{ID: roleID.Int64, Name: roleName.String}
		}
	}
	return user, hashedPassword, nil
}

// FindUserByUsername retrieves a user by their username.
// It returns the user model, their hashed password, and an error if any.
func (r *authRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) {
	query := "SELECT " + selectUserFields + `
		FROM users u
		LEFT JOIN roles ro ON u.role_id = ro.id
		WHERE u.username = $1`

	user, hashedPassword, err := scanUserRow(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, hashedPassword, nil
}

// FindUserByID retrieves a user by their ID. The password hash is not returned.
func (r *authRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := "SELECT " + selectUserFields + `
		FROM users u
		LEFT JOIN roles ro ON u.role_id = ro.id
		WHERE u.id = $1`

	user, _, err := scanUserRow(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}
