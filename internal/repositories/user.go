package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
)

var _ models.Repository[*models.User] = (*UserRepository)(nil)

const userColumns = `id, sequence, email, first_name, last_name, image_url, created_at, last_modified_date`

// UserRepository implements [models.Repository] for user [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database with generated ID and sequence.
// The last-modified time is stamped when the user carries none.
//
// A second user with the same email fails with [shared.ErrDuplicate].
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.prepare(ctx, user); err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, r.args(user)...)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", mapError(err))
	}

	return nil
}

// CreateIfAbsent inserts user unless a user with the same email already exists.
//
// It reports whether the row was written. The existence check and the insert are a
// single statement, so two concurrent logins for one email cannot both insert.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	if err := r.prepare(ctx, user); err != nil {
		return false, err
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(email) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, r.args(user)...)
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", mapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		user.SetID("")
		user.SetSequence(0)
		user.SetLastModified(nil)
		return false, nil
	}

	return true, nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by its identity key
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user with email %s", shared.ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// Update modifies an existing user in the database and stamps its last-modified time.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	now := stamp()

	query := `
		UPDATE users
		SET email = ?, first_name = ?, last_name = ?, image_url = ?, last_modified_date = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Email(),
		nullString(user.FirstName()),
		nullString(user.LastName()),
		nullString(user.ImageURL()),
		now.UnixMilli(),
		user.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, user.ID())
	}

	user.SetLastModified(&now)
	return nil
}

// UpdateIfNewer overwrites the profile of the user stored under user's email,
// but only while its last-modified time is absent or strictly before modified.
//
// It reports whether a row was written. A false result means the stored record is
// at least as new as modified, or no longer exists.
func (r *UserRepository) UpdateIfNewer(ctx context.Context, user *models.User, modified time.Time) (bool, error) {
	if err := user.Validate(); err != nil {
		return false, err
	}

	now := stamp()

	query := `
		UPDATE users
		SET first_name = ?, last_name = ?, image_url = ?, last_modified_date = ?
		WHERE email = ? AND (last_modified_date IS NULL OR last_modified_date < ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullString(user.FirstName()),
		nullString(user.LastName()),
		nullString(user.ImageURL()),
		now.UnixMilli(),
		user.Email(),
		modified.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", mapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	user.SetLastModified(&now)
	return true, nil
}

// Delete removes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all users matching the given criteria ordered by sequence.
//
// Supported criteria: "email" (exact match).
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1 = 1`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// prepare assigns a sequence and ID and validates user before insertion.
func (r *UserRepository) prepare(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(ctx, r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	user.SetID(shared.GenerateID())
	user.SetSequence(sequence)
	if user.LastModified() == nil {
		now := stamp()
		user.SetLastModified(&now)
	}
	return nil
}

func (r *UserRepository) args(user *models.User) []any {
	return []any{
		user.ID(),
		user.Sequence(),
		user.Email(),
		nullString(user.FirstName()),
		nullString(user.LastName()),
		nullString(user.ImageURL()),
		user.CreatedAt().UTC(),
		nullMillis(user.LastModified()),
	}
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		id           string
		sequence     int
		email        string
		firstName    sql.NullString
		lastName     sql.NullString
		imageURL     sql.NullString
		createdAt    time.Time
		lastModified sql.NullInt64
	)

	err := row.Scan(&id, &sequence, &email, &firstName, &lastName, &imageURL, &createdAt, &lastModified)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(email)
	user.SetID(id)
	user.SetSequence(sequence)
	user.SetFirstName(firstName.String)
	user.SetLastName(lastName.String)
	user.SetImageURL(imageURL.String)
	user.SetCreatedAt(createdAt)
	user.SetLastModified(fromMillis(lastModified))

	return user, nil
}
