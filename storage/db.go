package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"sourcing/config"
	"sourcing/models"
)

// DefaultQueryTimeout bounds every single-statement query.
const DefaultQueryTimeout = 30 * time.Second

// InitDB opens the lib/pq pool used for the raw SQL collections.
func InitDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Light server load: a small pool is enough.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Postgres is the production Store. Core sourcing collections and auth go
// through database/sql; workspace collections go through gorm.
type Postgres struct {
	db  *sql.DB
	orm *gorm.DB
}

func NewPostgres(db *sql.DB, orm *gorm.DB) *Postgres {
	return &Postgres{db: db, orm: orm}
}

func queryContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, DefaultQueryTimeout)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, first_name, last_name, company, is_admin, suspended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, strings.ToLower(user.Email), user.Password, user.FirstName, user.LastName,
		user.Company, user.IsAdmin, user.Suspended, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

const userColumns = `id, email, password, first_name, last_name, company, is_admin, suspended, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.Company, &u.IsAdmin, &u.Suspended, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()
	return scanUser(p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()
	return scanUser(p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (p *Postgres) SaveSession(ctx context.Context, session *models.Session) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_id, host_name, ip_address, timestp, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		session.SessionID, session.UserID, session.HostName, session.IPAddress, session.Timestamp, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}
	return nil
}

func (p *Postgres) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var s models.Session
	err := p.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, host_name, ip_address, timestp, expires_at
		FROM sessions WHERE session_id = $1 AND expires_at > NOW()`, sessionID).
		Scan(&s.SessionID, &s.UserID, &s.HostName, &s.IPAddress, &s.Timestamp, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &s, nil
}

func (p *Postgres) CountActiveSessions(ctx context.Context, userID string) (int, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var count int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND expires_at > NOW()`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (p *Postgres) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectOneRow(res)
}

func (p *Postgres) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
