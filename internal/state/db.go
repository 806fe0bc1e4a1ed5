package state

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB implements Store over database/sql. The same queries run against
// SQLite and PostgreSQL; placeholders are rebound per dialect.
type DB struct {
	db      *sql.DB
	dialect string // "sqlite" or "postgres"
}

// Open connects to the database named by url. postgres:// and
// postgresql:// URLs go to PostgreSQL (the postgres:// spelling some
// hosts hand out is accepted); anything else is treated as a SQLite
// path, with ":memory:" for an in-memory database.
func Open(url string) (*DB, error) {
	var driver, dsn, dialect string
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		driver, dialect = "pgx", "postgres"
		dsn = strings.Replace(url, "postgres://", "postgresql://", 1)
	default:
		driver, dialect = "sqlite", "sqlite"
		dsn = url
		if url != ":memory:" {
			dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", url)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}
	if dialect == "sqlite" {
		// A single writer avoids SQLITE_BUSY under the HTTP server.
		db.SetMaxOpenConns(1)
	}
	return &DB{db: db, dialect: dialect}, nil
}

// NewWithDB wraps an existing connection; used by tests.
func NewWithDB(db *sql.DB, dialect string) *DB {
	return &DB{db: db, dialect: dialect}
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// q rebinds ? placeholders to $N for PostgreSQL.
func (d *DB) q(query string) string {
	if d.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newID() string {
	return uuid.New().String()
}

// CreateUser registers an account with the signup bonus.
func (d *DB) CreateUser(email, hashedPassword, fullName string) (*User, error) {
	if _, err := d.GetUserByEmail(email); err == nil {
		return nil, ErrDuplicateEmail
	}

	u := &User{
		ID:             newID(),
		Email:          email,
		HashedPassword: hashedPassword,
		FullName:       fullName,
		Coins:          SignupBonusCoins,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := d.db.Exec(
		d.q(`INSERT INTO users (id, email, hashed_password, full_name, coins, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.HashedPassword, u.FullName, u.Coins, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (d *DB) scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.Coins, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(id string) (*User, error) {
	return d.scanUser(d.db.QueryRow(
		d.q(`SELECT id, email, hashed_password, full_name, coins, created_at FROM users WHERE id = ?`), id))
}

// GetUserByEmail retrieves a user by email.
func (d *DB) GetUserByEmail(email string) (*User, error) {
	return d.scanUser(d.db.QueryRow(
		d.q(`SELECT id, email, hashed_password, full_name, coins, created_at FROM users WHERE email = ?`), email))
}

// SpendCoins deducts amount from the user's balance. Fails with
// ErrInsufficientCoins when the balance cannot cover it; the update is a
// single guarded statement so concurrent spends cannot overdraw.
func (d *DB) SpendCoins(userID string, amount int) (*User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	res, err := d.db.Exec(
		d.q(`UPDATE users SET coins = coins - ? WHERE id = ? AND coins >= ?`),
		amount, userID, amount,
	)
	if err != nil {
		return nil, fmt.Errorf("spend coins: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("spend coins: %w", err)
	}
	if affected == 0 {
		if _, err := d.GetUser(userID); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientCoins
	}
	return d.GetUser(userID)
}

// AddCoins credits the user's balance.
func (d *DB) AddCoins(userID string, amount int) (*User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	res, err := d.db.Exec(d.q(`UPDATE users SET coins = coins + ? WHERE id = ?`), amount, userID)
	if err != nil {
		return nil, fmt.Errorf("add coins: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("add coins: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return d.GetUser(userID)
}

// SaveChart persists a chart record, assigning ID and CreatedAt when
// unset.
func (d *DB) SaveChart(rec *ChartRecord) error {
	if rec.ID == "" {
		rec.ID = newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := d.db.Exec(
		d.q(`INSERT INTO charts (id, user_id, name, birth_date, birth_time, latitude, longitude, data, created_at)
		     VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, nullable(rec.UserID), rec.Name, rec.Date, rec.Time,
		rec.Latitude, rec.Longitude, string(rec.Data), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// GetChart retrieves a saved chart by ID.
func (d *DB) GetChart(id string) (*ChartRecord, error) {
	rec := &ChartRecord{}
	var userID sql.NullString
	err := d.db.QueryRow(
		d.q(`SELECT id, user_id, name, birth_date, birth_time, latitude, longitude, data, created_at
		     FROM charts WHERE id = ?`), id,
	).Scan(&rec.ID, &userID, &rec.Name, &rec.Date, &rec.Time,
		&rec.Latitude, &rec.Longitude, &rec.Data, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chart: %w", err)
	}
	rec.UserID = userID.String
	return rec, nil
}

// ListCharts returns a user's saved charts, newest first. An empty
// userID lists unowned charts.
func (d *DB) ListCharts(userID string) ([]*ChartRecord, error) {
	query := `SELECT id, user_id, name, birth_date, birth_time, latitude, longitude, data, created_at
	          FROM charts WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if userID == "" {
		query = `SELECT id, user_id, name, birth_date, birth_time, latitude, longitude, data, created_at
		         FROM charts WHERE user_id IS NULL ORDER BY created_at DESC`
		args = nil
	}

	rows, err := d.db.Query(d.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer rows.Close()

	var out []*ChartRecord
	for rows.Next() {
		rec := &ChartRecord{}
		var uid sql.NullString
		if err := rows.Scan(&rec.ID, &uid, &rec.Name, &rec.Date, &rec.Time,
			&rec.Latitude, &rec.Longitude, &rec.Data, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		rec.UserID = uid.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveReading persists an interpretation, assigning ID and CreatedAt
// when unset.
func (d *DB) SaveReading(r *Reading) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := d.db.Exec(
		d.q(`INSERT INTO readings (id, chart_id, report_type, content, created_at) VALUES (?, ?, ?, ?, ?)`),
		r.ID, r.ChartID, r.ReportType, r.Content, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save reading: %w", err)
	}
	return nil
}

// ListReadings returns a chart's readings, newest first.
func (d *DB) ListReadings(chartID string) ([]*Reading, error) {
	rows, err := d.db.Query(
		d.q(`SELECT id, chart_id, report_type, content, created_at FROM readings WHERE chart_id = ? ORDER BY created_at DESC`),
		chartID,
	)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var out []*Reading
	for rows.Next() {
		r := &Reading{}
		if err := rows.Scan(&r.ID, &r.ChartID, &r.ReportType, &r.Content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
