package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// TechniqueSheet is a stored form snapshot. Data carries the full sheet JSON
// exactly as the frontend submitted it; the calculation engines never read
// storage themselves.
type TechniqueSheet struct {
	ID        string          `json:"id"`
	UserID    int             `json:"user_id"`
	Title     string          `json:"title"`
	Standard  string          `json:"standard"`
	Status    string          `json:"status"` // draft | submitted | approved | rejected
	Data      json.RawMessage `json:"data,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ReviewTicket struct {
	ID      int    `json:"id"`
	SheetID string `json:"sheet_id"`
	UserID  int    `json:"user_id"`
	Status  string `json:"status"` // pending | approved | rejected
}

type Profile struct {
	ID            int    `json:"id"`
	Login         string `json:"login"`
	Email         string `json:"email"`
	Certification string `json:"certification"`
	CertExpiry    string `json:"cert_expiry"`
	StampURL      string `json:"stamp_url"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)

	GetProfileByID(ctx context.Context, id int) (Profile, error)
	UpdateProfile(ctx context.Context, id int, login, certification, certExpiry string) error
	UpdateStamp(ctx context.Context, id int, stampURL string) error

	SaveSheet(ctx context.Context, s TechniqueSheet) error
	GetSheet(ctx context.Context, id string, userID int) (TechniqueSheet, error)
	ListSheets(ctx context.Context, userID int) ([]TechniqueSheet, error)
	SetSheetStatus(ctx context.Context, id, status string) error

	CreateReviewTicket(ctx context.Context, sheetID string, userID int) (int, error)
	GetReviewTicket(ctx context.Context, id int) (ReviewTicket, error)
	UpdateReviewTicketStatus(ctx context.Context, id int, status string) error
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) GetProfileByID(ctx context.Context, id int) (Profile, error) {
	var p Profile
	var cert, expiry, stamp sql.NullString
	query := "SELECT id, login, email, certification, cert_expiry, stamp_url FROM users WHERE id=$1"
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Login, &p.Email, &cert, &expiry, &stamp)
	if err != nil {
		return Profile{}, err
	}
	p.Certification = cert.String
	p.CertExpiry = expiry.String
	p.StampURL = stamp.String
	return p, nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id int, login, certification, certExpiry string) error {
	query := "UPDATE users SET login=COALESCE(NULLIF($2,''), login), certification=$3, cert_expiry=$4 WHERE id=$1"
	_, err := r.db.ExecContext(ctx, query, id, login, certification, certExpiry)
	return err
}

func (r *PostgresUserRepository) UpdateStamp(ctx context.Context, id int, stampURL string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET stamp_url=$2 WHERE id=$1", id, stampURL)
	return err
}

func (r *PostgresUserRepository) SaveSheet(ctx context.Context, s TechniqueSheet) error {
	query := `INSERT INTO technique_sheets (id, user_id, title, standard, status, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET title=$3, standard=$4, status=$5, data=$6, updated_at=now()`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.Title, s.Standard, s.Status, []byte(s.Data))
	return err
}

func (r *PostgresUserRepository) GetSheet(ctx context.Context, id string, userID int) (TechniqueSheet, error) {
	var s TechniqueSheet
	var data []byte
	query := "SELECT id, user_id, title, standard, status, data, updated_at FROM technique_sheets WHERE id=$1 AND user_id=$2"
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&s.ID, &s.UserID, &s.Title, &s.Standard, &s.Status, &data, &s.UpdatedAt)
	if err != nil {
		return TechniqueSheet{}, err
	}
	s.Data = json.RawMessage(data)
	return s, nil
}

func (r *PostgresUserRepository) ListSheets(ctx context.Context, userID int) ([]TechniqueSheet, error) {
	query := "SELECT id, user_id, title, standard, status, updated_at FROM technique_sheets WHERE user_id=$1 ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []TechniqueSheet
	for rows.Next() {
		var s TechniqueSheet
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Standard, &s.Status, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}

func (r *PostgresUserRepository) SetSheetStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE technique_sheets SET status=$2, updated_at=now() WHERE id=$1", id, status)
	return err
}

func (r *PostgresUserRepository) CreateReviewTicket(ctx context.Context, sheetID string, userID int) (int, error) {
	var id int
	query := "INSERT INTO review_tickets (sheet_id, user_id, status) VALUES ($1, $2, 'pending') RETURNING id"
	err := r.db.QueryRowContext(ctx, query, sheetID, userID).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetReviewTicket(ctx context.Context, id int) (ReviewTicket, error) {
	var t ReviewTicket
	query := "SELECT id, sheet_id, user_id, status FROM review_tickets WHERE id=$1"
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.SheetID, &t.UserID, &t.Status)
	return t, err
}

func (r *PostgresUserRepository) UpdateReviewTicketStatus(ctx context.Context, id int, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE review_tickets SET status=$2 WHERE id=$1", id, status)
	return err
}
