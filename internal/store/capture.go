package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested capture does not exist.
var ErrNotFound = errors.New("not found")

// Capture is one saved measurement.
type Capture struct {
	ID           string    `json:"id"`
	WidthIn      float64   `json:"width_in"`
	HeightIn     float64   `json:"height_in"`
	SizeCategory int       `json:"size_category"`
	Trigger      string    `json:"trigger"`
	ImagePath    string    `json:"image_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// CaptureRepository provides access to the capture history.
type CaptureRepository struct {
	db *sql.DB
}

// Captures returns the capture repository for this store.
func (s *Store) Captures() *CaptureRepository {
	return &CaptureRepository{db: s.db}
}

const captureColumns = `id, width_in, height_in, size_category, trigger, image_path, created_at`

// Create inserts c, assigning an ID and timestamp when they are unset.
func (r *CaptureRepository) Create(c *Capture) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO captures (`+captureColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.WidthIn, c.HeightIn, c.SizeCategory, c.Trigger, c.ImagePath, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert capture: %w", err)
	}

	return nil
}

// GetByID retrieves a capture by its ID.
func (r *CaptureRepository) GetByID(id string) (*Capture, error) {
	row := r.db.QueryRow(`SELECT `+captureColumns+` FROM captures WHERE id = ?`, id)
	return scanCapture(row)
}

// Latest returns the most recent capture.
func (r *CaptureRepository) Latest() (*Capture, error) {
	row := r.db.QueryRow(`SELECT ` + captureColumns + ` FROM captures ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	return scanCapture(row)
}

// List returns captures newest first. A limit of zero or less returns all.
func (r *CaptureRepository) List(limit int) ([]*Capture, error) {
	query := `SELECT ` + captureColumns + ` FROM captures ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		captures = append(captures, c)
	}

	return captures, rows.Err()
}

// Delete removes a capture by its ID.
func (r *CaptureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCapture(s scanner) (*Capture, error) {
	c := &Capture{}
	err := s.Scan(&c.ID, &c.WidthIn, &c.HeightIn, &c.SizeCategory, &c.Trigger, &c.ImagePath, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
