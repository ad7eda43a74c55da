package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"reelcache/models"
)

// RecordRepository persists resolved media records and the genre directory.
// All writes are full-document replacements; last writer wins.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// GetRecord returns the record for id, or nil when absent.
func (r *RecordRepository) GetRecord(id string) (*models.MediaRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, kind, title, overview, poster_url, backdrop_url, rating, release_date, genres, refreshed_at
		FROM media_records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

// UpsertRecord inserts or fully replaces the record keyed by its ID.
func (r *RecordRepository) UpsertRecord(rec models.MediaRecord) error {
	genres, err := json.Marshal(rec.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO media_records (id, kind, title, overview, poster_url, backdrop_url, rating, release_date, genres, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			overview = excluded.overview,
			poster_url = excluded.poster_url,
			backdrop_url = excluded.backdrop_url,
			rating = excluded.rating,
			release_date = excluded.release_date,
			genres = excluded.genres,
			refreshed_at = excluded.refreshed_at`,
		rec.ID, string(rec.Kind),
		nullString(rec.Title), nullString(rec.Overview),
		nullString(rec.PosterURL), nullString(rec.BackdropURL),
		nullFloat(rec.Rating), nullString(rec.ReleaseDate),
		string(genres), rec.RefreshedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.ID, err)
	}
	return nil
}

// SearchByTitle returns up to limit records whose title contains the given
// substring, case-insensitively. No ranking beyond storage order.
func (r *RecordRepository) SearchByTitle(substring string, limit int) ([]models.MediaRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`
		SELECT id, kind, title, overview, poster_url, backdrop_url, rating, release_date, genres, refreshed_at
		FROM media_records
		WHERE title IS NOT NULL AND lower(title) LIKE '%' || lower(?) || '%'
		LIMIT ?`, substring, limit)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	var records []models.MediaRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("search records: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	return records, nil
}

// GenreDirectory returns the stored genre mapping and when it was refreshed.
// An absent directory yields an empty map and zero time.
func (r *RecordRepository) GenreDirectory() (map[int64]string, time.Time, error) {
	var refreshedAt time.Time
	err := r.db.QueryRow(`SELECT refreshed_at FROM genre_directory_meta WHERE id = 1`).Scan(&refreshedAt)
	if err == sql.ErrNoRows {
		return map[int64]string{}, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get genre directory meta: %w", err)
	}

	rows, err := r.db.Query(`SELECT genre_id, name FROM genre_directory`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get genre directory: %w", err)
	}
	defer rows.Close()

	genres := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, time.Time{}, fmt.Errorf("get genre directory: %w", err)
		}
		genres[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("get genre directory: %w", err)
	}
	return genres, refreshedAt, nil
}

// ReplaceGenreDirectory swaps the whole directory in one transaction so
// readers never observe a partial refresh.
func (r *RecordRepository) ReplaceGenreDirectory(genres map[int64]string, refreshedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("replace genre directory: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM genre_directory`); err != nil {
		return fmt.Errorf("replace genre directory: %w", err)
	}
	for id, name := range genres {
		if _, err := tx.Exec(`INSERT INTO genre_directory (genre_id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("replace genre directory: %w", err)
		}
	}
	if _, err := tx.Exec(`
		INSERT INTO genre_directory_meta (id, refreshed_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET refreshed_at = excluded.refreshed_at`, refreshedAt.UTC()); err != nil {
		return fmt.Errorf("replace genre directory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace genre directory: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.MediaRecord, error) {
	var (
		rec         models.MediaRecord
		kind        string
		title       sql.NullString
		overview    sql.NullString
		posterURL   sql.NullString
		backdropURL sql.NullString
		rating      sql.NullFloat64
		releaseDate sql.NullString
		genres      string
	)
	if err := row.Scan(&rec.ID, &kind, &title, &overview, &posterURL, &backdropURL,
		&rating, &releaseDate, &genres, &rec.RefreshedAt); err != nil {
		return nil, err
	}
	rec.Kind = models.Kind(kind)
	rec.Title = title.String
	rec.Overview = overview.String
	rec.PosterURL = posterURL.String
	rec.BackdropURL = backdropURL.String
	if rating.Valid {
		v := rating.Float64
		rec.Rating = &v
	}
	rec.ReleaseDate = releaseDate.String
	if err := json.Unmarshal([]byte(genres), &rec.Genres); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}
	return &rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
