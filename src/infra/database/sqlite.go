package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/contre95/ferrum/src/music"
	"github.com/mattn/go-sqlite3"
)

// SqliteCatalog is a SQLite implementation of the Catalog interface.
type SqliteCatalog struct {
	db *sql.DB
}

// NewSqliteCatalog opens or creates the catalog file at path and applies the
// schema. The caller owns the handle and releases it with Close.
func NewSqliteCatalog(path string) (*SqliteCatalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, wrapErr("open catalog", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, wrapErr("open catalog", err)
	}

	return &SqliteCatalog{db: db}, nil
}

// createTables applies the catalog schema. Reapplying it on an existing file
// is a no-op.
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS "tracks" (
			"id"           INTEGER NOT NULL UNIQUE,
			"title"        TEXT,
			"artist"       TEXT,
			"genre"        TEXT,
			"album"        TEXT,
			"album_artist" TEXT,
			"disc"         TEXT,
			"disc_total"   TEXT,
			"track"        TEXT,
			"track_total"  TEXT,
			"duration"     INTEGER,
			"modified"     TEXT,
			"path"         TEXT NOT NULL,
			PRIMARY KEY("id" AUTOINCREMENT)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS "track_file" ON "tracks" ("path");
	`)
	return err
}

// Close releases the underlying database handle.
func (d *SqliteCatalog) Close() error {
	return d.db.Close()
}

const trackColumns = `"id", "path", "modified", "title", "artist", "genre", "album", "album_artist", "disc", "disc_total", "track", "track_total", "duration"`

// UpsertTrack adds a track to the catalog, or overwrites every column except
// id and path when the path is already stored. The row id is returned and
// written back to the track.
func (d *SqliteCatalog) UpsertTrack(ctx context.Context, track *music.Track) (int64, error) {
	// Validate track using domain validation
	if err := track.Validate(); err != nil {
		slog.Error("UpsertTrack: validation failed", "error", err, "path", track.Path)
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr("upsert track", err)
	}
	defer tx.Rollback()

	id, err := upsertTrackTx(ctx, tx, track)
	if err != nil {
		return 0, wrapErr("upsert track", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapErr("upsert track", err)
	}

	track.ID = id
	return id, nil
}

// UpsertTracks stores the batch inside a single transaction and returns the
// number of rows written. Any failure rolls the whole batch back.
func (d *SqliteCatalog) UpsertTracks(ctx context.Context, tracks []*music.Track) (int, error) {
	if len(tracks) == 0 {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr("upsert tracks", err)
	}
	defer tx.Rollback()

	stored := 0
	for _, track := range tracks {
		if err := track.Validate(); err != nil {
			slog.Error("UpsertTracks: validation failed", "error", err, "path", track.Path)
			return 0, err
		}
		id, err := upsertTrackTx(ctx, tx, track)
		if err != nil {
			return 0, wrapErr("upsert tracks", err)
		}
		track.ID = id
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapErr("upsert tracks", err)
	}
	return stored, nil
}

// upsertTrackTx runs the single upsert statement. The id comes back from the
// RETURNING clause for both the insert and the conflict-update arm.
func upsertTrackTx(ctx context.Context, tx *sql.Tx, track *music.Track) (int64, error) {
	var modified any
	if track.Modified != nil {
		modified = track.Modified.Format(time.RFC3339)
	}

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO "tracks" ("path", "modified", "title", "artist", "genre", "album", "album_artist", "track", "track_total", "disc", "disc_total", "duration")
		VALUES (:path, :modified, :title, :artist, :genre, :album, :album_artist, :track, :track_total, :disc, :disc_total, :duration)
		ON CONFLICT("path") DO UPDATE SET
			"modified"     = :modified,
			"title"        = :title,
			"artist"       = :artist,
			"genre"        = :genre,
			"album"        = :album,
			"album_artist" = :album_artist,
			"track"        = :track,
			"track_total"  = :track_total,
			"disc"         = :disc,
			"disc_total"   = :disc_total,
			"duration"     = :duration
		RETURNING "id"
	`,
		sql.Named("path", track.Path),
		sql.Named("modified", modified),
		sql.Named("title", track.Title),
		sql.Named("artist", track.Artist),
		sql.Named("genre", track.Genre),
		sql.Named("album", track.Album),
		sql.Named("album_artist", track.AlbumArtist),
		sql.Named("track", track.Track),
		sql.Named("track_total", track.TrackTotal),
		sql.Named("disc", track.Disc),
		sql.Named("disc_total", track.DiscTotal),
		sql.Named("duration", track.Duration),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetAllTracks returns the whole catalog ordered by album, then disc and
// track number compared as integers. Disc or track text that is not numeric
// casts to zero and sorts first.
func (d *SqliteCatalog) GetAllTracks(ctx context.Context) ([]*music.Track, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM "tracks"
		ORDER BY "album" ASC, CAST("disc" AS INTEGER) ASC, CAST("track" AS INTEGER) ASC, "id" ASC
	`)
	if err != nil {
		return nil, wrapErr("get all tracks", err)
	}
	defer rows.Close()

	tracks := []*music.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("get all tracks: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get all tracks", err)
	}

	return tracks, nil
}

// GetTrack returns the track with the given id.
func (d *SqliteCatalog) GetTrack(ctx context.Context, id int64) (*music.Track, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM "tracks" WHERE "id" = ?`, id)
	track, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("track %d: %w", id, music.ErrTrackNotFound)
		}
		return nil, fmt.Errorf("get track: %w", err)
	}
	return track, nil
}

// FindTrackByPath returns the track stored under the given file path.
func (d *SqliteCatalog) FindTrackByPath(ctx context.Context, path string) (*music.Track, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM "tracks" WHERE "path" = ?`, path)
	track, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("track %s: %w", path, music.ErrTrackNotFound)
		}
		return nil, fmt.Errorf("find track by path: %w", err)
	}
	return track, nil
}

// GetTrackPaths maps every stored path to its id and modified stamp, so the
// scanner can decide which files need re-reading.
func (d *SqliteCatalog) GetTrackPaths(ctx context.Context) (map[string]music.TrackStamp, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT "path", "id", "modified" FROM "tracks"`)
	if err != nil {
		return nil, wrapErr("get track paths", err)
	}
	defer rows.Close()

	stamps := make(map[string]music.TrackStamp)
	for rows.Next() {
		var (
			path     string
			id       int64
			modified sql.NullString
		)
		if err := rows.Scan(&path, &id, &modified); err != nil {
			return nil, fmt.Errorf("get track paths: %w: %w", err, music.ErrSchemaMismatch)
		}
		stamps[path] = music.TrackStamp{ID: id, Modified: parseModified(modified)}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get track paths", err)
	}

	return stamps, nil
}

// RemoveMissing deletes rows whose file no longer exists on disk and returns
// how many were removed.
func (d *SqliteCatalog) RemoveMissing(ctx context.Context) (int, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT "id", "path" FROM "tracks"`)
	if err != nil {
		return 0, wrapErr("remove missing", err)
	}
	defer rows.Close()

	var stale []int64
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			return 0, fmt.Errorf("remove missing: %w: %w", err, music.ErrSchemaMismatch)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, wrapErr("remove missing", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr("remove missing", err)
	}
	defer tx.Rollback()

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM "tracks" WHERE "id" = ?`, id); err != nil {
			return 0, wrapErr("remove missing", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapErr("remove missing", err)
	}

	slog.Debug("removed stale tracks from catalog", "count", len(stale))
	return len(stale), nil
}

// GetTracksCount returns the number of stored tracks.
func (d *SqliteCatalog) GetTracksCount(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "tracks"`).Scan(&count)
	if err != nil {
		return 0, wrapErr("get tracks count", err)
	}
	return count, nil
}

// GetStats aggregates catalog totals and the genre, album artist and file
// extension distributions.
func (d *SqliteCatalog) GetStats(ctx context.Context) (*music.LibraryStats, error) {
	stats := &music.LibraryStats{}

	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT "artist"),
		       COUNT(DISTINCT "album"),
		       COUNT(DISTINCT "genre"),
		       COALESCE(SUM(MAX("duration", 0)), 0)
		FROM "tracks"
	`).Scan(&stats.TotalTracks, &stats.TotalArtists, &stats.TotalAlbums, &stats.TotalGenres, &stats.TotalSeconds)
	if err != nil {
		return nil, wrapErr("get stats", err)
	}

	if stats.Genres, err = d.distribution(ctx, "genre"); err != nil {
		return nil, err
	}
	if stats.AlbumArtists, err = d.distribution(ctx, "album_artist"); err != nil {
		return nil, err
	}
	if stats.Extensions, err = d.extensionDistribution(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

// distribution groups tracks by the given column, with NULL bucketed as
// "Unknown".
func (d *SqliteCatalog) distribution(ctx context.Context, column string) ([]music.StatCount, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT COALESCE(%q, 'Unknown') AS name, COUNT(*) AS count
		FROM "tracks"
		GROUP BY %q
		ORDER BY count DESC, name ASC
	`, column, column))
	if err != nil {
		return nil, wrapErr("get "+column+" distribution", err)
	}
	defer rows.Close()

	var counts []music.StatCount
	for rows.Next() {
		var c music.StatCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("get %s distribution: %w: %w", column, err, music.ErrSchemaMismatch)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get "+column+" distribution", err)
	}

	return counts, nil
}

// extensionDistribution counts tracks by file extension, derived from the
// stored paths.
func (d *SqliteCatalog) extensionDistribution(ctx context.Context) ([]music.StatCount, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT "path" FROM "tracks"`)
	if err != nil {
		return nil, wrapErr("get extension distribution", err)
	}
	defer rows.Close()

	byExt := make(map[string]int)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("get extension distribution: %w: %w", err, music.ErrSchemaMismatch)
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if ext == "" {
			ext = "none"
		}
		byExt[ext]++
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get extension distribution", err)
	}

	counts := make([]music.StatCount, 0, len(byExt))
	for ext, count := range byExt {
		counts = append(counts, music.StatCount{Name: ext, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})

	return counts, nil
}

// scanTrack reads one catalog row in trackColumns order.
func scanTrack(row interface{ Scan(dest ...any) error }) (*music.Track, error) {
	var (
		track       music.Track
		modified    sql.NullString
		title       sql.NullString
		artist      sql.NullString
		genre       sql.NullString
		album       sql.NullString
		albumArtist sql.NullString
		disc        sql.NullString
		discTotal   sql.NullString
		trackNumber sql.NullString
		trackTotal  sql.NullString
		duration    sql.NullInt64
	)
	err := row.Scan(&track.ID, &track.Path, &modified, &title, &artist, &genre, &album,
		&albumArtist, &disc, &discTotal, &trackNumber, &trackTotal, &duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan track row: %w: %w", err, music.ErrSchemaMismatch)
	}

	track.Modified = parseModified(modified)
	track.Title = nullableString(title)
	track.Artist = nullableString(artist)
	track.Genre = nullableString(genre)
	track.Album = nullableString(album)
	track.AlbumArtist = nullableString(albumArtist)
	track.Disc = nullableString(disc)
	track.DiscTotal = nullableString(discTotal)
	track.Track = nullableString(trackNumber)
	track.TrackTotal = nullableString(trackTotal)
	if duration.Valid {
		secs := duration.Int64
		if secs < 0 {
			secs = 0
		}
		track.Duration = &secs
	}

	return &track, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// parseModified maps stored timestamp text to a time. Text that does not
// parse as RFC3339 reads as nil, which the scanner treats as stale.
func parseModified(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}

// wrapErr classifies a driver error into the catalog error taxonomy, keeping
// the driver error in the chain.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%s: %w: %w", op, err, music.ErrConstraintViolation)
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrReadonly,
			sqlite3.ErrIoErr, sqlite3.ErrFull, sqlite3.ErrNotADB, sqlite3.ErrCorrupt,
			sqlite3.ErrPerm, sqlite3.ErrNomem:
			return fmt.Errorf("%s: %w: %w", op, err, music.ErrStorageUnavailable)
		case sqlite3.ErrError, sqlite3.ErrSchema:
			return fmt.Errorf("%s: %w: %w", op, err, music.ErrSchemaMismatch)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
