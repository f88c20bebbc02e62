package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"trip_planner/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// hotelParams is the number of placeholders per hotel row; MySQL caps a
// statement at 65535 placeholders.
const (
	hotelParams    = 11
	hotelChunkRows = 1000
)

// UpsertHotels writes hs in multi-row statements of at most hotelChunkRows.
// Chunks are independent; an error names the failing row range and earlier
// chunks stay written.
func (r *Repo) UpsertHotels(ctx context.Context, hs []domain.HotelRecord) error {
	for start := 0; start < len(hs); start += hotelChunkRows {
		end := min(start+hotelChunkRows, len(hs))
		if err := r.upsertHotelChunk(ctx, hs[start:end]); err != nil {
			return fmt.Errorf("upsert hotels %d-%d of %d: %w", start, end, len(hs), err)
		}
	}
	return nil
}

func (r *Repo) upsertHotelChunk(ctx context.Context, hs []domain.HotelRecord) error {
	values := make([]string, 0, len(hs))
	args := make([]any, 0, len(hs)*hotelParams)
	for _, h := range hs {
		amen, err := json.Marshal(h.Amenities)
		if err != nil {
			return fmt.Errorf("hotel %s amenities: %w", h.ID, err)
		}
		var lat, lon any
		if h.Geo != nil {
			lat, lon = h.Geo.Lat, h.Geo.Lon
		}
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			h.ID,
			h.CityCode,
			h.Name,
			h.Address,
			h.Rating,
			string(amen),
			h.Price,
			lat,
			lon,
			valTime(h.LastUpdate),
			valJSON(h.RawJSON),
		)
	}
	_, err := r.db.ExecContext(ctx, insertHotelsPrefix+strings.Join(values, ",")+upsertHotelsOnDup, args...)
	return err
}

func (r *Repo) ListHotelsByCity(ctx context.Context, cityCode string) ([]domain.HotelRecord, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsByCitySQL, cityCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelRecord
	for rows.Next() {
		var h domain.HotelRecord
		var (
			amenities, raw []byte
			lat, lon       sql.NullFloat64
			lastUpdate     sql.NullTime
		)
		if err := rows.Scan(
			&h.ID,
			&h.CityCode,
			&h.Name,
			&h.Address,
			&h.Rating,
			&amenities,
			&h.Price,
			&lat, &lon,
			&lastUpdate,
			&raw,
		); err != nil {
			return nil, err
		}
		h.Amenities = []string{}
		if len(amenities) > 0 {
			_ = json.Unmarshal(amenities, &h.Amenities)
		}
		if lat.Valid && lon.Valid {
			h.Geo = &domain.Coords{Lat: lat.Float64, Lon: lon.Float64}
		}
		if lastUpdate.Valid {
			t := lastUpdate.Time
			h.LastUpdate = &t
		}
		if len(raw) > 0 {
			h.RawJSON = raw
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) SaveTrip(ctx context.Context, t domain.Trip) (int64, error) {
	enrichment, err := json.Marshal(t.Enrichment)
	if err != nil {
		return 0, err
	}
	itin, err := t.Itinerary.MarshalJSON()
	if err != nil {
		return 0, err
	}
	prefs := t.Preferences
	if len(prefs) == 0 {
		prefs = json.RawMessage(`{}`)
	}
	res, err := r.db.ExecContext(ctx, insertTripSQL,
		valStr(t.OwnerID),
		t.Title,
		valStr(t.Description),
		t.Public,
		string(prefs),
		string(itin),
		string(enrichment),
		t.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) GetTrip(ctx context.Context, id int64) (domain.Trip, error) {
	t, err := scanTrip(r.db.QueryRowContext(ctx, getTripSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, err
}

// ListTripsByOwner returns the owner's newest trips first, at most limit.
func (r *Repo) ListTripsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Trip, error) {
	rows, err := r.db.QueryContext(ctx, listTripsByOwnerSQL, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (domain.Trip, error) {
	var (
		t                     domain.Trip
		owner, desc           sql.NullString
		prefs, itin, enriched []byte
	)
	if err := row.Scan(
		&t.ID,
		&owner,
		&t.Title,
		&desc,
		&t.Public,
		&prefs,
		&itin,
		&enriched,
		&t.CreatedAt,
	); err != nil {
		return domain.Trip{}, err
	}

	t.OwnerID = owner.String
	t.Description = desc.String
	t.Preferences = prefs
	var err error
	if t.Itinerary, err = domain.NewItinerary(itin); err != nil {
		return domain.Trip{}, fmt.Errorf("trip %d itinerary: %w", t.ID, err)
	}
	if len(enriched) > 0 {
		if err := json.Unmarshal(enriched, &t.Enrichment); err != nil {
			return domain.Trip{}, fmt.Errorf("trip %d enrichment: %w", t.ID, err)
		}
	}
	return t, nil
}
