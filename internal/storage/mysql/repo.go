package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"wildtrail/internal/domain"
)

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

/********** catalog **********/

// details holds whichever kind-specific payload the item carries.
func details(it domain.CatalogItem) any {
	switch it.Kind {
	case domain.KindTour:
		return it.Tour
	case domain.KindHotel:
		return it.Hotel
	default:
		return it.Activity
	}
}

func (r *Repo) UpsertItem(ctx context.Context, it domain.CatalogItem, raw []byte) error {
	imgs, err := json.Marshal(it.Images)
	if err != nil {
		return fmt.Errorf("encode images %s/%s: %w", it.Tab, it.ID, err)
	}
	det, err := json.Marshal(details(it))
	if err != nil {
		return fmt.Errorf("encode details %s/%s: %w", it.Tab, it.ID, err)
	}
	price := it.PriceQuote()
	_, err = r.db.ExecContext(ctx, upsertItemSQL,
		string(it.Tab),
		it.ID,
		string(it.Kind),
		it.Title,
		it.Location,
		it.Region,
		it.Category,
		it.Rating,
		it.ReviewCount,
		price.Amount,
		price.Currency,
		string(imgs),
		string(det),
		valJSON(raw),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (domain.CatalogItem, error) {
	var (
		it          domain.CatalogItem
		tab, kind   string
		imgs, detJS []byte
	)
	if err := s.Scan(&tab, &it.ID, &kind, &it.Title, &it.Location, &it.Region,
		&it.Category, &it.Rating, &it.ReviewCount, &imgs, &detJS); err != nil {
		return domain.CatalogItem{}, err
	}
	it.Tab, it.Kind = domain.Tab(tab), domain.ItemKind(kind)
	if len(imgs) > 0 {
		if err := json.Unmarshal(imgs, &it.Images); err != nil {
			return domain.CatalogItem{}, fmt.Errorf("decode images %s/%s: %w", tab, it.ID, err)
		}
	}

	var err error
	switch it.Kind {
	case domain.KindTour:
		it.Tour = &domain.TourDetails{}
		err = json.Unmarshal(detJS, it.Tour)
	case domain.KindHotel:
		it.Hotel = &domain.HotelDetails{}
		err = json.Unmarshal(detJS, it.Hotel)
	case domain.KindActivity:
		it.Activity = &domain.ActivityDetails{}
		err = json.Unmarshal(detJS, it.Activity)
	default:
		err = fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("decode details %s/%s: %w", tab, it.ID, err)
	}
	it.Normalize()
	return it, nil
}

func (r *Repo) GetItem(ctx context.Context, tab domain.Tab, id string) (domain.CatalogItem, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, getItemSQL, string(tab), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogItem{}, fmt.Errorf("%w: %s item %q", domain.ErrNotFound, tab, id)
	}
	return it, err
}

func (r *Repo) ListByTab(ctx context.Context, tab domain.Tab) ([]domain.CatalogItem, error) {
	rows, err := r.db.QueryContext(ctx, listByTabSQL, string(tab))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CatalogItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

/********** bookings **********/

func (r *Repo) SaveBooking(ctx context.Context, b domain.BookingRecord) error {
	d := b.Draft
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.Reference,
		string(b.Tab),
		d.ItemID,
		string(d.ItemType),
		d.ContactName,
		d.ContactEmail,
		d.ContactPhone,
		d.GuestCounts.Adults,
		d.GuestCounts.Children,
		d.DateRange.From,
		d.DateRange.To,
		string(b.Status),
		b.ExternalRef,
		b.CreatedAt,
	)
	return err
}

func (r *Repo) ListBookings(ctx context.Context, pg domain.PageQuery) ([]domain.BookingRecord, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsSQL, limit(pg), pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BookingRecord{}
	for rows.Next() {
		var (
			b                     domain.BookingRecord
			tab, itemType, status string
		)
		if err := rows.Scan(
			&b.Reference, &tab, &b.Draft.ItemID, &itemType,
			&b.Draft.ContactName, &b.Draft.ContactEmail, &b.Draft.ContactPhone,
			&b.Draft.GuestCounts.Adults, &b.Draft.GuestCounts.Children,
			&b.Draft.DateRange.From, &b.Draft.DateRange.To,
			&status, &b.ExternalRef, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.Tab, b.Draft.ItemType, b.Status = domain.Tab(tab), domain.ItemKind(itemType), domain.BookingStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

/********** contact messages **********/

func (r *Repo) SaveMessage(ctx context.Context, m domain.ContactMessage) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertMessageSQL,
		string(m.Kind), m.Name, m.Email, m.Phone, m.Subject, m.Message, m.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) ListMessages(ctx context.Context, pg domain.PageQuery) ([]domain.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx, listMessagesSQL, limit(pg), pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ContactMessage{}
	for rows.Next() {
		var m domain.ContactMessage
		var kind string
		if err := rows.Scan(&m.ID, &kind, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Kind = domain.MessageKind(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}

func limit(pg domain.PageQuery) int {
	if pg.Limit <= 0 || pg.Limit > 200 {
		return 50
	}
	return pg.Limit
}
