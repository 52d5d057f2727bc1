package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/jornathano/dashboard/internal/models"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvalidCursor   = errors.New("invalid cursor")
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// InsertInvoice inserts a new invoice. The id is assigned by the database and
// written back to inv.
func (r *InvoiceRepository) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return errors.Wrap(err, "insert invoice")
	}
	return nil
}

// UpdateInvoice sets customer, amount and status of one invoice.
func (r *InvoiceRepository) UpdateInvoice(ctx context.Context, id uuid.UUID, customerID string, amount int64, status string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"customer_id": customerID,
			"amount":      amount,
			"status":      status,
		}).Error
	if err != nil {
		return errors.Wrapf(err, "update invoice %s", id)
	}
	return nil
}

// DeleteInvoice deletes one invoice. Deleting a missing id affects no rows and is not an error.
func (r *InvoiceRepository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
		return errors.Wrapf(err, "delete invoice %s", id)
	}
	return nil
}

// GetByID fetch a single invoice by ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get invoice %s", id)
	}
	return &invoice, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes the LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SearchFilter narrows the invoice listing. Query matches customer name, email,
// amount, date or status.
type SearchFilter struct {
	Query    string
	Statuses []string
	Cursor   string
	Limit    int
}

// SearchInvoices lists invoices joined with their customer, newest first, one
// page at a time. The returned cursor is empty when there are no more rows.
func (r *InvoiceRepository) SearchInvoices(ctx context.Context, f SearchFilter) ([]models.InvoiceRow, string, bool, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	dbQuery := r.db.WithContext(ctx).
		Table("invoices").
		Select(`invoices.id, invoices.customer_id, invoices.amount, invoices.status, invoices.date,
			customers.name AS customer_name, customers.email, customers.image_url`).
		Joins("JOIN customers ON invoices.customer_id = customers.id").
		Order("invoices.date DESC, invoices.id DESC").
		Limit(limit + 1)

	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + escapeLike(q) + "%"
		dbQuery = dbQuery.Where(
			`customers.name ILIKE ? ESCAPE '\' OR customers.email ILIKE ? ESCAPE '\'
			OR invoices.amount::text ILIKE ? ESCAPE '\' OR invoices.date::text ILIKE ? ESCAPE '\'
			OR invoices.status ILIKE ? ESCAPE '\'`,
			like, like, like, like, like,
		)
	}
	if len(f.Statuses) > 0 {
		dbQuery = dbQuery.Where("invoices.status IN ?", f.Statuses)
	}
	if f.Cursor != "" {
		date, id, err := decodeCursor(f.Cursor)
		if err != nil {
			return nil, "", false, err
		}
		dbQuery = dbQuery.Where("(invoices.date, invoices.id) < (?, ?)", date, id)
	}

	var rows []models.InvoiceRow
	if err := dbQuery.Scan(&rows).Error; err != nil {
		return nil, "", false, errors.Wrap(err, "search invoices")
	}

	hasMore := false
	var nextCursor string
	if len(rows) > limit {
		hasMore = true
		rows = rows[:limit]
		last := rows[limit-1]
		nextCursor = encodeCursor(time.Time(last.Date), last.ID)
	}

	return rows, nextCursor, hasMore, nil
}

func encodeCursor(date time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s_%s", date.Format(time.DateOnly), id)
}

func decodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	datePart, idPart, ok := strings.Cut(cursor, "_")
	if !ok {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	date, err := time.Parse(time.DateOnly, datePart)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return time.Time{}, uuid.Nil, ErrInvalidCursor
	}
	return date, id, nil
}

type InvoiceStats struct {
	Total       int64 `json:"total"`
	TotalAmount int64 `json:"total_amount"`

	PaidCount int64 `json:"paid_count"`
	PaidSum   int64 `json:"paid_sum"`

	PendingCount int64 `json:"pending_count"`
	PendingSum   int64 `json:"pending_sum"`
}

type StatRow struct {
	Status string
	Count  int64
	Sum    int64
}

// GetInvoiceStats counts and sums invoices per status, in minor units.
func (r *InvoiceRepository) GetInvoiceStats(ctx context.Context) (InvoiceStats, error) {
	var stats InvoiceStats
	var rows []StatRow

	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS sum").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return stats, errors.Wrap(err, "invoice stats")
	}

	for _, row := range rows {
		stats.Total += row.Count
		stats.TotalAmount += row.Sum

		switch row.Status {
		case models.StatusPaid:
			stats.PaidCount = row.Count
			stats.PaidSum = row.Sum
		case models.StatusPending:
			stats.PendingCount = row.Count
			stats.PendingSum = row.Sum
		}
	}

	return stats, nil
}
