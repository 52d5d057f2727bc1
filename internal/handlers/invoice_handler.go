package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jornathano/dashboard/internal/models"
	"github.com/jornathano/dashboard/internal/repository"
	"github.com/jornathano/dashboard/internal/services/invoices"
	"github.com/jornathano/dashboard/internal/services/pagecache"
)

const maxFormMemory = 1 << 20

type InvoiceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	SearchInvoices(ctx context.Context, f repository.SearchFilter) ([]models.InvoiceRow, string, bool, error)
	GetInvoiceStats(ctx context.Context) (repository.InvoiceStats, error)
}

type CustomerReader interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

type InvoiceHandler struct {
	service   *invoices.InvoiceService
	invoices  InvoiceReader
	customers CustomerReader
	cache     *pagecache.Cache
}

func NewInvoiceHandler(s *invoices.InvoiceService, inv InvoiceReader, cust CustomerReader, cache *pagecache.Cache) *InvoiceHandler {
	return &InvoiceHandler{service: s, invoices: inv, customers: cust, cache: cache}
}

// CreateInvoice handles the create form.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	form, err := postForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	h.respond(c, h.service.CreateInvoice(c.Request.Context(), invoices.State{}, form))
}

// EditInvoice handles the edit form of invoice :id.
func (h *InvoiceHandler) EditInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}
	form, err := postForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	h.respond(c, h.service.EditInvoice(c.Request.Context(), id, invoices.State{}, form))
}

// DeleteInvoice deletes invoice :id and answers with a status message; the
// caller stays on its page and re-renders the listing.
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	state := h.service.DeleteInvoice(c.Request.Context(), id)
	if state.Failed {
		c.JSON(http.StatusInternalServerError, state)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *InvoiceHandler) respond(c *gin.Context, out invoices.Outcome) {
	if path, ok := out.RedirectTo(); ok {
		c.Redirect(http.StatusSeeOther, path)
		return
	}

	state := out.State()
	switch {
	case state.Invalid():
		c.JSON(http.StatusUnprocessableEntity, state)
	case state.Failed:
		c.JSON(http.StatusInternalServerError, state)
	default:
		c.JSON(http.StatusOK, state)
	}
}

// ListInvoices renders the invoice listing. Renders are cached per query until
// a mutation revalidates the listing path.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	statuses := c.QueryArray("status")
	for _, s := range statuses {
		if s != models.StatusPending && s != models.StatusPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}
	filter := repository.SearchFilter{
		Query:    strings.TrimSpace(c.Query("query")),
		Statuses: normalizeStatuses(statuses),
		Cursor:   c.Query("cursor"),
	}

	key := listingKey(filter)
	if e, ok := h.cache.Get(invoices.ListPath, key); ok {
		c.Header("X-Cache", "HIT")
		c.Header("Age", strconv.Itoa(int(h.cache.Age(e).Seconds())))
		c.Data(http.StatusOK, e.ContentType, e.Body)
		return
	}
	gen := h.cache.Generation(invoices.ListPath)

	ctx := c.Request.Context()
	items, nextCursor, hasMore, err := h.invoices.SearchInvoices(ctx, filter)
	if errors.Is(err, repository.ErrInvalidCursor) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invoices"})
		return
	}

	stats, err := h.invoices.GetInvoiceStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invoice totals"})
		return
	}

	if items == nil {
		items = []models.InvoiceRow{}
	}
	body, err := json.Marshal(gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
		"stats":       stats,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render invoices"})
		return
	}

	const contentType = "application/json; charset=utf-8"
	h.cache.Set(invoices.ListPath, key, gen, pagecache.Entry{Body: body, ContentType: contentType})
	c.Header("X-Cache", "MISS")
	c.Header("Age", "0")
	c.Data(http.StatusOK, contentType, body)
}

// CreateForm returns what the create form needs to render.
func (h *InvoiceHandler) CreateForm(c *gin.Context) {
	customers, err := h.customers.ListCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// EditForm returns invoice :id and the customers for the edit form.
func (h *InvoiceHandler) EditForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	ctx := c.Request.Context()
	inv, err := h.invoices.GetByID(ctx, id)
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invoice"})
		return
	}

	customers, err := h.customers.ListCustomers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice": gin.H{
			"id":          inv.ID,
			"customer_id": inv.CustomerID,
			// the form takes whole currency units
			"amount": decimal.New(inv.Amount, -2),
			"status": inv.Status,
			"date":   inv.DateString(),
		},
		"customers": customers,
	})
}

// normalizeStatuses sorts and dedupes the status filter so equivalent
// queries share a cache entry.
func normalizeStatuses(statuses []string) []string {
	if len(statuses) == 0 {
		return nil
	}
	out := append([]string(nil), statuses...)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// listingKey is the cache key of a listing; unrecognized query parameters do
// not reach it.
func listingKey(f repository.SearchFilter) string {
	v := url.Values{}
	if f.Query != "" {
		v.Set("query", f.Query)
	}
	if len(f.Statuses) > 0 {
		v["status"] = f.Statuses
	}
	if f.Cursor != "" {
		v.Set("cursor", f.Cursor)
	}
	return v.Encode()
}

func postForm(c *gin.Context) (url.Values, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return c.Request.PostForm, nil
}
