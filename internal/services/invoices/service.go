package invoices

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/jornathano/dashboard/internal/models"
	"github.com/jornathano/dashboard/internal/validation"
)

// ListPath is the invoice listing route. Every successful mutation revalidates it.
const ListPath = "/dashboard/invoices"

const (
	MsgCreateInvalid = "Missing fields. Please fill in all required form fields."
	MsgCreateFailed  = "Database error creating invoice"
	MsgEditInvalid   = "Form failed validation."
	MsgEditFailed    = "Database error: cannot update invoice."
	MsgDeleted       = "Invoice deleted."
	MsgDeleteFailed  = "Database error: cannot delete invoice."
)

// Store issues the single statement each action needs.
type Store interface {
	InsertInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoice(ctx context.Context, id uuid.UUID, customerID string, amount int64, status string) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

// Revalidator discards cached renders of a path.
type Revalidator interface {
	RevalidatePath(path string)
}

type InvoiceService struct {
	store   Store
	cache   Revalidator
	nowFunc func() time.Time
}

func NewInvoiceService(store Store, cache Revalidator) *InvoiceService {
	return &InvoiceService{
		store:   store,
		cache:   cache,
		nowFunc: time.Now,
	}
}

// CreateInvoice validates the form, inserts the invoice dated today (UTC) and
// redirects to the listing. prev is the state the form last rendered; it is
// not consulted.
func (s *InvoiceService) CreateInvoice(ctx context.Context, prev State, form url.Values) Outcome {
	res := validation.CreateInvoice.SafeParse(form)
	if !res.Success {
		return Rendered(State{Errors: res.Errors, Message: MsgCreateInvalid})
	}

	inv := &models.Invoice{
		CustomerID: res.Data.CustomerID,
		Amount:     res.Data.AmountInCents(),
		Status:     res.Data.Status,
		Date:       today(s.nowFunc()),
	}
	if err := s.store.InsertInvoice(ctx, inv); err != nil {
		return Rendered(State{Message: MsgCreateFailed, Failed: true})
	}

	s.cache.RevalidatePath(ListPath)
	return Redirect(ListPath)
}

// EditInvoice updates customer, amount and status of invoice id. The creation
// date is left alone.
func (s *InvoiceService) EditInvoice(ctx context.Context, id uuid.UUID, prev State, form url.Values) Outcome {
	res := validation.EditInvoice.SafeParse(form)
	if !res.Success {
		return Rendered(State{Errors: res.Errors, Message: MsgEditInvalid})
	}

	err := s.store.UpdateInvoice(ctx, id, res.Data.CustomerID, res.Data.AmountInCents(), res.Data.Status)
	if err != nil {
		return Rendered(State{Message: MsgEditFailed, Failed: true})
	}

	s.cache.RevalidatePath(ListPath)
	return Redirect(ListPath)
}

// DeleteInvoice removes invoice id. Deleting an id that does not exist is not
// an error.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) State {
	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		return State{Message: MsgDeleteFailed, Failed: true}
	}

	s.cache.RevalidatePath(ListPath)
	return State{Message: MsgDeleted}
}

func today(now time.Time) datatypes.Date {
	y, m, d := now.UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
