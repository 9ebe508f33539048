package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tells whether money came in or went out
type MovementKind string

const (
	MovementKindEntry MovementKind = "entry"
	MovementKindExit  MovementKind = "exit"
)

// IsValid returns true if the kind is known
func (k MovementKind) IsValid() bool {
	return k == MovementKindEntry || k == MovementKindExit
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPIX    PaymentMethod = "pix"
	PaymentMethodDebit  PaymentMethod = "debit"
	PaymentMethodCredit PaymentMethod = "credit"
)

// PaymentMethods lists every accepted payment method
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodPIX,
	PaymentMethodDebit,
	PaymentMethodCredit,
}

// IsValid returns true if the payment method is known
func (p PaymentMethod) IsValid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// Movement is one ledger row: a cash entry or exit
type Movement struct {
	ID            int64           `json:"id"`
	Kind          MovementKind    `json:"kind"`
	Category      string          `json:"category"`
	ServiceRef    *string         `json:"serviceRef,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Timestamp     time.Time       `json:"timestamp"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

// Clone returns a deep copy so callers never share the ledger's records
func (m *Movement) Clone() *Movement {
	c := *m
	if m.ServiceRef != nil {
		ref := *m.ServiceRef
		c.ServiceRef = &ref
	}
	return &c
}

// MovementInput holds the fields of a new movement.
// ID and Timestamp are assigned by the ledger. A nil Amount means the
// caller omitted it.
type MovementInput struct {
	Kind          MovementKind
	Category      string
	ServiceRef    *string
	Amount        *decimal.Decimal
	Description   string
	PaymentMethod PaymentMethod
}

// MovementPatch holds the optional fields of an edit.
// There is no timestamp field: the creation instant is never edited.
type MovementPatch struct {
	Kind          *MovementKind
	Category      *string
	ServiceRef    *string // empty string clears the reference
	Amount        *decimal.Decimal
	Description   *string
	PaymentMethod *PaymentMethod
}

// IsEmpty returns true if no field is set
func (p MovementPatch) IsEmpty() bool {
	return p.Kind == nil && p.Category == nil && p.ServiceRef == nil &&
		p.Amount == nil && p.Description == nil && p.PaymentMethod == nil
}

// NewMovement validates the input and builds a movement without id or timestamp.
// Text fields are trimmed, the amount is rounded to cents, an empty service
// reference becomes nil and an exit without payment method defaults to cash.
func NewMovement(input MovementInput) (*Movement, error) {
	amount := decimal.Zero
	if input.Amount != nil {
		amount = *input.Amount
	}
	m := &Movement{
		Kind:          input.Kind,
		Category:      strings.TrimSpace(input.Category),
		ServiceRef:    normalizeRef(input.ServiceRef),
		Amount:        NormalizeAmount(amount),
		Description:   strings.TrimSpace(input.Description),
		PaymentMethod: input.PaymentMethod,
	}
	if m.Kind == MovementKindExit && m.PaymentMethod == "" {
		m.PaymentMethod = PaymentMethodCash
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply merges the patch into a copy of the movement and re-validates it
func (m *Movement) Apply(patch MovementPatch) (*Movement, error) {
	merged := m.Clone()
	if patch.Kind != nil {
		merged.Kind = *patch.Kind
	}
	if patch.Category != nil {
		merged.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.ServiceRef != nil {
		merged.ServiceRef = normalizeRef(patch.ServiceRef)
	}
	if patch.Amount != nil {
		merged.Amount = NormalizeAmount(*patch.Amount)
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.PaymentMethod != nil {
		merged.PaymentMethod = *patch.PaymentMethod
	}
	if merged.Kind == MovementKindExit && merged.PaymentMethod == "" {
		merged.PaymentMethod = PaymentMethodCash
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Validate checks every movement invariant and reports all violations at once
func (m *Movement) Validate() error {
	verr := &ValidationError{}
	if !m.Kind.IsValid() {
		verr.Add("kind", "Kind must be one of: entry, exit")
	}
	if m.Category == "" {
		verr.Add("category", "Category is required")
	} else if len(m.Category) > MaxCategoryLength {
		verr.Add("category", "Category must be 255 characters or less")
	}
	if m.Amount.LessThanOrEqual(decimal.Zero) {
		verr.Add("amount", "Amount must be positive")
	}
	if m.Description == "" {
		verr.Add("description", "Description is required")
	} else if len(m.Description) > MaxDescriptionLength {
		verr.Add("description", "Description must be 1000 characters or less")
	}
	switch {
	case m.PaymentMethod == "" && m.Kind == MovementKindEntry:
		verr.Add("paymentMethod", "Payment method is required for entries")
	case m.PaymentMethod != "" && !m.PaymentMethod.IsValid():
		verr.Add("paymentMethod", "Payment method must be one of: cash, card, pix, debit, credit")
	}
	return verr.OrNil()
}

func normalizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*ref)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// MovementRepository is the persistence contract for the ledger.
// Insert assigns the id; Update replaces the content fields of an existing row
// and keeps its timestamp.
type MovementRepository interface {
	List(ctx context.Context) ([]*Movement, error)
	Insert(ctx context.Context, movement *Movement) (*Movement, error)
	Update(ctx context.Context, movement *Movement) (*Movement, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Flusher is implemented by persistence backends that buffer writes
type Flusher interface {
	Flush(ctx context.Context) error
}
