package pdv

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/etnz/pdv/date"
)

// NewProductID returns a fresh product id.
func NewProductID() string { return uuid.NewString() }

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	Sale     Sale
	Snapshot *CashSnapshot // opening snapshot recorded with the first cash sale of the day
	Write    *Write        // completes when the ledger and catalog are both written
}

// Session is the point of sale state: the ledger, the catalog, the cart and
// the cash register.
//
// It orders the operations spanning several of them and publishes notices
// to its subscribers. A Session is not safe for concurrent use.
type Session struct {
	ledger  *Ledger
	catalog *Catalog
	cart    *Cart
	cashier *Cashier
	logger  *zap.Logger

	subscribers map[int]func(Notice)
	nextID      int

	pending []*Write // writes issued since the last Flush

	now func() time.Time
}

// NewSession returns a session over l and c with an empty cart.
func NewSession(l *Ledger, c *Catalog, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		ledger:      l,
		catalog:     c,
		cashier:     NewCashier(l, logger.Named("cashier")),
		logger:      logger,
		subscribers: make(map[int]func(Notice)),
	}
	s.cart = NewCart(s.publish)
	s.setClock(time.Now)
	return s
}

// OpenSession loads the ledger and the catalog files.
func OpenSession(ledgerPath, catalogPath string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewSession(LoadLedger(ledgerPath, logger), LoadCatalog(catalogPath, logger), logger)
}

func (s *Session) setClock(now func() time.Time) {
	s.now = now
	s.cashier.now = now
}

func (s *Session) Ledger() *Ledger   { return s.ledger }
func (s *Session) Catalog() *Catalog { return s.catalog }
func (s *Session) Cart() *Cart       { return s.cart }
func (s *Session) Cashier() *Cashier { return s.cashier }

// Subscribe registers fn to receive every notice published from now on. The
// returned function unregisters it.
func (s *Session) Subscribe(fn func(Notice)) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

func (s *Session) publish(n Notice) {
	s.logger.Debug("notice", zap.String("kind", string(n.Kind)), zap.String("product", n.ProductID), zap.String("message", n.Message))
	for _, fn := range s.subscribers {
		fn(n)
	}
}

// reject publishes err as a validation notice and returns it.
func (s *Session) reject(err error) error {
	s.publish(Notice{Kind: NoticeValidation, Message: err.Error()})
	return err
}

// track keeps w until Flush. Writes that already succeeded are dropped;
// failed ones stay so that Flush reports them.
func (s *Session) track(w *Write) *Write {
	s.pending = slices.DeleteFunc(s.pending, func(p *Write) bool {
		select {
		case <-p.Done():
			return p.err == nil
		default:
			return false
		}
	})
	s.pending = append(s.pending, w)
	return w
}

// Flush waits for every write issued by the session and returns their
// errors.
func (s *Session) Flush() error {
	pending := s.pending
	s.pending = nil

	var errs error
	for _, w := range pending {
		errs = errors.Join(errs, w.Wait())
	}
	s.ledger.Flush()
	s.catalog.Flush()
	return errs
}

// AddToCart adds one unit of the product to the cart.
func (s *Session) AddToCart(productID string) error {
	p, ok := s.catalog.Product(productID)
	if !ok {
		return s.reject(fmt.Errorf("product %q: %w", productID, ErrNotFound))
	}
	if err := s.cart.AddLine(p); err != nil {
		return s.reject(err)
	}
	return nil
}

// SetCartQuantity sets the quantity of a cart line, see [Cart.SetQuantity].
func (s *Session) SetCartQuantity(productID string, q Quantity) error {
	if err := s.cart.SetQuantity(productID, q); err != nil {
		return s.reject(err)
	}
	return nil
}

// Checkout sells the cart content.
//
// Each line is checked against the current catalog stock, which is also the
// stock recorded in the sale. The sale is recorded, the stock decreased and
// only then the cart cleared: on error the cart is left as is so that the
// checkout can be retried.
//
// The first cash sale of a day whose float was not recorded yet records it,
// with the value proposed by [Cashier.CurrentInitialValue].
func (s *Session) Checkout(payment PaymentMethod) (Receipt, error) {
	now := s.now()
	co, err := s.cart.Checkout(payment, now)
	if err != nil {
		return Receipt{}, s.reject(err)
	}
	for i, line := range co.Sale.Lines {
		p, ok := s.catalog.Product(line.ProductID)
		if !ok || p.IsDeleted {
			return Receipt{}, s.reject(fmt.Errorf("cannot sell product %q: %w", line.ProductID, ErrNotFound))
		}
		if line.Quantity.GreaterThan(p.StockQuantity) {
			return Receipt{}, s.reject(fmt.Errorf("cannot sell %v of %q with stock %v: %w", line.Quantity, p.Name, p.StockQuantity, ErrInsufficientStock))
		}
		co.Sale.Lines[i].StockQuantity = p.StockQuantity
	}

	var writes []*Write
	var opening *CashSnapshot
	if payment == Cash {
		if float, locked := s.cashier.CurrentInitialValue(); !locked {
			snap := NewCashSnapshot(now, float, nil)
			writes = append(writes, s.ledger.UpsertCashSnapshot(date.Of(now), snap))
			opening = &snap
		}
	}
	writes = append(writes, s.ledger.Append(co.Sale))
	writes = append(writes, s.catalog.ApplyAdjustment(co.Adjustment.Deltas))
	s.cart.Clear()

	s.logger.Info("sale recorded", zap.String("payment", string(payment)), zap.Int("lines", len(co.Sale.Lines)), zap.Stringer("total", co.Sale.Total()))
	return Receipt{Sale: co.Sale, Snapshot: opening, Write: s.track(joinWrites(writes...))}, nil
}

// AdjustStock records a manual stock change.
//
// Every delta must target a known product, be non-zero and be written with
// the precision of the product unit. The catalog stock is changed, the
// adjustment recorded and the cart reconciled with the new stock.
func (s *Session) AdjustStock(deltas []StockDelta) (*Write, error) {
	if len(deltas) == 0 {
		return nil, s.reject(&ValidationError{Field: "stock adjustment", Value: 0, Reason: "no product"})
	}
	for _, d := range deltas {
		p, ok := s.catalog.Product(d.ProductID)
		if !ok {
			return nil, s.reject(fmt.Errorf("cannot adjust product %q: %w", d.ProductID, ErrNotFound))
		}
		if d.Delta.IsZero() {
			return nil, s.reject(&ValidationError{Field: "stock delta", Value: d.Delta, Reason: fmt.Sprintf("zero for %q", p.Name)})
		}
		if err := p.UnitType.ValidateQuantity(d.Delta); err != nil {
			return nil, s.reject(err)
		}
	}

	adj := NewStockAdjustment(s.now(), deltas...)
	w := joinWrites(
		s.catalog.ApplyAdjustment(adj.Deltas),
		s.ledger.Append(adj),
	)
	s.cart.ReconcileAfterStockChange(adj.Deltas)
	return s.track(w), nil
}

// SaveProduct adds or edits a product.
//
// The stock it brings, or the stock difference of an edit, is recorded as a
// stock adjustment so that the product history accounts for it.
func (s *Session) SaveProduct(p Product) (*Write, error) {
	old, exists := s.catalog.Product(p.ID)
	put, err := s.catalog.Put(p)
	if err != nil {
		return nil, s.reject(err)
	}
	writes := []*Write{put}

	delta := p.StockQuantity
	if exists {
		delta = p.StockQuantity.Sub(old.StockQuantity)
	}
	if !delta.IsZero() {
		writes = append(writes, s.ledger.Append(NewStockAdjustment(s.now(), StockDelta{ProductID: p.ID, Delta: delta})))
	}
	s.cart.ReconcileAfterProductEdit(p)
	return s.track(joinWrites(writes...)), nil
}

// DeleteProduct soft deletes a product and drops it from the cart.
func (s *Session) DeleteProduct(id string) (*Write, error) {
	w, err := s.catalog.Delete(id)
	if err != nil {
		return nil, s.reject(err)
	}
	s.cart.RemoveLine(id)
	return s.track(w), nil
}

// CashReport returns the cash register report of r, see [Cashier.Report].
// Today's float, when not recorded yet, is the proposed one.
func (s *Session) CashReport(r date.Range) []CashRow {
	float, _ := s.cashier.CurrentInitialValue()
	return s.cashier.Report(r, float)
}

// SetInitialFloat records today's opening float, see
// [Cashier.SetInitialFloat].
func (s *Session) SetInitialFloat(value Money) (*Write, error) {
	w, err := s.cashier.SetInitialFloat(value)
	if err != nil {
		return nil, s.reject(err)
	}
	return s.track(w), nil
}

// RetireToday withdraws cash from today's register, see
// [Cashier.RetireToday]. A partial withdrawal waiting for confirmation is
// not reported as a notice.
func (s *Session) RetireToday(amount Money, confirmPartial bool) (Retirement, *Write, error) {
	ret, w, err := s.cashier.RetireToday(amount, confirmPartial)
	switch {
	case errors.Is(err, ErrConfirmationRequired):
		return ret, nil, err
	case err != nil:
		return ret, nil, s.reject(err)
	}
	return ret, s.track(w), nil
}
