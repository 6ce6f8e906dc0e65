package pdv

import "fmt"

// NoticeKind classifies the messages published to session subscribers.
type NoticeKind string

const (
	// NoticeLowStock warns that a cart line takes a product to its minimum
	// stock.
	NoticeLowStock NoticeKind = "low-stock"
	// NoticeCartAdjusted reports a cart line clamped or removed after a stock
	// or product change.
	NoticeCartAdjusted NoticeKind = "cart-adjusted"
	// NoticeValidation reports an operation rejected by the engine.
	NoticeValidation NoticeKind = "validation"
)

// Notice is a short message meant for toast-style display.
type Notice struct {
	Kind      NoticeKind
	ProductID string // empty when the notice is not about a product
	Message   string
}

func (n Notice) String() string { return fmt.Sprintf("%s: %s", n.Kind, n.Message) }
