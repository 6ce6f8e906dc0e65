package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/date"
)

// writeError maps engine errors to HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pdv.ErrNotFound):
		status = http.StatusNotFound
	case pdv.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, pdv.ErrInsufficientStock), errors.Is(err, pdv.ErrEmptyCart):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, pdv.ErrReconciliationConflict), errors.Is(err, pdv.ErrConfirmationRequired):
		status = http.StatusConflict
	default:
		s.logger.Error("request failed", zap.Error(err))
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.logger.Warn("failed to bind request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
}

// queryRange reads the from and to query parameters. A missing to means
// today, a missing from means def.
func queryRange(c *gin.Context, def date.Date) (date.Range, error) {
	to := date.Today()
	if v := c.Query("to"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return date.Range{}, &pdv.ValidationError{Field: "to", Value: v, Reason: err.Error()}
		}
		to = d
	}
	from := def
	if v := c.Query("from"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return date.Range{}, &pdv.ValidationError{Field: "from", Value: v, Reason: err.Error()}
		}
		from = d
	}
	return date.Between(from, to), nil
}

func (s *Server) handleListProducts(c *gin.Context) {
	products := s.session.Catalog().Active()
	if cat := c.Query("category"); cat != "" {
		var filtered []pdv.Product
		for _, p := range products {
			if p.HasCategory(cat) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if products == nil {
		products = []pdv.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "categories": s.session.Catalog().Categories()})
}

func (s *Server) handleSaveProduct(c *gin.Context) {
	var p pdv.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		s.badRequest(c, err)
		return
	}
	status := http.StatusOK
	if p.ID == "" {
		p.ID = pdv.NewProductID()
	}
	if _, exists := s.session.Catalog().Product(p.ID); !exists {
		status = http.StatusCreated
	}
	if _, err := s.session.SaveProduct(p); err != nil {
		s.writeError(c, err)
		return
	}
	saved, _ := s.session.Catalog().Product(p.ID)
	c.JSON(status, saved)
}

func (s *Server) handleDeleteProduct(c *gin.Context) {
	if _, err := s.session.DeleteProduct(c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleHistory(c *gin.Context) {
	h, err := s.session.ProductHistory(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newHistoryDTO(h))
}

func (s *Server) handleAdjustStock(c *gin.Context) {
	var req struct {
		Products []pdv.StockDelta `json:"products"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if _, err := s.session.AdjustStock(req.Products); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartDTO(s.session.Cart()))
}

func (s *Server) handleGetCart(c *gin.Context) {
	c.JSON(http.StatusOK, newCartDTO(s.session.Cart()))
}

func (s *Server) handleAddLine(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.session.AddToCart(req.ID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartDTO(s.session.Cart()))
}

func (s *Server) handleSetQuantity(c *gin.Context) {
	var req struct {
		Quantity pdv.Quantity `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.session.SetCartQuantity(c.Param("id"), req.Quantity); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartDTO(s.session.Cart()))
}

func (s *Server) handleRemoveLine(c *gin.Context) {
	if !s.session.Cart().RemoveLine(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product is not in the cart"})
		return
	}
	c.JSON(http.StatusOK, newCartDTO(s.session.Cart()))
}

func (s *Server) handleCheckout(c *gin.Context) {
	var req struct {
		Payment pdv.PaymentMethod `json:"paymentType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	receipt, err := s.session.Checkout(req.Payment)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.metrics.observeSale(receipt.Sale)
	resp := gin.H{"sale": receipt.Sale, "total": receipt.Sale.Total()}
	if receipt.Snapshot != nil {
		resp["cashSnapshot"] = receipt.Snapshot
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleCashReport(c *gin.Context) {
	r, err := queryRange(c, date.Today().Add(-6))
	if err != nil {
		s.writeError(c, err)
		return
	}
	rows := []cashRowDTO{}
	for _, row := range s.session.CashReport(r) {
		rows = append(rows, newCashRowDTO(row))
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (s *Server) handleGetFloat(c *gin.Context) {
	value, locked := s.session.Cashier().CurrentInitialValue()
	c.JSON(http.StatusOK, gin.H{"value": value, "locked": locked})
}

func (s *Server) handleSetFloat(c *gin.Context) {
	var req struct {
		Value pdv.Money `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if _, err := s.session.SetInitialFloat(req.Value); err != nil {
		s.writeError(c, err)
		return
	}
	value, locked := s.session.Cashier().CurrentInitialValue()
	c.JSON(http.StatusOK, gin.H{"value": value, "locked": locked})
}

func (s *Server) handleRetire(c *gin.Context) {
	var req struct {
		Amount  pdv.Money `json:"amount"`
		Confirm bool      `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	ret, _, err := s.session.RetireToday(req.Amount, req.Confirm)
	if errors.Is(err, pdv.ErrConfirmationRequired) {
		// the client asks the operator and sends the request again with confirm set
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "confirmationRequired": true, "retirement": newRetirementDTO(ret)})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRetirementDTO(ret))
}

func (s *Server) handleSales(c *gin.Context) {
	r, err := queryRange(c, date.Today())
	if err != nil {
		s.writeError(c, err)
		return
	}
	var f pdv.SalesFilter
	if v := c.Query("payment"); v != "" {
		if f.Payment, err = pdv.ParsePaymentMethod(v); err != nil {
			s.writeError(c, err)
			return
		}
	}
	f.Categories = c.QueryArray("category")
	f.ProductIDs = c.QueryArray("product")
	c.JSON(http.StatusOK, newSalesDTO(s.session.SalesReport(r, f)))
}

// handleNotices returns the notices published since the last call.
func (s *Server) handleNotices(c *gin.Context) {
	notices := []noticeDTO{}
	for _, n := range s.notices {
		notices = append(notices, noticeDTO{Kind: n.Kind, ProductID: n.ProductID, Message: n.Message})
	}
	s.notices = nil
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}
