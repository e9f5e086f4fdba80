package httpapi

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

// OrderService — операции с заказами, которые нужны HTTP-слою.
type OrderService interface {
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	Create(ctx context.Context, fields domain.OrderFields) (domain.Order, error)
	Update(ctx context.Context, id int64, fields domain.OrderFields) (domain.Order, error)
	Delete(ctx context.Context, id int64) error
	ProductServiceStatus(ctx context.Context) string
}

type orderHandlers struct {
	svc        OrderService
	service    string
	dependency string
	logger     *log.Entry
}

type orderServiceHealth struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *orderHandlers) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	WriteJSON(w, http.StatusOK, orders)
}

func (h *orderHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDomainError(w, r, h.logger, domain.ErrNoSuchOrder)
		return
	}
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, order)
}

func (h *orderHandlers) create(w http.ResponseWriter, r *http.Request) {
	obj, err := decodeObject(w, r)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidOrderData)
		return
	}
	fields, err := orderFields(obj)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidOrderData)
		return
	}
	order, err := h.svc.Create(r.Context(), fields)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, order)
}

func (h *orderHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDomainError(w, r, h.logger, domain.ErrNoSuchOrder)
		return
	}
	obj, err := decodeNonEmptyObject(w, r)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidOrderData)
		return
	}
	fields, err := orderFields(obj)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidOrderData)
		return
	}
	order, err := h.svc.Update(r.Context(), id, fields)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, order)
}

func (h *orderHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDomainError(w, r, h.logger, domain.ErrNoSuchOrder)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Order %d deleted successfully", id)})
}

// health всегда отвечает 200: недоступность product-service видна только в dependencies.
func (h *orderHandlers) health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, orderServiceHealth{
		Status:       "healthy",
		Service:      h.service,
		Dependencies: map[string]string{h.dependency: h.svc.ProductServiceStatus(r.Context())},
	})
}
