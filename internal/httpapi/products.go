package httpapi

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

// ProductService — операции каталога, которые нужны HTTP-слою.
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Create(ctx context.Context, fields domain.ProductFields) (domain.Product, error)
	Update(ctx context.Context, id int64, fields domain.ProductFields) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productHandlers struct {
	svc     ProductService
	service string
	logger  *log.Entry
}

type messageResponse struct {
	Message string `json:"message"`
}

type serviceHealth struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (h *productHandlers) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	WriteJSON(w, http.StatusOK, products)
}

func (h *productHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDomainError(w, r, h.logger, domain.ErrNoSuchProduct)
		return
	}
	product, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

func (h *productHandlers) create(w http.ResponseWriter, r *http.Request) {
	obj, err := decodeObject(w, r)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidProductData)
		return
	}
	fields, err := productFields(obj)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidProductData)
		return
	}
	product, err := h.svc.Create(r.Context(), fields)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, product)
}

func (h *productHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDomainError(w, r, h.logger, domain.ErrNoSuchProduct)
		return
	}
	obj, err := decodeNonEmptyObject(w, r)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidProductData)
		return
	}
	fields, err := productFields(obj)
	if err != nil {
		writeDomainError(w, r, h.logger, domain.ErrInvalidProductData)
		return
	}
	product, err := h.svc.Update(r.Context(), id, fields)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

func (h *productHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDomainError(w, r, h.logger, domain.ErrNoSuchProduct)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Product %d deleted successfully", id)})
}

func (h *productHandlers) health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, serviceHealth{Status: "healthy", Service: h.service})
}
