package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/memory"
)

func TestProductRepository_SeedAndCreate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(domain.DefaultProducts()...)

	created, err := repo.Create(ctx, domain.Product{Name: "Tablet", Price: 299.99, Available: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 4 {
		t.Fatalf("expected id 4, got %d", created.ID)
	}

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("expected 4 products, got %d", len(products))
	}
}

func TestProductRepository_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(domain.DefaultProducts()...)

	stored, err := repo.Get(ctx, 2)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	stored.Available = false
	if err := repo.Save(ctx, stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := repo.Get(ctx, 2)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Available {
		t.Fatal("expected product to be unavailable after save")
	}

	if err := repo.Delete(ctx, 2); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, 2); !errors.Is(err, domain.ErrNoSuchProduct) {
		t.Fatalf("expected ErrNoSuchProduct, got %v", err)
	}
}

func TestProductRepository_MissingID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	if err := repo.Save(ctx, domain.Product{ID: 9999, Name: "x"}); !errors.Is(err, domain.ErrNoSuchProduct) {
		t.Fatalf("expected ErrNoSuchProduct on save, got %v", err)
	}
	if err := repo.Delete(ctx, 9999); !errors.Is(err, domain.ErrNoSuchProduct) {
		t.Fatalf("expected ErrNoSuchProduct on delete, got %v", err)
	}
}
