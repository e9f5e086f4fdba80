package postgres

import (
	"fmt"
	"strings"
)

// Schema — набор миграций одного сервиса. У каждого сервиса свои таблицы,
// своя таблица версий и свой ключ advisory-блокировки, поэтому миграции
// product-service не создают и не откатывают таблицы заказов, и наоборот.
type Schema struct {
	Name             string
	dir              string
	versionTable     string
	idempotencyTable string
	lockKey          int64
}

var (
	// ProductSchema — таблицы product-service.
	ProductSchema = Schema{
		Name:             "products",
		dir:              "sql/migrations/products",
		versionTable:     "product_schema_migrations",
		idempotencyTable: "product_idempotency_keys",
		lockKey:          50015000,
	}
	// OrderSchema — таблицы order-service.
	OrderSchema = Schema{
		Name:             "orders",
		dir:              "sql/migrations/orders",
		versionTable:     "order_schema_migrations",
		idempotencyTable: "order_idempotency_keys",
		lockKey:          50015001,
	}
)

// Schemas возвращает все известные схемы в порядке применения.
func Schemas() []Schema {
	return []Schema{ProductSchema, OrderSchema}
}

// SchemaByName ищет схему по имени сервиса.
func SchemaByName(name string) (Schema, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, schema := range Schemas() {
		if schema.Name == name {
			return schema, nil
		}
	}
	return Schema{}, fmt.Errorf("unknown schema %q (use products|orders)", name)
}

func (s Schema) glob() string {
	return s.dir + "/*.sql"
}

func (s Schema) versionTableDDL() string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.versionTable)
}
