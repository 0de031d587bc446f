// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{db: db, logger: logger}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		// Customers
		&customer.Account{},
		&customer.Profile{},

		// Catalog
		&product.Category{},
		&product.Product{},
		&product.ProductVariant{},

		// Carts
		&cart.Record{},
		&cart.RecordItem{},

		// Orders
		&order.Order{},
		&order.Item{},
		&order.StatusHistory{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// Indexes lists the composite and partial indexes not expressed in struct tags
func Indexes() []string {
	return []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_live ON products(category_id) WHERE deleted = false AND active = true",
		"CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_live ON product_variants(product_id) WHERE deleted = false",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_sort ON categories(parent_id, sort_order)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_carts_user_updated ON carts(user_id, updated_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_checkout_session ON orders(checkout_session_id) WHERE checkout_session_id <> ''",
		"CREATE INDEX IF NOT EXISTS idx_order_items_variant ON order_items(product_variant_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order_created ON order_status_history(order_id, created_at)",
	}
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	for _, stmt := range Indexes() {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index (%s): %w", stmt, err)
		}
	}

	m.logger.Info("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData inserts a starter catalog into an empty database
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&product.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		m.logger.Info("⏭️ Catalog already seeded")
		return nil
	}

	m.logger.Info("🌱 Seeding initial catalog...")

	return m.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range seedCatalog() {
			if err := tx.Create(&c.category).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.category.Slug, err)
			}
			for _, child := range c.children {
				child.ParentID = &c.category.ID
				if err := tx.Create(&child).Error; err != nil {
					return fmt.Errorf("failed to seed category %s: %w", child.Slug, err)
				}
			}
			for _, p := range c.products {
				p.CategoryID = &c.category.ID
				if err := tx.Create(&p).Error; err != nil {
					return fmt.Errorf("failed to seed product %s: %w", p.Slug, err)
				}
			}
		}
		m.logger.Info("✅ Initial catalog seeded successfully")
		return nil
	})
}

type seedGroup struct {
	category product.Category
	children []product.Category
	products []product.Product
}

func seedCatalog() []seedGroup {
	variants := func(prefix string, colors []string, sizes ...string) []product.ProductVariant {
		var out []product.ProductVariant
		for _, color := range colors {
			for _, size := range sizes {
				var adj int64
				if size == "XXL" {
					adj = 200
				}
				out = append(out, product.ProductVariant{
					ID:              uuid.New(),
					SKU:             fmt.Sprintf("%s-%s-%s", prefix, size, color),
					Size:            size,
					Color:           color,
					StockQuantity:   50,
					PriceAdjustment: adj,
				})
			}
		}
		return out
	}

	return []seedGroup{
		{
			category: product.Category{ID: uuid.New(), Name: "Hauts", Slug: "hauts", SortOrder: 1},
			children: []product.Category{
				{ID: uuid.New(), Name: "T-shirts", Slug: "t-shirts", SortOrder: 1},
				{ID: uuid.New(), Name: "Sweats", Slug: "sweats", SortOrder: 2},
			},
			products: []product.Product{
				{
					ID: uuid.New(), Name: "T-shirt coton bio", Slug: "t-shirt-coton-bio", BasePrice: 1990,
					Description:  "T-shirt **100 % coton bio**, 180 g/m².\n\n- Coupe unisexe\n- Idéal broderie et flocage",
					Customizable: true, Active: true,
					Variants: variants("TSB", []string{"Blanc", "Noir"}, "S", "M", "L", "XL", "XXL"),
				},
				{
					ID: uuid.New(), Name: "Sweat à capuche", Slug: "sweat-a-capuche", BasePrice: 3900,
					Description:  "Sweat molletonné 300 g/m² avec poche kangourou.",
					Customizable: true, Active: true,
					Variants: variants("SWC", []string{"Gris", "Marine"}, "M", "L", "XL", "XXL"),
				},
			},
		},
		{
			category: product.Category{ID: uuid.New(), Name: "Accessoires", Slug: "accessoires", SortOrder: 2},
			products: []product.Product{
				{
					ID: uuid.New(), Name: "Tote bag", Slug: "tote-bag", BasePrice: 900,
					Description:  "Sac en toile de coton naturel, anses longues.",
					Customizable: true, Active: true,
				},
			},
		},
	}
}

// GetTableInfo logs row counts of the application tables
func (m *Migration) GetTableInfo() error {
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		var count int64
		if err := m.db.Table(stmt.Schema.Table).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count %s: %w", stmt.Schema.Table, err)
		}
		m.logger.WithField("records", count).Infof("📊 %s", stmt.Schema.Table)
	}
	return nil
}
