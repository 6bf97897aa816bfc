package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teralab/backoffice/internal/model"
)

// ShopRepository persists imported shop-item datasets. Every write is an
// idempotent upsert keyed by the record's natural key, so re-running an
// import against unchanged input leaves the tables unchanged.
type ShopRepository struct {
	db *pgxpool.Pool
}

// NewShopRepository creates a ShopRepository on the given pool.
func NewShopRepository(db *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{db: db}
}

// UpsertItemString inserts or updates one localized string row,
// keyed by (language, item_template_id).
func (r *ShopRepository) UpsertItemString(ctx context.Context, s model.ItemString) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO item_strings (language, item_template_id, string, tool_tip)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (language, item_template_id)
		 DO UPDATE SET string = EXCLUDED.string, tool_tip = EXCLUDED.tool_tip`,
		s.Language, s.TemplateID, s.Text, s.ToolTip,
	)
	if err != nil {
		return fmt.Errorf("upserting item string %d (%s): %w", s.TemplateID, s.Language, err)
	}
	return nil
}

// UpsertItemTemplate inserts or updates one template row, keyed by
// item_template_id.
func (r *ShopRepository) UpsertItemTemplate(ctx context.Context, t model.ItemTemplate) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO item_templates
		   (item_template_id, icon, rare_grade, required_level,
		    required_class, required_gender, required_race,
		    tradable, warehouse_storable)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (item_template_id) DO UPDATE SET
		   icon               = EXCLUDED.icon,
		   rare_grade         = EXCLUDED.rare_grade,
		   required_level     = EXCLUDED.required_level,
		   required_class     = EXCLUDED.required_class,
		   required_gender    = EXCLUDED.required_gender,
		   required_race      = EXCLUDED.required_race,
		   tradable           = EXCLUDED.tradable,
		   warehouse_storable = EXCLUDED.warehouse_storable`,
		t.TemplateID, t.IconSuffix, t.RareGrade, t.RequiredLevel,
		t.RequiredClass, t.RequiredGender, t.RequiredRace,
		t.Tradable, t.WarehouseStorable,
	)
	if err != nil {
		return fmt.Errorf("upserting item template %d: %w", t.TemplateID, err)
	}
	return nil
}

// UpsertItemConversion inserts one conversion row if its natural key
// (template, fixed template, class, gender, race) is not present yet.
func (r *ShopRepository) UpsertItemConversion(ctx context.Context, c model.ItemConversion) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO item_conversions
		   (item_template_id, fixed_item_template_id, class, gender, race)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (item_template_id, fixed_item_template_id,
		              COALESCE(class, ''), COALESCE(gender, ''), COALESCE(race, ''))
		 DO NOTHING`,
		c.ItemTemplateID, c.FixedItemTemplateID, c.Class, c.Gender, c.Race,
	)
	if err != nil {
		return fmt.Errorf("upserting item conversion %d -> %d: %w",
			c.ItemTemplateID, c.FixedItemTemplateID, err)
	}
	return nil
}
