package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"gorm.io/gorm"
)

var gormColumns = map[search.Field]string{
	search.FieldID:        "id",
	search.FieldFeatured:  "featured",
	search.FieldPrice:     "price",
	search.FieldRating:    "rating",
	search.FieldCreatedAt: "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, gormErr(err)
	}
	return &product, nil
}

func (r *GormRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, gormErr(err)
	}
	return &product, nil
}

func (r *GormRepo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return gormErr(r.DB.WithContext(ctx).Create(prod).Error)
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", prod.ID).Select("*").Omit("id", "created_at").Updates(prod)
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, q search.Query) (int64, []models.Product, error) {
	filtered := func() *gorm.DB {
		return applyProductFilter(r.DB.WithContext(ctx).Model(&models.Product{}), q)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, q.Limit())
	tx := filtered()
	for _, o := range q.Orders() {
		tx = tx.Order(gormOrder(o))
	}
	if err := tx.Offset(q.Offset()).Limit(q.Limit()).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func applyProductFilter(tx *gorm.DB, q search.Query) *gorm.DB {
	if q.Text != nil {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(*q.Text)) + "%"
		tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}
	if q.Category != nil {
		tx = tx.Where("category = ?", *q.Category)
	}
	if q.Price != nil {
		tx = tx.Where("price >= ? AND price <= ?", q.Price.Low, q.Price.High)
	}
	if q.MinRating != nil {
		tx = tx.Where("rating >= ?", *q.MinRating)
	}
	return tx
}

func gormOrder(o search.Order) string {
	col := gormColumns[o.Field]
	if col == "" {
		col = "id"
	}
	if o.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}
