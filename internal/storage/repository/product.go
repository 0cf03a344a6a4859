package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

const productListColumns = `p.id, p.name, p.slug, p.short_description, p.base_price, p.delivery_fee,
	p.unit, p.stock_quantity, p.availability_status, p.main_image_url, p.created_at,
	c.name, c.slug, sc.name, sc.slug`

const productJoins = `FROM products p
	LEFT JOIN categories c ON p.category_id = c.id
	LEFT JOIN subcategories sc ON p.subcategory_id = sc.id`

func scanProductListRow(row rowScanner) (*models.Product, error) {
	var (
		p                models.Product
		catName, catSlug *string
		subName, subSlug *string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.ShortDescription, &p.BasePrice, &p.DeliveryFee,
		&p.Unit, &p.StockQuantity, &p.AvailabilityStatus, &p.MainImageURL, &p.CreatedAt,
		&catName, &catSlug, &subName, &subSlug); err != nil {
		return nil, err
	}
	p.Category = categoryRef(catName, catSlug)
	p.Subcategory = categoryRef(subName, subSlug)
	return &p, nil
}

func categoryRef(name, slug *string) *models.CategoryRef {
	if name == nil || slug == nil {
		return nil
	}
	return &models.CategoryRef{Name: *name, Slug: *slug}
}

// productFilterClause собирает WHERE для каталога. Значения передаются только параметрами.
func productFilterClause(f models.ProductFilter) (string, []any) {
	conditions := []string{"p.active = true"}
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Category != "" {
		conditions = append(conditions, "c.slug = "+next(f.Category))
	}
	if f.Subcategory != "" {
		conditions = append(conditions, "sc.slug = "+next(f.Subcategory))
	}
	if f.Search != "" {
		ph := next("%" + f.Search + "%")
		conditions = append(conditions, "(p.name ILIKE "+ph+" OR p.short_description ILIKE "+ph+")")
	}
	if f.Availability != "" {
		conditions = append(conditions, "p.availability_status = "+next(f.Availability))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// ListProducts возвращает страницу активных товаров и общее количество товаров под фильтром.
func (s *Storage) ListProducts(ctx context.Context, f models.ProductFilter) ([]*models.Product, int, error) {
	const op = "storage.ListProducts"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where, args := productFilterClause(f)

	var total int
	countQuery := `SELECT COUNT(*) ` + productJoins + ` ` + where
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	n := len(args)
	query := `SELECT ` + productListColumns + ` ` + productJoins + ` ` + where + `
			  ORDER BY p.name ASC
			  LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, f.Limit, f.Offset)

	products, err := s.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return products, total, nil
}

// FeaturedProducts возвращает доступные товары с наибольшим запасом.
func (s *Storage) FeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	const op = "storage.FeaturedProducts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + productListColumns + ` ` + productJoins + `
			  WHERE p.active = true AND p.availability_status = 'available'
			  ORDER BY p.stock_quantity DESC, p.created_at DESC
			  LIMIT $1`
	products, err := s.queryProducts(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// RelatedProducts возвращает случайные товары той же категории, кроме самого товара.
func (s *Storage) RelatedProducts(ctx context.Context, categoryID, productID string, limit int) ([]*models.Product, error) {
	const op = "storage.RelatedProducts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + productListColumns + ` ` + productJoins + `
			  WHERE p.category_id = $1 AND p.id != $2 AND p.active = true
			  ORDER BY RANDOM()
			  LIMIT $3`
	products, err := s.queryProducts(ctx, query, categoryID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *Storage) queryProducts(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Product{}
	for rows.Next() {
		p, err := scanProductListRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// ProductBySlug возвращает полную карточку активного товара.
func (s *Storage) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	const op = "storage.ProductBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.name, p.slug, p.short_description, p.long_description, p.base_price,
			      p.delivery_fee, p.unit, p.stock_quantity, p.availability_status, p.main_image_url,
			      p.gallery_images, p.origin_source, p.category_id, p.created_at,
			      c.name, c.slug, sc.name, sc.slug
			  ` + productJoins + `
			  WHERE p.slug = $1 AND p.active = true`
	var (
		p                models.Product
		gallery          []byte
		catName, catSlug *string
		subName, subSlug *string
	)
	err := s.DB.QueryRowContext(ctx, query, slug).Scan(&p.ID, &p.Name, &p.Slug, &p.ShortDescription,
		&p.LongDescription, &p.BasePrice, &p.DeliveryFee, &p.Unit, &p.StockQuantity, &p.AvailabilityStatus,
		&p.MainImageURL, &gallery, &p.OriginSource, &p.CategoryID, &p.CreatedAt,
		&catName, &catSlug, &subName, &subSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(gallery) > 0 {
		if err = json.Unmarshal(gallery, &p.GalleryImages); err != nil {
			return nil, fmt.Errorf("%s: gallery images: %w", op, err)
		}
	}
	p.Category = categoryRef(catName, catSlug)
	p.Subcategory = categoryRef(subName, subSlug)
	return &p, nil
}

// StockInfo возвращает складские данные активного товара.
func (s *Storage) StockInfo(ctx context.Context, productID string) (*models.StockInfo, error) {
	const op = "storage.StockInfo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var info models.StockInfo
	err := s.DB.QueryRowContext(ctx,
		`SELECT stock_quantity, availability_status FROM products WHERE id = $1 AND active = true`,
		productID).Scan(&info.StockQuantity, &info.AvailabilityStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrProductNotFound.WithDetails(productID))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &info, nil
}

// SearchSuggestions возвращает до limit различных названий товаров, содержащих q.
func (s *Storage) SearchSuggestions(ctx context.Context, q string, limit int) ([]string, error) {
	const op = "storage.SearchSuggestions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT DISTINCT p.name FROM products p
		 WHERE p.name ILIKE $1 AND p.active = true
		 ORDER BY p.name
		 LIMIT $2`, "%"+q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []string{}
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Categories возвращает все категории с подкатегориями.
func (s *Storage) Categories(ctx context.Context) ([]*models.Category, error) {
	const op = "storage.Categories"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.id, c.name, c.slug, c.description,
			      COALESCE(
			          json_agg(json_build_object('id', sc.id, 'name', sc.name, 'slug', sc.slug) ORDER BY sc.name)
			              FILTER (WHERE sc.id IS NOT NULL),
			          '[]'::json)
			  FROM categories c
			  LEFT JOIN subcategories sc ON c.id = sc.category_id
			  GROUP BY c.id, c.name, c.slug, c.description
			  ORDER BY c.name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Category{}
	for rows.Next() {
		var (
			c    models.Category
			subs []byte
		)
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &subs); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(subs, &c.Subcategories); err != nil {
			return nil, fmt.Errorf("%s: subcategories: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
