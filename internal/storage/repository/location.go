package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Locations возвращает локации, для которых заданы действующие цены тарифов,
// вместе с активными пунктами выдачи.
func (s *Storage) Locations(ctx context.Context) ([]*models.Location, error) {
	const op = "storage.Locations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT pp.location, dp.id, dp.name, dp.address
			  FROM package_pricing pp
			  LEFT JOIN delivery_points dp ON pp.location = dp.location AND dp.active = true
			  WHERE pp.active = true
			  ORDER BY pp.location, dp.name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Location{}
	byName := make(map[string]*models.Location)
	for rows.Next() {
		var (
			location          string
			id, name, address *string
		)
		if err = rows.Scan(&location, &id, &name, &address); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		loc, ok := byName[location]
		if !ok {
			loc = &models.Location{
				Location:       location,
				DisplayName:    models.DisplayName(location),
				DeliveryPoints: []models.DeliveryPoint{},
			}
			byName[location] = loc
			result = append(result, loc)
		}
		if id != nil {
			loc.DeliveryPoints = append(loc.DeliveryPoints, models.DeliveryPoint{
				ID:      *id,
				Name:    *name,
				Address: *address,
			})
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeliveryPoints возвращает активные пункты выдачи в локации.
func (s *Storage) DeliveryPoints(ctx context.Context, location string) ([]*models.DeliveryPoint, error) {
	const op = "storage.DeliveryPoints"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, address, contact_phone FROM delivery_points
		 WHERE location = $1 AND active = true
		 ORDER BY name`, location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.DeliveryPoint{}
	for rows.Next() {
		var dp models.DeliveryPoint
		if err = rows.Scan(&dp.ID, &dp.Name, &dp.Address, &dp.ContactPhone); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &dp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// LocationExists сообщает, продаются ли тарифы в локации.
func (s *Storage) LocationExists(ctx context.Context, location string) (bool, error) {
	const op = "storage.LocationExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM package_pricing WHERE location = $1 AND active = true)`,
		location).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
