package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO products (id, shipment_id, organization_id, hs_code, description, quantity_net_kg, quantity_gross_kg)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, shipment_id, organization_id, hs_code, description, quantity_net_kg, quantity_gross_kg`,
		arg.ID, arg.ShipmentID, arg.OrganizationID, arg.HSCode, arg.Description, arg.QuantityNetKg, arg.QuantityGrossKg)
	var p Product
	err := row.Scan(&p.ID, &p.ShipmentID, &p.OrganizationID, &p.HSCode, &p.Description, &p.QuantityNetKg, &p.QuantityGrossKg)
	return p, err
}

func (q *Queries) GetProduct(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, shipment_id, organization_id, hs_code, description, quantity_net_kg, quantity_gross_kg
		FROM products WHERE id = $1`, id)
	var p Product
	err := row.Scan(&p.ID, &p.ShipmentID, &p.OrganizationID, &p.HSCode, &p.Description, &p.QuantityNetKg, &p.QuantityGrossKg)
	return p, err
}

func (q *Queries) ListProductsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]Product, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, shipment_id, organization_id, hs_code, description, quantity_net_kg, quantity_gross_kg
		FROM products WHERE shipment_id = $1 ORDER BY hs_code`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ShipmentID, &p.OrganizationID, &p.HSCode, &p.Description, &p.QuantityNetKg, &p.QuantityGrossKg); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) CreateOrigin(ctx context.Context, arg CreateOriginParams) (Origin, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO origins (id, shipment_id, product_id, organization_id, farm_plot_identifier, lat, lng,
			polygon, country, production_start_date, production_end_date, deforestation_free_statement)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, shipment_id, product_id, organization_id, farm_plot_identifier, lat, lng,
			polygon, country, production_start_date, production_end_date, deforestation_free_statement`,
		arg.ID, arg.ShipmentID, arg.ProductID, arg.OrganizationID, arg.FarmPlotIdentifier, arg.Lat, arg.Lng,
		arg.Polygon, arg.Country, arg.ProductionStartDate, arg.ProductionEndDate, arg.DeforestationFreeStatement)
	var o Origin
	err := row.Scan(&o.ID, &o.ShipmentID, &o.ProductID, &o.OrganizationID, &o.FarmPlotIdentifier, &o.Lat, &o.Lng,
		&o.Polygon, &o.Country, &o.ProductionStartDate, &o.ProductionEndDate, &o.DeforestationFreeStatement)
	return o, err
}

func (q *Queries) ListOriginsByProduct(ctx context.Context, productID pgtype.UUID) ([]Origin, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, shipment_id, product_id, organization_id, farm_plot_identifier, lat, lng,
			polygon, country, production_start_date, production_end_date, deforestation_free_statement
		FROM origins WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrigins(rows)
}

func (q *Queries) ListOriginsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]Origin, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, shipment_id, product_id, organization_id, farm_plot_identifier, lat, lng,
			polygon, country, production_start_date, production_end_date, deforestation_free_statement
		FROM origins WHERE shipment_id = $1`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrigins(rows)
}

func scanOrigins(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]Origin, error) {
	var out []Origin
	for rows.Next() {
		var o Origin
		if err := rows.Scan(&o.ID, &o.ShipmentID, &o.ProductID, &o.OrganizationID, &o.FarmPlotIdentifier, &o.Lat, &o.Lng,
			&o.Polygon, &o.Country, &o.ProductionStartDate, &o.ProductionEndDate, &o.DeforestationFreeStatement); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
