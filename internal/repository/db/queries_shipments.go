package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) CreateShipment(ctx context.Context, arg CreateShipmentParams) (Shipment, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO shipments (id, organization_id, buyer_organization_id, reference, product_type, incoterms, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, organization_id, buyer_organization_id, reference, container_number, product_type, bl_number,
			vessel, voyage, pol_code, pol_name, pod_code, pod_name, etd, eta, atd, ata, incoterms, status,
			is_historical, created_at, updated_at`,
		arg.ID, arg.OrganizationID, arg.BuyerOrganizationID, arg.Reference, arg.ProductType, arg.Incoterms, arg.Status)
	return scanShipment(row)
}

func (q *Queries) GetShipment(ctx context.Context, id pgtype.UUID) (Shipment, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, organization_id, buyer_organization_id, reference, container_number, product_type, bl_number,
			vessel, voyage, pol_code, pol_name, pod_code, pod_name, etd, eta, atd, ata, incoterms, status,
			is_historical, created_at, updated_at
		FROM shipments WHERE id = $1`, id)
	return scanShipment(row)
}

func (q *Queries) ListShipmentsByOrg(ctx context.Context, organizationID pgtype.UUID) ([]Shipment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, organization_id, buyer_organization_id, reference, container_number, product_type, bl_number,
			vessel, voyage, pol_code, pol_name, pod_code, pod_name, etd, eta, atd, ata, incoterms, status,
			is_historical, created_at, updated_at
		FROM shipments WHERE organization_id = $1 ORDER BY created_at DESC`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShipments(rows)
}

func (q *Queries) ListShipmentsForBuyer(ctx context.Context, buyerOrganizationID pgtype.UUID) ([]Shipment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, organization_id, buyer_organization_id, reference, container_number, product_type, bl_number,
			vessel, voyage, pol_code, pol_name, pod_code, pod_name, etd, eta, atd, ata, incoterms, status,
			is_historical, created_at, updated_at
		FROM shipments WHERE buyer_organization_id = $1 ORDER BY created_at DESC`, buyerOrganizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShipments(rows)
}

func (q *Queries) UpdateShipmentStatus(ctx context.Context, arg UpdateShipmentStatusParams) error {
	_, err := q.db.Exec(ctx, `UPDATE shipments SET status = $2, updated_at = now() WHERE id = $1`, arg.ID, arg.Status)
	return err
}

func (q *Queries) UpdateShipmentBOLFields(ctx context.Context, arg UpdateShipmentBOLFieldsParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE shipments SET
			bl_number = $2, container_number = $3, vessel = $4, voyage = $5,
			pol_code = $6, pol_name = $7, pod_code = $8, pod_name = $9, atd = $10, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.BLNumber, arg.ContainerNumber, arg.Vessel, arg.Voyage,
		arg.POLCode, arg.POLName, arg.PODCode, arg.PODName, arg.ATD)
	return err
}

func (q *Queries) ListShipmentsByStatuses(ctx context.Context, statuses []string) ([]Shipment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, organization_id, buyer_organization_id, reference, container_number, product_type, bl_number,
			vessel, voyage, pol_code, pol_name, pod_code, pod_name, etd, eta, atd, ata, incoterms, status,
			is_historical, created_at, updated_at
		FROM shipments WHERE status = ANY($1) AND is_historical = false ORDER BY updated_at ASC`, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShipments(rows)
}

func scanShipment(row pgx.Row) (Shipment, error) {
	var s Shipment
	err := row.Scan(&s.ID, &s.OrganizationID, &s.BuyerOrganizationID, &s.Reference, &s.ContainerNumber,
		&s.ProductType, &s.BLNumber, &s.Vessel, &s.Voyage, &s.POLCode, &s.POLName, &s.PODCode, &s.PODName,
		&s.ETD, &s.ETA, &s.ATD, &s.ATA, &s.Incoterms, &s.Status, &s.IsHistorical, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanShipments(rows pgx.Rows) ([]Shipment, error) {
	var out []Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
