package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// InsertContainerEvent inserts a tracking event and reports whether it was
// new. Dedup key is (shipment_id, event_status, event_time, source); the
// 60-second tolerance window is collapsed by the caller truncating
// event_time before calling this, so the unique constraint itself can stay
// an exact-match index.
func (q *Queries) InsertContainerEvent(ctx context.Context, arg InsertContainerEventParams) (ContainerEvent, bool, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO container_events (id, shipment_id, event_status, event_time, location_code, location_name,
			vessel, voyage, source, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (shipment_id, event_status, event_time, source) DO NOTHING
		RETURNING id, shipment_id, event_status, event_time, location_code, location_name, vessel, voyage,
			source, raw_payload, created_at`,
		arg.ID, arg.ShipmentID, arg.EventStatus, arg.EventTime, arg.LocationCode, arg.LocationName,
		arg.Vessel, arg.Voyage, arg.Source, arg.RawPayload)
	var ev ContainerEvent
	err := row.Scan(&ev.ID, &ev.ShipmentID, &ev.EventStatus, &ev.EventTime, &ev.LocationCode, &ev.LocationName,
		&ev.Vessel, &ev.Voyage, &ev.Source, &ev.RawPayload, &ev.CreatedAt)
	if err == pgx.ErrNoRows {
		return ContainerEvent{}, false, nil
	}
	if err != nil {
		return ContainerEvent{}, false, err
	}
	return ev, true, nil
}

func (q *Queries) ListContainerEventsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]ContainerEvent, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, shipment_id, event_status, event_time, location_code, location_name, vessel, voyage,
			source, raw_payload, created_at
		FROM container_events WHERE shipment_id = $1 ORDER BY event_time ASC`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ContainerEvent
	for rows.Next() {
		var ev ContainerEvent
		if err := rows.Scan(&ev.ID, &ev.ShipmentID, &ev.EventStatus, &ev.EventTime, &ev.LocationCode, &ev.LocationName,
			&ev.Vessel, &ev.Voyage, &ev.Source, &ev.RawPayload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (q *Queries) GetLatestContainerEvent(ctx context.Context, shipmentID pgtype.UUID) (ContainerEvent, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, shipment_id, event_status, event_time, location_code, location_name, vessel, voyage,
			source, raw_payload, created_at
		FROM container_events WHERE shipment_id = $1 ORDER BY event_time DESC LIMIT 1`, shipmentID)
	var ev ContainerEvent
	err := row.Scan(&ev.ID, &ev.ShipmentID, &ev.EventStatus, &ev.EventTime, &ev.LocationCode, &ev.LocationName,
		&ev.Vessel, &ev.Voyage, &ev.Source, &ev.RawPayload, &ev.CreatedAt)
	return ev, err
}
