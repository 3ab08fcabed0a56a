// Package db is the sqlc-style query layer shared by every domain package:
// hand-written in the same shape sqlc would generate (Querier interface +
// a *Queries implementation bound to a pgx connection/pool/tx), matching
// the convention every arc-self app uses (see trm-service's
// internal/repository/db). Models are plain structs; nullable/foreign-key
// columns use pgx's pgtype wrappers so a zero value is distinguishable
// from an explicit NULL.
package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Organization struct {
	ID        pgtype.UUID
	Name      string
	Slug      string
	Type      string
	Status    string
	Contact   []byte
	Address   []byte
	Settings  []byte
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type User struct {
	ID                pgtype.UUID
	Email             string
	PasswordHash      string
	FullName          string
	Role              string
	OrganizationID    pgtype.UUID
	IsActive          bool
	DeletedAt         pgtype.Timestamptz
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

type OrganizationMembership struct {
	ID             pgtype.UUID
	UserID         pgtype.UUID
	OrganizationID pgtype.UUID
	OrgRole        string
	IsPrimary      bool
	Status         string
	CreatedAt      pgtype.Timestamptz
}

type Invitation struct {
	ID             pgtype.UUID
	OrganizationID pgtype.UUID
	Email          string
	OrgRole        string
	TokenHash      string
	Status         string
	ExpiresAt      pgtype.Timestamptz
	CreatedBy      pgtype.UUID
	CreatedAt      pgtype.Timestamptz
}

type Shipment struct {
	ID                  pgtype.UUID
	OrganizationID      pgtype.UUID
	BuyerOrganizationID pgtype.UUID
	Reference           string
	ContainerNumber     pgtype.Text
	ProductType         string
	BLNumber            pgtype.Text
	Vessel              pgtype.Text
	Voyage              pgtype.Text
	POLCode             pgtype.Text
	POLName             pgtype.Text
	PODCode             pgtype.Text
	PODName             pgtype.Text
	ETD                 pgtype.Timestamptz
	ETA                 pgtype.Timestamptz
	ATD                 pgtype.Timestamptz
	ATA                 pgtype.Timestamptz
	Incoterms           pgtype.Text
	Status              string
	IsHistorical        bool
	CreatedAt           pgtype.Timestamptz
	UpdatedAt           pgtype.Timestamptz
}

type Product struct {
	ID              pgtype.UUID
	ShipmentID      pgtype.UUID
	OrganizationID  pgtype.UUID
	HSCode          string
	Description     string
	QuantityNetKg   float64
	QuantityGrossKg float64
}

type Origin struct {
	ID                         pgtype.UUID
	ShipmentID                 pgtype.UUID
	ProductID                  pgtype.UUID
	OrganizationID             pgtype.UUID
	FarmPlotIdentifier         string
	Lat                        float64
	Lng                        float64
	Polygon                    []byte
	Country                    string
	ProductionStartDate        pgtype.Timestamptz
	ProductionEndDate          pgtype.Timestamptz
	DeforestationFreeStatement string
}

type Document struct {
	ID                       pgtype.UUID
	ShipmentID               pgtype.UUID
	OrganizationID           pgtype.UUID
	DocumentType             string
	Status                   string
	FileName                 string
	FilePath                 string
	FileSize                 int64
	MimeType                 string
	ReferenceNumber          pgtype.Text
	IssueDate                pgtype.Timestamptz
	ExpiryDate               pgtype.Timestamptz
	IssuingAuthority         pgtype.Text
	CanonicalData            []byte
	Version                  int32
	IsPrimary                bool
	SupersedesID             pgtype.UUID
	ClassificationConfidence float64
	ParsedAt                 pgtype.Timestamptz
	LastValidatedAt          pgtype.Timestamptz
	CreatedAt                pgtype.Timestamptz
	UpdatedAt                pgtype.Timestamptz
}

type DocumentContent struct {
	ID              pgtype.UUID
	DocumentID      pgtype.UUID
	DocumentType    string
	Status          string
	PageStart       int32
	PageEnd         int32
	ReferenceNumber pgtype.Text
	DetectedFields  []byte
	Confidence      float64
	DetectionMethod string
}

type DocumentIssue struct {
	ID             pgtype.UUID
	DocumentID     pgtype.UUID
	ShipmentID     pgtype.UUID
	RuleID         string
	RuleName       string
	Severity       string
	Message        string
	Field          string
	ExpectedValue  string
	ActualValue    string
	IsOverridden   bool
	OverriddenBy   pgtype.UUID
	OverrideReason string
	CreatedAt      pgtype.Timestamptz
}

type ComplianceResult struct {
	ID         pgtype.UUID
	DocumentID pgtype.UUID
	RuleID     string
	Passed     bool
	Severity   string
	Message    string
	CheckedAt  pgtype.Timestamptz
}

type ContainerEvent struct {
	ID           pgtype.UUID
	ShipmentID   pgtype.UUID
	EventStatus  string
	EventTime    pgtype.Timestamptz
	LocationCode string
	LocationName string
	Vessel       string
	Voyage       string
	Source       string
	RawPayload   []byte
	CreatedAt    pgtype.Timestamptz
}

type ReferenceRegistryEntry struct {
	ShipmentID      pgtype.UUID
	ReferenceNumber string
	DocumentType    string
	FirstSeenAt     pgtype.Timestamptz
}

type AuditLog struct {
	ID             pgtype.UUID
	Timestamp      pgtype.Timestamptz
	OrganizationID pgtype.UUID
	UserID         pgtype.UUID
	Action         string
	ResourceType   string
	ResourceID     string
	Details        []byte
	RequestID      string
}

type OutboxEvent struct {
	ID             pgtype.UUID
	OrganizationID pgtype.UUID
	AggregateType  string
	AggregateID    string
	EventType      string
	Payload        []byte
	CreatedAt      pgtype.Timestamptz
	PublishedAt    pgtype.Timestamptz
}

type Notification struct {
	ID             pgtype.UUID
	OrganizationID pgtype.UUID
	UserID         pgtype.UUID
	EventType      string
	Channel        string
	Title          string
	Body           string
	Payload        []byte
	Status         string
	CreatedAt      pgtype.Timestamptz
	ReadAt         pgtype.Timestamptz
}
