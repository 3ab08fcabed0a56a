package db

import "github.com/jackc/pgx/v5/pgtype"

type CreateOrganizationParams struct {
	ID       pgtype.UUID
	Name     string
	Slug     string
	Type     string
	Status   string
	Contact  []byte
	Address  []byte
	Settings []byte
}

type UpdateOrganizationStatusParams struct {
	ID     pgtype.UUID
	Status string
}

type CreateUserParams struct {
	ID             pgtype.UUID
	Email          string
	PasswordHash   string
	FullName       string
	Role           string
	OrganizationID pgtype.UUID
}

type CreateMembershipParams struct {
	ID             pgtype.UUID
	UserID         pgtype.UUID
	OrganizationID pgtype.UUID
	OrgRole        string
	IsPrimary      bool
	Status         string
}

type UpdateMembershipStatusParams struct {
	ID     pgtype.UUID
	Status string
}

type CreateInvitationParams struct {
	ID             pgtype.UUID
	OrganizationID pgtype.UUID
	Email          string
	OrgRole        string
	TokenHash      string
	ExpiresAt      pgtype.Timestamptz
	CreatedBy      pgtype.UUID
}

type UpdateInvitationTokenParams struct {
	ID        pgtype.UUID
	TokenHash string
	ExpiresAt pgtype.Timestamptz
}

type CreateShipmentParams struct {
	ID                  pgtype.UUID
	OrganizationID      pgtype.UUID
	BuyerOrganizationID pgtype.UUID
	Reference           string
	ProductType         string
	Incoterms           pgtype.Text
	Status              string
}

type UpdateShipmentStatusParams struct {
	ID     pgtype.UUID
	Status string
}

type UpdateShipmentBOLFieldsParams struct {
	ID              pgtype.UUID
	BLNumber        pgtype.Text
	ContainerNumber pgtype.Text
	Vessel          pgtype.Text
	Voyage          pgtype.Text
	POLCode         pgtype.Text
	POLName         pgtype.Text
	PODCode         pgtype.Text
	PODName         pgtype.Text
	ATD             pgtype.Timestamptz
}

type CreateProductParams struct {
	ID              pgtype.UUID
	ShipmentID      pgtype.UUID
	OrganizationID  pgtype.UUID
	HSCode          string
	Description     string
	QuantityNetKg   float64
	QuantityGrossKg float64
}

type CreateOriginParams struct {
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

type CreateDocumentParams struct {
	ID              pgtype.UUID
	ShipmentID      pgtype.UUID
	OrganizationID  pgtype.UUID
	DocumentType    string
	Status          string
	FileName        string
	FilePath        string
	FileSize        int64
	MimeType        string
	Version         int32
	IsPrimary       bool
	SupersedesID    pgtype.UUID
}

type GetPrimaryDocumentParams struct {
	ShipmentID   pgtype.UUID
	DocumentType string
}

type UpdateDocumentStatusParams struct {
	ID     pgtype.UUID
	Status string
}

type SetDocumentCanonicalDataParams struct {
	ID                       pgtype.UUID
	CanonicalData            []byte
	ReferenceNumber          pgtype.Text
	IssueDate                pgtype.Timestamptz
	ExpiryDate               pgtype.Timestamptz
	IssuingAuthority         pgtype.Text
	ClassificationConfidence float64
	ParsedAt                 pgtype.Timestamptz
}

type ClearPrimaryDocumentParams struct {
	ShipmentID   pgtype.UUID
	DocumentType string
}

type InsertDocumentIssueParams struct {
	ID            pgtype.UUID
	DocumentID    pgtype.UUID
	ShipmentID    pgtype.UUID
	RuleID        string
	RuleName      string
	Severity      string
	Message       string
	Field         string
	ExpectedValue string
	ActualValue   string
}

type OverrideDocumentIssueParams struct {
	ID             pgtype.UUID
	OverriddenBy   pgtype.UUID
	OverrideReason string
}

type InsertComplianceResultParams struct {
	ID         pgtype.UUID
	DocumentID pgtype.UUID
	RuleID     string
	Passed     bool
	Severity   string
	Message    string
}

type GetReferenceRegistryEntryParams struct {
	ShipmentID      pgtype.UUID
	ReferenceNumber string
}

type UpsertReferenceRegistryEntryParams struct {
	ShipmentID      pgtype.UUID
	ReferenceNumber string
	DocumentType    string
}

type InsertContainerEventParams struct {
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
}

type InsertAuditLogParams struct {
	ID             pgtype.UUID
	OrganizationID pgtype.UUID
	UserID         pgtype.UUID
	Action         string
	ResourceType   string
	ResourceID     string
	Details        []byte
	RequestID      string
}

type InsertOutboxEventParams struct {
	ID             pgtype.UUID
	OrganizationID pgtype.UUID
	AggregateType  string
	AggregateID    string
	EventType      string
	Payload        []byte
}

type InsertNotificationParams struct {
	ID             pgtype.UUID
	OrganizationID pgtype.UUID
	UserID         pgtype.UUID
	EventType      string
	Channel        string
	Title          string
	Body           string
	Payload        []byte
	Status         string
}

type ListNotificationsForUserParams struct {
	UserID pgtype.UUID
	Limit  int32
}

type MarkNotificationReadParams struct {
	ID     pgtype.UUID
	UserID pgtype.UUID
}

type GetNotificationPreferenceParams struct {
	UserID    pgtype.UUID
	EventType string
	Channel   string
}

type UpsertNotificationPreferenceParams struct {
	UserID    pgtype.UUID
	EventType string
	Channel   string
	Enabled   bool
}
