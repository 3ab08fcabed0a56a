package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the hand-written sqlc-style contract every domain service
// depends on instead of a concrete *pgxpool.Pool, so tests can substitute a
// mock (see trm-service's mockQuerier / dictionary_consumer_test.go).
type Querier interface {
	// Organizations
	CreateOrganization(ctx context.Context, arg CreateOrganizationParams) (Organization, error)
	GetOrganizationByID(ctx context.Context, id pgtype.UUID) (Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error)
	CountPlatformOrganizations(ctx context.Context) (int64, error)
	UpdateOrganizationStatus(ctx context.Context, arg UpdateOrganizationStatusParams) error

	// Users & memberships
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (User, error)
	CreateMembership(ctx context.Context, arg CreateMembershipParams) (OrganizationMembership, error)
	GetPrimaryMembership(ctx context.Context, userID pgtype.UUID) (OrganizationMembership, error)
	UpdateMembershipStatus(ctx context.Context, arg UpdateMembershipStatusParams) error
	CountActiveAdmins(ctx context.Context, organizationID pgtype.UUID) (int64, error)
	ListMembershipsByOrg(ctx context.Context, organizationID pgtype.UUID) ([]OrganizationMembership, error)

	// Invitations
	CreateInvitation(ctx context.Context, arg CreateInvitationParams) (Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, tokenHash string) (Invitation, error)
	MarkInvitationAccepted(ctx context.Context, id pgtype.UUID) error
	MarkInvitationRevoked(ctx context.Context, id pgtype.UUID) error
	UpdateInvitationToken(ctx context.Context, arg UpdateInvitationTokenParams) error
	ListPendingInvitationsByOrg(ctx context.Context, organizationID pgtype.UUID) ([]Invitation, error)

	// Shipments
	CreateShipment(ctx context.Context, arg CreateShipmentParams) (Shipment, error)
	GetShipment(ctx context.Context, id pgtype.UUID) (Shipment, error)
	ListShipmentsByOrg(ctx context.Context, organizationID pgtype.UUID) ([]Shipment, error)
	ListShipmentsForBuyer(ctx context.Context, buyerOrganizationID pgtype.UUID) ([]Shipment, error)
	UpdateShipmentStatus(ctx context.Context, arg UpdateShipmentStatusParams) error
	UpdateShipmentBOLFields(ctx context.Context, arg UpdateShipmentBOLFieldsParams) error
	ListShipmentsByStatuses(ctx context.Context, statuses []string) ([]Shipment, error)

	// Products & origins
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	GetProduct(ctx context.Context, id pgtype.UUID) (Product, error)
	ListProductsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]Product, error)
	CreateOrigin(ctx context.Context, arg CreateOriginParams) (Origin, error)
	ListOriginsByProduct(ctx context.Context, productID pgtype.UUID) ([]Origin, error)
	ListOriginsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]Origin, error)

	// Documents
	CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error)
	GetDocument(ctx context.Context, id pgtype.UUID) (Document, error)
	GetPrimaryDocument(ctx context.Context, arg GetPrimaryDocumentParams) (Document, error)
	ListDocumentsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]Document, error)
	UpdateDocumentStatus(ctx context.Context, arg UpdateDocumentStatusParams) error
	SetDocumentCanonicalData(ctx context.Context, arg SetDocumentCanonicalDataParams) error
	ClearPrimaryDocument(ctx context.Context, arg ClearPrimaryDocumentParams) error
	ListExpiredCandidateDocuments(ctx context.Context, now pgtype.Timestamptz) ([]Document, error)

	InsertDocumentIssue(ctx context.Context, arg InsertDocumentIssueParams) (DocumentIssue, error)
	ListDocumentIssues(ctx context.Context, documentID pgtype.UUID) ([]DocumentIssue, error)
	OverrideDocumentIssue(ctx context.Context, arg OverrideDocumentIssueParams) error
	DeleteDocumentIssuesForDocument(ctx context.Context, documentID pgtype.UUID) error

	InsertComplianceResult(ctx context.Context, arg InsertComplianceResultParams) (ComplianceResult, error)
	ListComplianceResults(ctx context.Context, documentID pgtype.UUID) ([]ComplianceResult, error)

	GetReferenceRegistryEntry(ctx context.Context, arg GetReferenceRegistryEntryParams) (ReferenceRegistryEntry, error)
	UpsertReferenceRegistryEntry(ctx context.Context, arg UpsertReferenceRegistryEntryParams) error

	// Tracking
	InsertContainerEvent(ctx context.Context, arg InsertContainerEventParams) (ContainerEvent, bool, error)
	ListContainerEventsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]ContainerEvent, error)
	GetLatestContainerEvent(ctx context.Context, shipmentID pgtype.UUID) (ContainerEvent, error)

	// Audit log & outbox
	InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) error
	InsertOutboxEvent(ctx context.Context, arg InsertOutboxEventParams) (OutboxEvent, error)
	ListUnpublishedOutboxEvents(ctx context.Context, limit int32) ([]OutboxEvent, error)
	MarkOutboxEventPublished(ctx context.Context, id pgtype.UUID) error

	// Notifications
	InsertNotification(ctx context.Context, arg InsertNotificationParams) (Notification, error)
	ListNotificationsForUser(ctx context.Context, arg ListNotificationsForUserParams) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, arg MarkNotificationReadParams) error
	MarkNotificationDelivered(ctx context.Context, id pgtype.UUID) error
	GetNotificationPreference(ctx context.Context, arg GetNotificationPreferenceParams) (bool, error)
	UpsertNotificationPreference(ctx context.Context, arg UpsertNotificationPreferenceParams) error
	ListPendingEmailRecipients(ctx context.Context, limit int32) ([]PendingEmailRecipient, error)
}
