package tenant

// Action identifies an operation checked by Authorize. Keeping these as a
// fixed enumeration (rather than free-form strings scattered across
// handlers) is what spec §9 asks for in place of decorator-style guards.
type Action string

const (
	ActionDocumentsUpload   Action = "documents:upload"
	ActionDocumentsValidate Action = "documents:validate"
	ActionDocumentsReject   Action = "documents:reject"
	ActionDocumentsOverride Action = "documents:override_issue"
	ActionShipmentsRead     Action = "shipments:read"
	ActionShipmentsWrite    Action = "shipments:write"
	ActionShipmentsArchive  Action = "shipments:archive"
	ActionShipmentsReopen   Action = "shipments:reopen"
	ActionInvitationsSend   Action = "invitations:send"
	ActionAuditPackRead     Action = "audit_packs:read"
	ActionOrgManage         Action = "organizations:manage"
)

// ResourceTenancy is the minimal shape Authorize needs from a resource: its
// owning tenant, and — for shipments — the optional buyer-side tenant that
// gets read-only access per spec §3/§4.1.
type ResourceTenancy struct {
	OwnerOrgID string
	// BuyerOrgID is set only for shipments with a buyer-side read grant.
	BuyerOrgID string
}

// Decision is the result of Authorize: either allowed, or a reason to
// surface (mapped to 403/404 by the API middleware — spec prefers 404 to
// avoid tenant enumeration).
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// readActions is the set of actions a buyer-side read-only grant permits.
var readActions = map[Action]struct{}{
	ActionShipmentsRead: {},
	ActionAuditPackRead: {},
}

// Authorize is the single authorization predicate every API handler and
// service mutation calls at its boundary: authorize(context, action,
// resource) -> decision, replacing scattered per-handler role checks.
func Authorize(tc Context, action Action, res ResourceTenancy) Decision {
	if tc.IsSystemAdmin {
		return allow()
	}
	if tc.OrganizationID == "" {
		return deny("no tenant context")
	}

	if tc.OrganizationID == res.OwnerOrgID {
		if requiresPermission(action) && !tc.HasPermission(string(action)) {
			return deny("missing permission " + string(action))
		}
		return allow()
	}

	// Buyer-side read-only grant: only applies to the fixed read action set,
	// and only when the resource actually names this org as its buyer.
	if res.BuyerOrgID != "" && tc.OrganizationID == res.BuyerOrgID {
		if _, ok := readActions[action]; ok {
			return allow()
		}
		return deny("buyer organizations have read-only access")
	}

	return deny("cross-tenant access")
}

// requiresPermission reports whether an action is gated by an explicit
// permission slug beyond plain tenant membership. Actions not listed here
// are allowed to any member of the owning organization.
func requiresPermission(a Action) bool {
	switch a {
	case ActionDocumentsValidate, ActionDocumentsOverride, ActionShipmentsArchive,
		ActionShipmentsReopen, ActionInvitationsSend, ActionOrgManage:
		return true
	default:
		return false
	}
}
