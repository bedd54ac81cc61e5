package records

import "github.com/PratikDhanave/paid-events-service/internal/store"

// Collection describes one group of records sharing a table and identity attribute.
type Collection struct {
	// Name is the URL segment, e.g. "ticketevents".
	Name string
	// Table is the backing store table.
	Table string
	// IdentityAttribute uniquely locates a record and is never updated.
	IdentityAttribute string
}

// Built-in collection names and identity attributes.
const (
	TicketEvents = "ticketevents"
	MerchEvents  = "merchevents"

	TicketIdentity = "event_id"
	MerchIdentity  = "item_id"
)

// Locate turns an id into the store key of c.
func (c Collection) Locate(id string) (store.Key, error) {
	if id == "" {
		return store.Key{}, &ValidationError{Message: "id is required"}
	}
	return store.Key{Attribute: c.IdentityAttribute, Value: id}, nil
}

// IsIdentity reports whether attribute is the identity attribute of c.
func (c Collection) IsIdentity(attribute string) bool {
	return attribute == c.IdentityAttribute
}
