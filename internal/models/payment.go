package models

// Payment is a payment recorded against a bill. DateCreated and
// ResourceVersion are carried through mutation payloads untouched;
// ResourceVersion is the token callers use for stale-write detection
// at the remote store.
type Payment struct {
	UUID            string         `json:"uuid"`
	InstanceType    PaymentModeRef `json:"instanceType"`
	Amount          float64        `json:"amount"`
	AmountTendered  float64        `json:"amountTendered"`
	Attributes      []Attribute    `json:"attributes,omitempty"`
	Voided          bool           `json:"voided,omitempty"`
	VoidReason      *string        `json:"voidReason,omitempty"`
	VoidedBy        *Provider      `json:"voidedBy,omitempty"`
	DateCreated     string         `json:"dateCreated,omitempty"`
	ResourceVersion string         `json:"resourceVersion,omitempty"`
}

// PaymentModeRef is the payment mode reference embedded in a payment.
type PaymentModeRef struct {
	UUID string `json:"uuid"`
	Name string `json:"name,omitempty"`
}

// Attribute is a key/value pair attached to a payment, e.g. a mobile-money
// reference code.
type Attribute struct {
	UUID          string        `json:"uuid,omitempty"`
	Value         string        `json:"value"`
	AttributeType AttributeType `json:"attributeType"`
}

// AttributeType describes a payment attribute. Reference code attributes are
// identified by their Description.
type AttributeType struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Format      string `json:"format,omitempty"`
}

// PaymentMode is a payment method as listed by the remote service.
type PaymentMode struct {
	UUID           string          `json:"uuid"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Retired        bool            `json:"retired,omitempty"`
	AttributeTypes []AttributeType `json:"attributeTypes,omitempty"`
	SortOrder      *int            `json:"sortOrder,omitempty"`
}
