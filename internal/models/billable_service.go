package models

// BillableService is a catalog entry for a chargeable service.
type BillableService struct {
	UUID          string         `json:"uuid"`
	Name          string         `json:"name"`
	ShortName     string         `json:"shortName,omitempty"`
	ServiceStatus string         `json:"serviceStatus,omitempty"`
	ServiceType   *ServiceType   `json:"serviceType,omitempty"`
	ServicePrices []ServicePrice `json:"servicePrices,omitempty"`
}

// ServiceType labels the category a billable service belongs to.
type ServiceType struct {
	Display string `json:"display"`
}

// ServicePrice is one priced option for a billable service.
type ServicePrice struct {
	UUID        string          `json:"uuid"`
	Name        string          `json:"name,omitempty"`
	Price       float64         `json:"price"`
	PaymentMode *PaymentModeRef `json:"paymentMode,omitempty"`
}
