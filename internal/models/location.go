package models

// DeliveryPoint: пункт выдачи в локации.
type DeliveryPoint struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	ContactPhone *string `json:"contactPhone,omitempty"`
}

// Location: локация доставки, для которой заданы цены тарифов.
type Location struct {
	Location       string          `json:"location"`
	DisplayName    string          `json:"displayName"`
	DeliveryPoints []DeliveryPoint `json:"deliveryPoints"`
}
