package api

// OrderStatus is the lifecycle code of an order as stored by the backend.
type OrderStatus int

const (
	OrderStatusNew  OrderStatus = 10
	OrderStatusPaid OrderStatus = 20
	OrderStatusDone OrderStatus = 30
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusNew:
		return "New"
	case OrderStatusPaid:
		return "Paid"
	case OrderStatusDone:
		return "Done"
	}
	return "Unknown"
}

// LineStatus is the shipping state of a single order line.
type LineStatus int

const (
	LineStatusProcessing LineStatus = 10
	LineStatusSent       LineStatus = 20
	LineStatusReceived   LineStatus = 30
	LineStatusCancelled  LineStatus = 40
)

func (s LineStatus) String() string {
	switch s {
	case LineStatusProcessing:
		return "Processing"
	case LineStatusSent:
		return "Sent"
	case LineStatusReceived:
		return "Received"
	case LineStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

type OrderLine struct {
	ID                int64      `json:"id"`
	Product           string     `json:"product"`
	Quantity          int        `json:"quantity"`
	Status            LineStatus `json:"status"`
	StatusDescription string     `json:"status_description"`
}

type Order struct {
	ID                int64       `json:"id"`
	User              string      `json:"user"`
	ShippingAddress   string      `json:"shipping_address"`
	BillingAddress    string      `json:"billing_address"`
	DateAdded         string      `json:"date_added"`
	Status            OrderStatus `json:"status"`
	StatusDescription string      `json:"status_description"`
	OrderLines        []OrderLine `json:"order_lines"`
}

// OrderListPage is one page of the paginated order list. Results hold
// pointers so that a single order can be replaced without touching its
// siblings.
type OrderListPage struct {
	Count    int      `json:"count"`
	Next     string   `json:"next,omitempty"`
	Previous string   `json:"previous,omitempty"`
	Results  []*Order `json:"results"`
}

type DayCount struct {
	OrderDay string `json:"order_day"`
	OrderNum int    `json:"order_num"`
}

type ProductCount struct {
	ProductName string `json:"product_name"`
	PurchaseNum int    `json:"purchase_num"`
}

type staffResponse struct {
	IsStaff bool `json:"is_staff"`
}

type lineUpdateRequest struct {
	Status LineStatus `json:"status"`
}
