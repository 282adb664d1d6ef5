package http

import (
	"time"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/application/usecases/queries"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/services"
)

// OrderItem is one frozen line of an order.
type OrderItem struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// OrderResponse is the wire shape of an order. Amounts are in minor units.
type OrderResponse struct {
	ID                   string      `json:"id"`
	OrderNumber          string      `json:"orderNumber"`
	StudentID            string      `json:"studentId"`
	RestaurantID         string      `json:"restaurantId"`
	RestaurantName       string      `json:"restaurantName"`
	RiderID              *string     `json:"riderId,omitempty"`
	Items                []OrderItem `json:"items"`
	Subtotal             int64       `json:"subtotal"`
	DeliveryFee          int64       `json:"deliveryFee"`
	ServiceCharge        int64       `json:"serviceCharge"`
	Total                int64       `json:"total"`
	Status               string      `json:"status"`
	PaymentReference     string      `json:"paymentReference"`
	PaymentStatus        string      `json:"paymentStatus"`
	PaymentMethod        string      `json:"paymentMethod"`
	DeliveryAddress      string      `json:"deliveryAddress"`
	DeliveryInstructions string      `json:"deliveryInstructions,omitempty"`
	ContactPhone         string      `json:"contactPhone"`
	RejectedAt           *time.Time  `json:"rejectedAt,omitempty"`
	RejectionReason      string      `json:"rejectionReason,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

func toOrderResponse(s order.Snapshot) OrderResponse {
	items := make([]OrderItem, len(s.Items))
	for i, item := range s.Items {
		items[i] = OrderItem{
			ItemID:   item.MenuItemID,
			Name:     item.Name,
			Price:    item.UnitPrice.Int64(),
			Quantity: item.Quantity,
		}
	}

	var riderID *string
	if s.RiderID != nil {
		id := s.RiderID.String()
		riderID = &id
	}

	return OrderResponse{
		ID:                   s.ID.String(),
		OrderNumber:          s.Number.String(),
		StudentID:            s.StudentID.String(),
		RestaurantID:         s.RestaurantID.String(),
		RestaurantName:       s.RestaurantName,
		RiderID:              riderID,
		Items:                items,
		Subtotal:             s.Subtotal.Int64(),
		DeliveryFee:          s.DeliveryFee.Int64(),
		ServiceCharge:        s.ServiceCharge.Int64(),
		Total:                s.Total.Int64(),
		Status:               s.Status.String(),
		PaymentReference:     s.Payment.Reference,
		PaymentStatus:        string(s.Payment.Status),
		PaymentMethod:        s.Payment.Method,
		DeliveryAddress:      s.Delivery.Address,
		DeliveryInstructions: s.Delivery.Instructions,
		ContactPhone:         s.Delivery.ContactPhone,
		RejectedAt:           s.RejectedAt,
		RejectionReason:      s.RejectionReason,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// TransitionRequest is the body of POST /orders/:id/transitions.
type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// AssignRequest is the body of an admin push assignment.
type AssignRequest struct {
	RiderID string `json:"riderId"`
}

// CartLineRequest is one cart line of a settlement.
type CartLineRequest struct {
	RestaurantID   string `json:"restaurantId"`
	RestaurantName string `json:"restaurantName"`
	ItemID         string `json:"itemId"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Quantity       int    `json:"quantity"`
}

// SettlementRequest is the body of POST /settlements, used by internal callers
// that verified the payment themselves.
type SettlementRequest struct {
	PaymentReference     string            `json:"paymentReference"`
	PaymentMethod        string            `json:"paymentMethod"`
	PaidAmount           int64             `json:"paidAmount"`
	StudentID            string            `json:"studentId"`
	Cart                 []CartLineRequest `json:"cart"`
	DeliveryAddress      string            `json:"deliveryAddress"`
	DeliveryInstructions string            `json:"deliveryInstructions"`
	ContactPhone         string            `json:"contactPhone"`
}

func (r SettlementRequest) toParams() (commands.MaterializeParams, error) {
	studentID, err := kernel.UUIDFromString(r.StudentID)
	if err != nil {
		return commands.MaterializeParams{}, err
	}

	lines := make([]services.CartLine, 0, len(r.Cart))
	for _, l := range r.Cart {
		restaurantID, idErr := kernel.UUIDFromString(l.RestaurantID)
		if idErr != nil {
			return commands.MaterializeParams{}, idErr
		}
		lines = append(lines, services.CartLine{
			RestaurantID:   restaurantID,
			RestaurantName: l.RestaurantName,
			ItemID:         l.ItemID,
			Name:           l.Name,
			Price:          kernel.Money(l.Price),
			Quantity:       l.Quantity,
		})
	}

	return commands.MaterializeParams{
		PaymentReference: r.PaymentReference,
		PaymentMethod:    r.PaymentMethod,
		PaidAmount:       kernel.Money(r.PaidAmount),
		StudentID:        studentID,
		Cart:             lines,
		Delivery: order.Delivery{
			Address:      r.DeliveryAddress,
			Instructions: r.DeliveryInstructions,
			ContactPhone: r.ContactPhone,
		},
	}, nil
}

// SkippedRestaurant explains why part of a cart produced no order.
type SkippedRestaurant struct {
	RestaurantID string `json:"restaurantId"`
	Name         string `json:"name"`
	Reason       string `json:"reason"`
}

// FailedRestaurant is a restaurant whose order could not be stored.
type FailedRestaurant struct {
	RestaurantID string `json:"restaurantId"`
	Error        string `json:"error"`
}

// SettlementResponse lists the orders of a payment. Failed is set when some
// restaurant orders could not be created.
type SettlementResponse struct {
	Orders   []OrderResponse     `json:"orders"`
	Skipped  []SkippedRestaurant `json:"skipped"`
	Failed   []FailedRestaurant  `json:"failed,omitempty"`
	Replayed bool                `json:"replayed"`
}

func toSettlementResponse(r commands.MaterializationResult) SettlementResponse {
	resp := SettlementResponse{
		Orders:   make([]OrderResponse, len(r.Orders)),
		Skipped:  make([]SkippedRestaurant, len(r.Skipped)),
		Replayed: r.Replayed,
	}
	for i, o := range r.Orders {
		resp.Orders[i] = toOrderResponse(o.Snapshot())
	}
	for i, s := range r.Skipped {
		resp.Skipped[i] = SkippedRestaurant{RestaurantID: s.RestaurantID.String(), Name: s.Name, Reason: s.Reason}
	}
	for _, f := range r.Failed {
		resp.Failed = append(resp.Failed, FailedRestaurant{RestaurantID: f.RestaurantID.String(), Error: f.Err.Error()})
	}
	return resp
}

// PoolOrder is an order waiting for a rider.
type PoolOrder struct {
	ID              string    `json:"id"`
	OrderNumber     string    `json:"orderNumber"`
	RestaurantID    string    `json:"restaurantId"`
	RestaurantName  string    `json:"restaurantName"`
	Status          string    `json:"status"`
	Total           int64     `json:"total"`
	DeliveryFee     int64     `json:"deliveryFee"`
	DeliveryAddress string    `json:"deliveryAddress"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toPoolOrders(pool []queries.PoolOrderResponse) []PoolOrder {
	resp := make([]PoolOrder, len(pool))
	for i, p := range pool {
		resp[i] = PoolOrder{
			ID:              p.ID.String(),
			OrderNumber:     p.OrderNumber,
			RestaurantID:    p.RestaurantID.String(),
			RestaurantName:  p.RestaurantName,
			Status:          p.Status.String(),
			Total:           p.Total.Int64(),
			DeliveryFee:     p.DeliveryFee.Int64(),
			DeliveryAddress: p.DeliveryAddress,
			CreatedAt:       p.CreatedAt,
		}
	}
	return resp
}

// Rider is a rider who can take a delivery now.
type Rider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryEntry is one status change of an order.
type HistoryEntry struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorRole string    `json:"actorRole"`
	ActorID   string    `json:"actorId"`
	Note      string    `json:"note,omitempty"`
	At        time.Time `json:"at"`
}

func toHistory(entries []queries.HistoryEntryResponse) []HistoryEntry {
	resp := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		resp[i] = HistoryEntry{
			From:      e.From.String(),
			To:        e.To.String(),
			ActorRole: e.ActorRole.String(),
			ActorID:   e.ActorID.String(),
			Note:      e.Note,
			At:        e.At,
		}
	}
	return resp
}

// WebhookEvent is the part of a gateway webhook the service reads.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}
