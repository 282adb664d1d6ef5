package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/pkg/errs"
)

// PaymentStatus records whether the gateway settled the order.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "PAID"
	PaymentUnpaid PaymentStatus = "UNPAID"
)

// Payment holds the gateway reference the order was materialized from.
type Payment struct {
	Reference string
	Status    PaymentStatus
	Method    string
}

// Delivery holds where and how the order is handed to the student.
type Delivery struct {
	Address      string
	Instructions string
	ContactPhone string
}

// Pricing holds the platform-wide charges added on top of the item subtotal.
type Pricing struct {
	ServiceCharge kernel.Money
	DeliveryFee   kernel.Money
}

// NewOrderParams groups the inputs of NewOrder.
type NewOrderParams struct {
	ID             kernel.UUID
	Number         Number
	StudentID      kernel.UUID
	RestaurantID   kernel.UUID
	RestaurantName string
	Items          []Item
	Pricing        Pricing
	Payment        Payment
	Delivery       Delivery
	CreatedAt      time.Time
}

// Snapshot is the full persisted state used by RestoreOrder.
type Snapshot struct {
	ID              kernel.UUID
	Number          Number
	StudentID       kernel.UUID
	RestaurantID    kernel.UUID
	RestaurantName  string
	RiderID         *kernel.UUID
	Items           []Item
	Subtotal        kernel.Money
	ServiceCharge   kernel.Money
	DeliveryFee     kernel.Money
	Total           kernel.Money
	Status          Status
	Payment         Payment
	Delivery        Delivery
	CreatedAt       time.Time
	UpdatedAt       time.Time
	RejectedAt      *time.Time
	RejectionReason string
	CancelledFrom   Status
	Version         int
}

// Order is the aggregate root of one restaurant-scoped fulfillment unit.
//
// Order follows these invariants:
//   - items and amounts are a snapshot taken at creation and never change
//   - total = subtotal + service charge + delivery fee, all non-negative
//   - status only moves along the Status graph; Cancelled is the only jump
//   - at most one rider, bound only while the status is assignable
//
// Every mutation bumps updatedAt and version and records a DomainEvent that
// the unit of work persists to the outbox together with the order row.
type Order struct {
	id              kernel.UUID
	number          Number
	studentID       kernel.UUID
	restaurantID    kernel.UUID
	restaurantName  string
	riderID         *kernel.UUID
	items           []Item
	subtotal        kernel.Money
	serviceCharge   kernel.Money
	deliveryFee     kernel.Money
	total           kernel.Money
	status          Status
	payment         Payment
	delivery        Delivery
	createdAt       time.Time
	updatedAt       time.Time
	rejectedAt      *time.Time
	rejectionReason string
	// cancelledFrom is the status the order was cancelled from, Unknown
	// while it is not cancelled.
	cancelledFrom Status

	// version is the current revision; persistedVersion is the revision the
	// store holds, used as the compare-and-swap condition on update.
	version          int
	persistedVersion int

	events        []DomainEvent
	isConstructed bool
}

// NewOrder creates a Pending, paid order and records a NewOrderCreated event.
//
//	o, err := order.NewOrder(order.NewOrderParams{
//	    ID:        kernel.NewUUID(),
//	    Number:    order.NewNumber(now),
//	    StudentID: studentID,
//	    ...
//	})
func NewOrder(p NewOrderParams) (*Order, error) {
	o := &Order{
		status:        Pending,
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setNumber(p.Number),
		o.setParties(p.StudentID, p.RestaurantID),
		o.setItems(p.Items),
		o.setPayment(Payment{Reference: p.Payment.Reference, Status: PaymentPaid, Method: p.Payment.Method}),
		o.setDelivery(p.Delivery),
		o.setTimestamps(p.CreatedAt, p.CreatedAt),
	); err != nil {
		return nil, err
	}
	o.restaurantName = strings.TrimSpace(p.RestaurantName)

	if err := o.price(p.Pricing); err != nil {
		return nil, err
	}

	o.record(NewOrderCreated{
		ID:          kernel.NewUUID(),
		OrderID:     o.id,
		OrderNumber: o.number,
		Total:       o.total,
		At:          o.createdAt,
		Parties:     o.parties(),
	})

	return o, nil
}

// RestoreOrder rebuilds an order from persisted state without recording events.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		restaurantName:   s.RestaurantName,
		rejectedAt:       s.RejectedAt,
		rejectionReason:  s.RejectionReason,
		cancelledFrom:    s.CancelledFrom,
		version:          s.Version,
		persistedVersion: s.Version,
		isConstructed:    true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setNumber(s.Number),
		o.setParties(s.StudentID, s.RestaurantID),
		o.setItems(s.Items),
		o.setPayment(s.Payment),
		o.setDelivery(s.Delivery),
		o.setTimestamps(s.CreatedAt, s.UpdatedAt),
		o.setStatus(s.Status),
	); err != nil {
		return nil, err
	}

	if s.RiderID != nil {
		if err := s.RiderID.Validate(); err != nil {
			return nil, err
		}
		riderID := *s.RiderID
		o.riderID = &riderID
	}
	if o.riderID != nil && o.status == Pending {
		return nil, errs.NewValueIsInvalidErrorWithCause("rider",
			fmt.Errorf("%s order cannot hold a rider", o.status))
	}

	o.subtotal = s.Subtotal
	o.serviceCharge = s.ServiceCharge
	o.deliveryFee = s.DeliveryFee
	o.total = s.Total
	if err := o.validateAmounts(); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the order was built via NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID              { return o.id }
func (o *Order) Number() Number               { return o.number }
func (o *Order) StudentID() kernel.UUID       { return o.studentID }
func (o *Order) RestaurantID() kernel.UUID    { return o.restaurantID }
func (o *Order) RestaurantName() string       { return o.restaurantName }
func (o *Order) Subtotal() kernel.Money       { return o.subtotal }
func (o *Order) ServiceCharge() kernel.Money  { return o.serviceCharge }
func (o *Order) DeliveryFee() kernel.Money    { return o.deliveryFee }
func (o *Order) Total() kernel.Money          { return o.total }
func (o *Order) Status() Status               { return o.status }
func (o *Order) Payment() Payment             { return o.payment }
func (o *Order) Delivery() Delivery           { return o.delivery }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
func (o *Order) RejectionReason() string      { return o.rejectionReason }
func (o *Order) Version() int                 { return o.version }
func (o *Order) PersistedVersion() int        { return o.persistedVersion }
func (o *Order) HasPendingChanges() bool      { return o.version != o.persistedVersion }
func (o *Order) DomainEvents() []DomainEvent  { return append([]DomainEvent(nil), o.events...) }
func (o *Order) IsNew() bool                  { return o.persistedVersion == 0 }
func (o *Order) RejectedAt() *time.Time       { return copyTime(o.rejectedAt) }
func (o *Order) CancelledFrom() Status        { return o.cancelledFrom }

// Snapshot exports the current state for persistence and read models.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:              o.id,
		Number:          o.number,
		StudentID:       o.studentID,
		RestaurantID:    o.restaurantID,
		RestaurantName:  o.restaurantName,
		RiderID:         o.Rider(),
		Items:           o.Items(),
		Subtotal:        o.subtotal,
		ServiceCharge:   o.serviceCharge,
		DeliveryFee:     o.deliveryFee,
		Total:           o.total,
		Status:          o.status,
		Payment:         o.payment,
		Delivery:        o.delivery,
		CreatedAt:       o.createdAt,
		UpdatedAt:       o.updatedAt,
		RejectedAt:      o.RejectedAt(),
		RejectionReason: o.rejectionReason,
		CancelledFrom:   o.cancelledFrom,
		Version:         o.version,
	}
}

// Items returns a copy of the item snapshot.
func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

// Rider returns the assigned rider or nil.
func (o *Order) Rider() *kernel.UUID {
	if o.riderID == nil {
		return nil
	}
	id := *o.riderID
	return &id
}

// HasRider reports whether riderID is the assigned rider.
func (o *Order) HasRider(riderID kernel.UUID) bool {
	return o.riderID != nil && o.riderID.IsEqual(riderID)
}

// Transition moves the order to requested on behalf of actor.
//
// Rules:
//   - requested must be the immediate successor or Cancelled from a
//     cancellable state, otherwise *InvalidTransitionError
//   - restaurant steps (Accepted, Preparing, Ready) belong to the owning
//     restaurant or an admin
//   - PickedUp and Delivered belong to the assigned rider only
//   - a student may cancel their own order while it is Pending; the owning
//     restaurant while it is cancellable (recorded as a rejection); an admin
//     whenever it is cancellable
//
// Requesting the status the order already has is a no-op for an actor that
// may make the step that led into it: it returns (nil, nil) so client retries
// are harmless. For Cancelled that step is judged from the status the order
// was actually cancelled from.
func (o *Order) Transition(requested Status, actor Actor, reason string, at time.Time) (*StatusChanged, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := requested.Validate(); err != nil {
		return nil, &InvalidTransitionError{Current: o.status, Requested: requested}
	}

	if o.status == requested {
		if err := o.authorize(o.cancelledFrom, requested, actor); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := o.status.ValidateTransition(requested); err != nil {
		return nil, err
	}
	if err := o.authorize(o.status, requested, actor); err != nil {
		return nil, err
	}

	from := o.status
	o.status = requested
	o.touch(at)

	reason = strings.TrimSpace(reason)
	if requested == Cancelled {
		o.cancelledFrom = from
	}
	if requested == Cancelled && actor.Role == RoleRestaurant {
		rejectedAt := at
		o.rejectedAt = &rejectedAt
		o.rejectionReason = reason
	}

	event := StatusChanged{
		ID:      kernel.NewUUID(),
		OrderID: o.id,
		From:    from,
		To:      requested,
		Actor:   actor,
		Reason:  reason,
		At:      at,
		Parties: o.parties(),
	}
	o.record(event)
	return &event, nil
}

// AssignRider binds riderID to the order.
//
// Assigning the rider that already holds the order is a no-op returning
// (nil, nil). Another rider yields *RiderAlreadyAssignedError; a status outside
// Accepted..Ready yields ErrNotAssignable.
func (o *Order) AssignRider(riderID kernel.UUID, triggeredBy Role, at time.Time) (*RiderAssigned, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := riderID.Validate(); err != nil {
		return nil, err
	}

	if o.riderID != nil {
		if o.riderID.IsEqual(riderID) {
			return nil, nil
		}
		return nil, &RiderAlreadyAssignedError{OrderID: o.id, CurrentRiderID: *o.riderID}
	}
	if !o.status.IsAssignable() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotAssignable, o.status)
	}

	id := riderID
	o.riderID = &id
	o.touch(at)

	event := RiderAssigned{
		ID:          kernel.NewUUID(),
		OrderID:     o.id,
		RiderID:     riderID,
		TriggeredBy: triggeredBy,
		Status:      o.status,
		At:          at,
		Parties:     o.parties(),
	}
	o.record(event)
	return &event, nil
}

// UnassignRider releases the rider before pickup, returning the order to the
// pull pool. Without a rider it is a no-op returning (nil, nil).
func (o *Order) UnassignRider(at time.Time) (*RiderUnassigned, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.riderID == nil {
		return nil, nil
	}
	if !o.status.IsAssignable() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotAssignable, o.status)
	}

	previous := *o.riderID
	o.riderID = nil
	o.touch(at)

	parties := o.parties()
	parties.RiderID = &previous
	event := RiderUnassigned{
		ID:              kernel.NewUUID(),
		OrderID:         o.id,
		PreviousRiderID: previous,
		Status:          o.status,
		At:              at,
		Parties:         parties,
	}
	o.record(event)
	return &event, nil
}

// PullDomainEvents returns and clears the recorded events.
func (o *Order) PullDomainEvents() []DomainEvent {
	events := o.events
	o.events = nil
	return events
}

// MarkPersisted is called by the repository after a successful write so the
// next update compares against the stored revision.
func (o *Order) MarkPersisted() {
	o.persistedVersion = o.version
}

func (o *Order) authorize(from, to Status, actor Actor) error {
	if err := o.authorizeTarget(to, actor); err != nil {
		return err
	}
	if to == Cancelled && actor.Role == RoleStudent && from != Pending {
		return &NotAuthorizedError{Actor: actor, Requested: to, Reason: "students may only cancel pending orders"}
	}
	return nil
}

// authorizeTarget checks that actor may move an order into to, regardless of
// the source state.
func (o *Order) authorizeTarget(to Status, actor Actor) error {
	deny := func(reason string) error {
		return &NotAuthorizedError{Actor: actor, Requested: to, Reason: reason}
	}

	switch to {
	case Accepted, Preparing, Ready:
		if actor.Role == RoleAdmin || actor.Is(RoleRestaurant, o.restaurantID) {
			return nil
		}
		return deny("only the restaurant may advance preparation")
	case PickedUp, Delivered:
		if actor.Role != RoleRider {
			return deny("only the assigned rider may pick up or deliver")
		}
		if o.riderID == nil {
			return deny("order has no assigned rider")
		}
		if !o.riderID.IsEqual(actor.ID) {
			return deny("order is assigned to another rider")
		}
		return nil
	case Cancelled:
		switch {
		case actor.Role == RoleAdmin:
			return nil
		case actor.Is(RoleRestaurant, o.restaurantID):
			return nil
		case actor.Is(RoleStudent, o.studentID):
			return nil
		}
		return deny("only the student, the restaurant or an admin may cancel")
	case Unknown, Pending:
	}
	return deny("status cannot be requested")
}

func (o *Order) parties() Parties {
	return Parties{
		StudentID:    o.studentID,
		RestaurantID: o.restaurantID,
		RiderID:      o.Rider(),
	}
}

func (o *Order) record(event DomainEvent) {
	o.events = append(o.events, event)
}

func (o *Order) touch(at time.Time) {
	if at.After(o.updatedAt) {
		o.updatedAt = at
	}
	o.version++
}

func (o *Order) price(p Pricing) error {
	if err := errors.Join(p.ServiceCharge.Validate(), p.DeliveryFee.Validate()); err != nil {
		return err
	}
	subtotal, err := Subtotal(o.items)
	if err != nil {
		return err
	}
	total, err := subtotal.Add(p.ServiceCharge)
	if err != nil {
		return err
	}
	if total, err = total.Add(p.DeliveryFee); err != nil {
		return err
	}

	o.subtotal = subtotal
	o.serviceCharge = p.ServiceCharge
	o.deliveryFee = p.DeliveryFee
	o.total = total
	return nil
}

func (o *Order) validateAmounts() error {
	if err := errors.Join(
		o.subtotal.Validate(), o.serviceCharge.Validate(), o.deliveryFee.Validate(), o.total.Validate(),
	); err != nil {
		return err
	}
	subtotal, err := Subtotal(o.items)
	if err != nil {
		return err
	}
	if subtotal != o.subtotal || o.subtotal+o.serviceCharge+o.deliveryFee != o.total {
		return errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("amounts do not add up: %d + %d + %d != %d",
				o.subtotal, o.serviceCharge, o.deliveryFee, o.total))
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number Number) error {
	if strings.TrimSpace(number.String()) == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.number = number
	return nil
}

func (o *Order) setParties(studentID, restaurantID kernel.UUID) error {
	if err := errors.Join(studentID.Validate(), restaurantID.Validate()); err != nil {
		return err
	}
	o.studentID = studentID
	o.restaurantID = restaurantID
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = append([]Item(nil), items...)
	return nil
}

func (o *Order) setPayment(p Payment) error {
	p.Reference = strings.TrimSpace(p.Reference)
	if p.Reference == "" {
		return errs.NewValueIsRequiredError("payment reference")
	}
	if p.Status != PaymentPaid && p.Status != PaymentUnpaid {
		return errs.NewValueIsInvalidErrorWithCause("payment status", fmt.Errorf("%q is not a payment status", p.Status))
	}
	o.payment = p
	return nil
}

func (o *Order) setDelivery(d Delivery) error {
	d.Address = strings.TrimSpace(d.Address)
	d.Instructions = strings.TrimSpace(d.Instructions)
	d.ContactPhone = strings.TrimSpace(d.ContactPhone)

	var err error
	if d.Address == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("delivery address"))
	}
	if d.ContactPhone == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("contact phone"))
	}
	if err != nil {
		return err
	}
	o.delivery = d
	return nil
}

func (o *Order) setTimestamps(createdAt, updatedAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	if updatedAt.Before(createdAt) {
		updatedAt = createdAt
	}
	o.createdAt = createdAt
	o.updatedAt = updatedAt
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
