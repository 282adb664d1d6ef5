package http

import (
	"errors"
	"net/http"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/application/usecases/queries"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// GetOrder handles GET /api/v1/orders/:id, the polling fallback of the stream.
func (s *Server) GetOrder(c echo.Context) error {
	actor, _ := actorFrom(c)

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actor)
	if err != nil {
		return s.handleError(c, err)
	}

	snapshot, err := s.handlers.Orders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(http.StatusOK, toOrderResponse(snapshot))
}

// GetOrderHistory handles GET /api/v1/orders/:id/history.
func (s *Server) GetOrderHistory(c echo.Context) error {
	actor, _ := actorFrom(c)

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}

	query, err := queries.NewGetOrderHistoryQuery(orderID, actor)
	if err != nil {
		return s.handleError(c, err)
	}

	entries, err := s.handlers.Orders.HandleHistory(c.Request().Context(), query)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(http.StatusOK, toHistory(entries))
}

// TransitionOrder handles POST /api/v1/orders/:id/transitions.
func (s *Server) TransitionOrder(c echo.Context) error {
	actor, _ := actorFrom(c)

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}

	var req TransitionRequest
	if err = c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, req.Status, actor, req.Reason)
	if err != nil {
		return s.handleError(c, err)
	}

	result, err := s.handlers.Transition.Handle(c.Request().Context(), cmd)
	metrics.RecordOrderOperation("transition", err == nil)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(http.StatusOK, toOrderResponse(result.Order.Snapshot()))
}

// AssignRider handles POST /api/v1/orders/:id/assignment, the admin push.
func (s *Server) AssignRider(c echo.Context) error {
	actor, _ := actorFrom(c)

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}

	var req AssignRequest
	if err = c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid request body")
	}

	riderID, err := kernel.UUIDFromString(req.RiderID)
	if err != nil {
		return s.handleError(c, err)
	}

	return s.assign(c, orderID, riderID, actor, "assign")
}

// AcceptOrder handles POST /api/v1/orders/:id/accept, a rider pulling an
// order from the pool.
func (s *Server) AcceptOrder(c echo.Context) error {
	actor, _ := actorFrom(c)

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}

	return s.assign(c, orderID, actor.ID, actor, "accept")
}

func (s *Server) assign(c echo.Context, orderID, riderID kernel.UUID, actor order.Actor, operation string) error {
	cmd, err := commands.NewAssignRiderCommand(orderID, riderID, actor)
	if err != nil {
		return s.handleError(c, err)
	}

	result, err := s.handlers.Assign.Handle(c.Request().Context(), cmd)
	metrics.RecordOrderOperation(operation, err == nil)

	var taken *order.RiderAlreadyAssignedError
	if errors.As(err, &taken) {
		body := ConflictError{
			Error:          Error{Code: http.StatusConflict, Message: err.Error()},
			CurrentRiderID: taken.CurrentRiderID.String(),
		}
		if result.Order != nil {
			current := toOrderResponse(result.Order.Snapshot())
			body.Order = &current
		}
		return c.JSON(http.StatusConflict, body)
	}
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(http.StatusOK, toOrderResponse(result.Order.Snapshot()))
}

// UnassignRider handles DELETE /api/v1/orders/:id/assignment.
func (s *Server) UnassignRider(c echo.Context) error {
	actor, _ := actorFrom(c)

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return s.handleError(c, err)
	}

	cmd, err := commands.NewUnassignRiderCommand(orderID, actor)
	if err != nil {
		return s.handleError(c, err)
	}

	result, err := s.handlers.Unassign.Handle(c.Request().Context(), cmd)
	metrics.RecordOrderOperation("unassign", err == nil)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(http.StatusOK, toOrderResponse(result.Order.Snapshot()))
}

// ListPool handles GET /api/v1/pool?restaurantId=&limit=.
func (s *Server) ListPool(c echo.Context) error {
	var (
		rawRestaurantID *string
		rawLimit        *int
	)
	if err := runtime.BindQueryParameter("form", true, false, "restaurantId", c.QueryParams(), &rawRestaurantID); err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.QueryParams(), &rawLimit); err != nil {
		return writeError(c, http.StatusBadRequest, "limit must be a number")
	}

	var restaurantID *kernel.UUID
	if rawRestaurantID != nil {
		id, err := kernel.UUIDFromString(*rawRestaurantID)
		if err != nil {
			return s.handleError(c, err)
		}
		restaurantID = &id
	}

	limit := 0
	if rawLimit != nil {
		limit = *rawLimit
	}

	query, err := queries.NewListAssignablePoolQuery(restaurantID, limit)
	if err != nil {
		return s.handleError(c, err)
	}

	pool, err := s.handlers.Pool.Handle(c.Request().Context(), query)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(http.StatusOK, toPoolOrders(pool))
}

// ListAvailableRiders handles GET /api/v1/riders/available.
func (s *Server) ListAvailableRiders(c echo.Context) error {
	riders, err := s.handlers.Riders.Handle(c.Request().Context(), queries.NewListAvailableRidersQuery())
	if err != nil {
		return s.handleError(c, err)
	}

	response := make([]Rider, len(riders))
	for i, r := range riders {
		response[i] = Rider{ID: r.ID.String(), Name: r.Name}
	}

	return c.JSON(http.StatusOK, response)
}
