package http

import (
	"errors"
	"net/http"

	"packing/internal/core/application/usecases/commands"
	"packing/internal/core/application/usecases/queries"
	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"
	"packing/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server handles HTTP requests for the packing workflow.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	startOrResumeHandler commands.StartOrResumeSessionCommandHandler
	takeoverHandler      commands.TakeoverOrdersCommandHandler
	touchHandler         commands.TouchActivityCommandHandler
	mutatePackingHandler commands.MutatePackingRecordCommandHandler
	endSessionHandler    commands.EndSessionCommandHandler

	// Query handlers
	getActiveSessionsHandler queries.GetActiveSessionsQueryHandler
	getPausedOrdersHandler   queries.GetPausedOrdersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	startOrResumeHandler commands.StartOrResumeSessionCommandHandler,
	takeoverHandler commands.TakeoverOrdersCommandHandler,
	touchHandler commands.TouchActivityCommandHandler,
	mutatePackingHandler commands.MutatePackingRecordCommandHandler,
	endSessionHandler commands.EndSessionCommandHandler,
	getActiveSessionsHandler queries.GetActiveSessionsQueryHandler,
	getPausedOrdersHandler queries.GetPausedOrdersQueryHandler,
) *Server {
	return &Server{
		startOrResumeHandler:     startOrResumeHandler,
		takeoverHandler:          takeoverHandler,
		touchHandler:             touchHandler,
		mutatePackingHandler:     mutatePackingHandler,
		endSessionHandler:        endSessionHandler,
		getActiveSessionsHandler: getActiveSessionsHandler,
		getPausedOrdersHandler:   getPausedOrdersHandler,
	}
}

// RegisterRoutes mounts all API routes on the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/sessions", s.StartOrResumeSession)
	api.POST("/sessions/takeover", s.TakeoverOrders)
	api.POST("/sessions/touch", s.TouchActivity)
	api.POST("/sessions/:sessionId/end", s.EndSession)
	api.GET("/sessions/active", s.GetActiveSessions)

	api.PATCH("/orders/:orderId/packing", s.MutatePackingRecord)
	api.GET("/packers/:packerId/paused-orders", s.GetPausedOrders)
}

// StartOrResumeSession handles POST /api/v1/sessions.
// Returns 200 with the session, or 409 with a conflict descriptor when the
// requested orders are claimed by other packers.
func (s *Server) StartOrResumeSession(ctx echo.Context) error {
	var request StartSessionRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	packerID, err := kernel.UUIDFromString(request.PackerID)
	if err != nil {
		return unprocessable(ctx, "Invalid packer ID: "+err.Error())
	}
	deliveryDate, err := kernel.DeliveryDateFromString(request.DeliveryDate)
	if err != nil {
		return unprocessable(ctx, "Invalid delivery date: "+err.Error())
	}
	orderIDs, err := parseUUIDs(request.OrderIDs)
	if err != nil {
		return unprocessable(ctx, "Invalid order IDs: "+err.Error())
	}

	cmd, err := commands.NewStartOrResumeSessionCommand(packerID, deliveryDate, orderIDs)
	if err != nil {
		return domainError(ctx, err)
	}

	result, err := s.startOrResumeHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	if result.Conflict != nil {
		return ctx.JSON(http.StatusConflict, StartSessionResponse{
			Conflict: toConflictDTO(result.Conflict),
		})
	}

	return ctx.JSON(http.StatusOK, StartSessionResponse{
		Session: toSessionDTO(result.Session),
	})
}

// TakeoverOrders handles POST /api/v1/sessions/takeover.
// Moves the contested orders into the requesting packer's session.
func (s *Server) TakeoverOrders(ctx echo.Context) error {
	var request TakeoverRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	newPackerID, err := kernel.UUIDFromString(request.NewPackerID)
	if err != nil {
		return unprocessable(ctx, "Invalid packer ID: "+err.Error())
	}
	existingSessionID, err := kernel.UUIDFromString(request.ExistingSessionID)
	if err != nil {
		return unprocessable(ctx, "Invalid session ID: "+err.Error())
	}
	orderIDs, err := parseUUIDs(request.OrderIDs)
	if err != nil {
		return unprocessable(ctx, "Invalid order IDs: "+err.Error())
	}

	cmd, err := commands.NewTakeoverOrdersCommand(newPackerID, existingSessionID, orderIDs)
	if err != nil {
		return domainError(ctx, err)
	}

	taken, err := s.takeoverHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toSessionDTO(taken))
}

// TouchActivity handles POST /api/v1/sessions/touch.
// Accepts a session ID or a packer/date pair; unknown or ended sessions are
// a silent no-op so clients can fire touches without error handling.
func (s *Server) TouchActivity(ctx echo.Context) error {
	var request TouchRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := s.touchCommand(request)
	if err != nil {
		return domainError(ctx, err)
	}

	if err := s.touchHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) touchCommand(request TouchRequest) (commands.TouchActivityCommand, error) {
	if request.SessionID != "" {
		sessionID, err := kernel.UUIDFromString(request.SessionID)
		if err != nil {
			return commands.TouchActivityCommand{}, errs.NewValueIsInvalidErrorWithCause("sessionId", err)
		}
		return commands.NewTouchActivityCommand(sessionID)
	}

	packerID, err := kernel.UUIDFromString(request.PackerID)
	if err != nil {
		return commands.TouchActivityCommand{}, errs.NewValueIsInvalidErrorWithCause("packerId", err)
	}
	deliveryDate, err := kernel.DeliveryDateFromString(request.DeliveryDate)
	if err != nil {
		return commands.TouchActivityCommand{}, errs.NewValueIsInvalidErrorWithCause("deliveryDate", err)
	}
	return commands.NewTouchActivityByPackerCommand(packerID, deliveryDate)
}

// MutatePackingRecord handles PATCH /api/v1/orders/:orderId/packing.
// Applies one version-checked change; a stale observedVersion returns 409
// so the client can reload and retry.
func (s *Server) MutatePackingRecord(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return unprocessable(ctx, "Invalid order ID: "+err.Error())
	}

	var request MutatePackingRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	packerID, err := kernel.UUIDFromString(request.PackerID)
	if err != nil {
		return unprocessable(ctx, "Invalid packer ID: "+err.Error())
	}

	change, ok := request.toChange()
	if !ok {
		return unprocessable(ctx, "Unknown change kind: "+request.Change)
	}

	cmd, err := commands.NewMutatePackingRecordCommand(orderID, packerID, request.ObservedVersion, change)
	if err != nil {
		return domainError(ctx, err)
	}

	mutated, err := s.mutatePackingHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderDTO(mutated))
}

// EndSession handles POST /api/v1/sessions/:sessionId/end.
func (s *Server) EndSession(ctx echo.Context) error {
	sessionID, err := kernel.UUIDFromString(ctx.Param("sessionId"))
	if err != nil {
		return unprocessable(ctx, "Invalid session ID: "+err.Error())
	}

	var request EndSessionRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewEndSessionCommand(sessionID, session.EndReason(request.Reason))
	if err != nil {
		return domainError(ctx, err)
	}

	if err := s.endSessionHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetActiveSessions handles GET /api/v1/sessions/active?date=YYYY-MM-DD.
func (s *Server) GetActiveSessions(ctx echo.Context) error {
	deliveryDate, err := kernel.DeliveryDateFromString(ctx.QueryParam("date"))
	if err != nil {
		return unprocessable(ctx, "Invalid delivery date: "+err.Error())
	}

	query, err := queries.NewGetActiveSessionsQuery(deliveryDate)
	if err != nil {
		return domainError(ctx, err)
	}

	rows, err := s.getActiveSessionsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toActiveSessionDTOs(rows))
}

// GetPausedOrders handles GET /api/v1/packers/:packerId/paused-orders.
func (s *Server) GetPausedOrders(ctx echo.Context) error {
	packerID, err := kernel.UUIDFromString(ctx.Param("packerId"))
	if err != nil {
		return unprocessable(ctx, "Invalid packer ID: "+err.Error())
	}

	query, err := queries.NewGetPausedOrdersQuery(packerID)
	if err != nil {
		return domainError(ctx, err)
	}

	rows, err := s.getPausedOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toPausedOrderDTOs(rows))
}

func parseUUIDs(values []string) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(values))
	for _, value := range values {
		id, err := kernel.UUIDFromString(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// domainError maps application errors to HTTP status codes.
func domainError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return writeError(ctx, http.StatusNotFound, err)
	case errors.Is(err, errs.ErrVersionConflict),
		errors.Is(err, errs.ErrObjectAlreadyExists):
		return writeError(ctx, http.StatusConflict, err)
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrVersionIsInvalid):
		return writeError(ctx, http.StatusUnprocessableEntity, err)
	default:
		return writeError(ctx, http.StatusInternalServerError, err)
	}
}

func writeError(ctx echo.Context, code int, err error) error {
	return ctx.JSON(code, Error{Code: code, Message: err.Error()})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

func unprocessable(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusUnprocessableEntity, Error{Code: http.StatusUnprocessableEntity, Message: message})
}
