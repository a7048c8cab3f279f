package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authpractice/todo-service/internal/core/domain"
	"github.com/authpractice/todo-service/internal/core/ports"
)

const (
	msgInvalidID         = "Invalid todo ID"
	msgInvalidBody       = "Invalid request body"
	msgNotFound          = "Todo not found"
	msgUnavailable       = "Database connection not available"
	msgReplaceIncomplete = "title, description and completed are required"
)

// failureMessages holds the generic client message per operation; raw
// storage errors never reach the client.
var failureMessages = map[string]string{
	"list":    "Failed to fetch todos",
	"get":     "Failed to fetch todo",
	"create":  "Failed to create todo",
	"update":  "Failed to update todo",
	"replace": "Failed to update todo",
	"delete":  "Failed to delete todo",
	"history": "Failed to fetch todo history",
}

// TodoHandler handles HTTP requests for todo operations.
type TodoHandler struct {
	service ports.TodoService
	logger  zerolog.Logger
}

func NewTodoHandler(service ports.TodoService, logger zerolog.Logger) *TodoHandler {
	return &TodoHandler{service: service, logger: logger}
}

// List handles GET /todos.
//
// @Summary      List todos
// @Description  Returns every todo, newest first.
// @Tags         todos
// @Produce      json
// @Success      200  {array}   todoResponse
// @Failure      500  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	todos, err := h.service.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "list", err)
	}
	return c.JSON(http.StatusOK, toTodoListResponse(todos))
}

// Get handles GET /todos/:id.
//
// @Summary      Get a todo
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  todoResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})
	}

	todo, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "get", err)
	}
	return c.JSON(http.StatusOK, toTodoResponse(todo))
}

// Create handles POST /todos.
//
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      createTodoRequest  true  "New todo"
// @Success      201   {object}  todoResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	in := ports.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
		Actor:       actor(c),
	}
	if req.DueDate != nil {
		d := req.DueDate.Time
		in.DueDate = &d
	}

	todo, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, "create", err)
	}
	return c.JSON(http.StatusCreated, toTodoResponse(todo))
}

// Update handles PUT and PATCH /todos/:id as a merge-patch.
//
// @Summary      Update a todo
// @Description  Merges the given fields into the stored todo. Omitted fields keep their value; null clears optional fields.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Todo ID"
// @Param        body  body      updateTodoRequest  true  "Fields to change"
// @Success      200   {object}  todoResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})
	}

	var req updateTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
	}
	limits := req.limits()
	if err := c.Validate(&limits); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	todo, err := h.service.Update(c.Request().Context(), ports.UpdateTodoInput{
		ID:    id,
		Patch: req.toPatch(),
		Actor: actor(c),
	})
	if err != nil {
		return h.fail(c, "update", err)
	}
	return c.JSON(http.StatusOK, toTodoResponse(todo))
}

// Replace handles PUT /todos/:id/replace.
//
// @Summary      Replace a todo
// @Description  Overwrites title, description and completed. All three are required.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Todo ID"
// @Param        body  body      replaceTodoRequest  true  "Full todo"
// @Success      200   {object}  todoResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /todos/{id}/replace [put]
func (h *TodoHandler) Replace(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})
	}

	var req replaceTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
	}
	if req.Title == nil || req.Description == nil || req.Completed == nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgReplaceIncomplete})
	}

	todo, err := h.service.Replace(c.Request().Context(), ports.ReplaceTodoInput{
		ID:          id,
		Title:       *req.Title,
		Description: *req.Description,
		Completed:   *req.Completed,
		Actor:       actor(c),
	})
	if err != nil {
		return h.fail(c, "replace", err)
	}
	return c.JSON(http.StatusOK, toTodoResponse(todo))
}

// Delete handles DELETE /todos/:id.
//
// @Summary      Delete a todo
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})
	}

	if err := h.service.Delete(c.Request().Context(), id, actor(c)); err != nil {
		return h.fail(c, "delete", err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Todo deleted successfully"})
}

// History handles GET /todos/:id/history.
//
// @Summary      Todo audit trail
// @Description  Most recent changes first. Empty when auditing is disabled.
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {array}   auditEntryResponse
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /todos/{id}/history [get]
func (h *TodoHandler) History(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})
	}

	entries, err := h.service.History(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "history", err)
	}
	return c.JSON(http.StatusOK, toAuditResponse(entries))
}

// fail logs err in full and writes the client-facing status and message.
func (h *TodoHandler) fail(c echo.Context, op string, err error) error {
	status, msg := http.StatusInternalServerError, failureMessages[op]

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		status, msg = http.StatusBadRequest, ve.Message
	case errors.Is(err, domain.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrTodoNotFound):
		status, msg = http.StatusNotFound, msgNotFound
	case errors.Is(err, domain.ErrStorageUnavailable):
		status, msg = http.StatusServiceUnavailable, msgUnavailable
	}

	ev := h.logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = h.logger.Error()
	}
	ev.Err(err).
		Str("operation", op).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Int("status", status).
		Msg("todo request failed")

	return c.JSON(status, errorResponse{Error: msg})
}

// parseID accepts only a positive base-10 integer.
func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
