package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo/internal/domain"
	"todo/internal/errors"
	"todo/internal/services"
)

type profileRequest struct {
	Name string `json:"name"`
}

type todoRequest struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Category string `json:"category"`
}

func (r todoRequest) category() domain.Category {
	return domain.Category(strings.ToLower(strings.TrimSpace(r.Category)))
}

func (s *Server) handleState(c *gin.Context) {
	overview, err := s.api.Overview(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, overview)
}

func (s *Server) handleSetProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.NewInvalidInputError("body", nil, "expected JSON with a name field"))
		return
	}

	profile, err := s.api.SetUserName(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, profile)
}

func (s *Server) handleListTodos(c *gin.Context) {
	var category *domain.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := domain.ParseCategory(raw)
		if err != nil {
			writeError(c, errors.NewInvalidInputError("category", raw, "must be deep or easy"))
			return
		}
		category = &parsed
	}

	items, err := s.api.ListTodos(c.Request.Context(), category)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, items)
}

func (s *Server) handleAddTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.NewInvalidInputError("body", nil, "expected JSON with title, details and category"))
		return
	}

	task, err := s.api.AddTodo(c.Request.Context(), domain.TaskDraft{
		Title:    req.Title,
		Details:  req.Details,
		Category: req.category(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, services.ToItem(*task, 0))
}

func (s *Server) handleUpdateTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.NewInvalidInputError("body", nil, "expected JSON with title, details and category"))
		return
	}

	task, err := s.api.UpdateTodo(c.Request.Context(), c.Param("id"), domain.TaskPatch{
		Title:    req.Title,
		Details:  req.Details,
		Category: req.category(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, services.ToItem(*task, 0))
}

func (s *Server) handleToggleTodo(c *gin.Context) {
	task, err := s.api.ToggleTodo(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, services.ToItem(*task, 0))
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	if err := s.api.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"success": false,
		"error":   errors.GetUserMessage(err),
		"code":    errors.GetErrorCode(err),
	})
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeCapacity:
		return http.StatusConflict
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
