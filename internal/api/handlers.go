package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"todo-list/internal/errors"
	"todo-list/internal/query"
)

func (s *Server) createTask(c echo.Context) error {
	var req createTaskRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	input, err := req.input()
	if err != nil {
		return err
	}

	task, err := s.tasks.Create(c.Request().Context(), ownerFrom(c), input)
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusCreated, task)
}

func (s *Server) listTasks(c echo.Context) error {
	q, err := query.FromValues(c.QueryParams())
	if err != nil {
		return err
	}

	page, err := s.tasks.Query(c.Request().Context(), ownerFrom(c), q)
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, page)
}

func (s *Server) getTask(c echo.Context) error {
	task, err := s.tasks.Get(c.Request().Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, task)
}

func (s *Server) updateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	patch, err := req.patch()
	if err != nil {
		return err
	}

	task, err := s.tasks.Update(c.Request().Context(), ownerFrom(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, task)
}

func (s *Server) updateStatus(c echo.Context) error {
	var req statusRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	task, err := s.tasks.UpdateStatus(c.Request().Context(), ownerFrom(c), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	if err := s.tasks.Delete(c.Request().Context(), ownerFrom(c), c.Param("id")); err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, nil)
}

func (s *Server) batch(c echo.Context) error {
	var req batchRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	result, err := s.tasks.Batch(c.Request().Context(), ownerFrom(c), req.operation())
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, result)
}

func (s *Server) batchUpdateStatus(c echo.Context) error {
	var req batchStatusRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	result, err := s.tasks.BatchUpdateStatus(c.Request().Context(), ownerFrom(c), req.ids(), req.Status)
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, result)
}

func (s *Server) batchDelete(c echo.Context) error {
	var req idsRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	result, err := s.tasks.BatchDelete(c.Request().Context(), ownerFrom(c), req.ids())
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, result)
}

func (s *Server) moveTask(c echo.Context) error {
	var req moveRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.NewOrder == nil {
		return errors.NewInvalidInputError("newOrder", nil, "newOrder is required")
	}

	task, err := s.tasks.MoveTask(c.Request().Context(), ownerFrom(c), c.Param("id"), *req.NewOrder)
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, task)
}

func (s *Server) reorderTasks(c echo.Context) error {
	var req reorderRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	result, err := s.tasks.ReorderAll(c.Request().Context(), ownerFrom(c), req.Tasks)
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, result)
}
