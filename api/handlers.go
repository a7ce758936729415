package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"weekplanner/domain"
)

const taskBodyMaxSize = 64 * 1024 // 64 KiB

const notFoundMessage = "Task not found"

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, logger *log.Logger) {
	e.GET("/api/tasks", listTasks(store, logger))
	e.GET("/api/tasks/:id", getTask(store))
	e.POST("/api/tasks", createTask(store))
	e.PUT("/api/tasks/:id", updateTask(store))
	e.DELETE("/api/tasks/:id", deleteTask(store))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func listTasks(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		filter := domain.Filter{
			Member:    c.QueryParam("member"),
			Category:  c.QueryParam("category"),
			StartDate: c.QueryParam("startDate"),
			EndDate:   c.QueryParam("endDate"),
		}

		fetchStart := time.Now()
		tasks, fetchErr := store.ListTasks(ctx, filter)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to fetch tasks"})
			return err
		}
		metrics.SetTasksReturned(len(tasks))
		if tasks == nil {
			tasks = []domain.Task{}
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, ok := taskID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: notFoundMessage})
		}
		task, err := store.GetTask(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrTaskNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: notFoundMessage})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to fetch task"})
		}
		return c.JSON(http.StatusOK, task)
	}
}

func createTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var n domain.NewTask
		if err := decodeBody(c, &n); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid body"})
		}
		if err := n.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{
				Error: "Missing required fields: title, member, category, day",
			})
		}

		task, err := store.CreateTask(ctx, n)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to create task"})
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, ok := taskID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: notFoundMessage})
		}

		var patch domain.TaskPatch
		if err := decodeBody(c, &patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid body"})
		}

		task, err := store.UpdateTask(ctx, id, patch)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTaskNotFound):
				return c.JSON(http.StatusNotFound, errorResponse{Error: notFoundMessage})
			default:
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					return c.JSON(http.StatusBadRequest, errorResponse{Error: "No fields to update"})
				}
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to update task"})
			}
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, ok := taskID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: notFoundMessage})
		}
		if err := store.DeleteTask(ctx, id); err != nil {
			if errors.Is(err, domain.ErrTaskNotFound) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: notFoundMessage})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to delete task"})
		}
		return c.JSON(http.StatusOK, deleteResponse{Message: "Task deleted successfully", ID: id})
	}
}

// taskID parses the :id path parameter. A non-numeric id behaves as an
// unknown task rather than a malformed request.
func taskID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, taskBodyMaxSize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(v)
}
