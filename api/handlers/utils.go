package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/internal/service"
)

// Handler serves the /v1 routes over a store.
type Handler struct {
	store service.Store
	log   logrus.FieldLogger
}

// New creates a Handler.
func New(store service.Store, log logrus.FieldLogger) *Handler {
	registerJSONNames()
	return &Handler{store: store, log: log}
}

var jsonNames sync.Once

// registerJSONNames makes validator report fields by their json name so
// errors read "due_date" instead of "DueDate".
func registerJSONNames() {
	jsonNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

// respondError writes err as {"error": ..., "fields": ...} with the status
// apierrors.HTTPStatus picks. Internal errors are logged, not echoed.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apierrors.HTTPStatus(err)
	body := apierrors.APIError{Message: err.Error()}

	var verr *apierrors.ValidationError
	switch {
	case status == http.StatusInternalServerError:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		body.Message = "internal server error"
	case errors.As(err, &verr):
		body.Message = "validation failed"
		body.Fields = verr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, apierrors.FromBinding(err))
		return false
	}
	return true
}

func (h *Handler) paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apierrors.NewValidationError("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
