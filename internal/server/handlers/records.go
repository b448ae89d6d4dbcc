package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
)

// RecordHandler exposes list, read, create, update and delete for one collection.
type RecordHandler[T models.Record[T]] struct {
	coll   repository.Collection[T]
	create func(ctx context.Context, item T) (T, error)
	logger *zap.Logger
}

// NewRecordHandler serves coll. create replaces the plain insert when the
// collection needs validation or generated fields; nil means coll.Add.
func NewRecordHandler[T models.Record[T]](coll repository.Collection[T], create func(context.Context, T) (T, error), logger *zap.Logger) *RecordHandler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if create == nil {
		create = coll.Add
	}
	return &RecordHandler[T]{coll: coll, create: create, logger: logger}
}

// List returns every record in insertion order.
func (h *RecordHandler[T]) List(c *gin.Context) {
	items, err := h.coll.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

// Get returns one record.
func (h *RecordHandler[T]) Get(c *gin.Context) {
	item, err := h.coll.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create stores a new record. A client supplied id is ignored.
func (h *RecordHandler[T]) Create(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	saved, err := h.create(c.Request.Context(), item.WithID(""))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Update overwrites the record named in the path.
func (h *RecordHandler[T]) Update(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	item = item.WithID(c.Param("id"))
	if err := h.coll.Update(c.Request.Context(), item); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete removes the record named in the path.
func (h *RecordHandler[T]) Delete(c *gin.Context) {
	if err := h.coll.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
