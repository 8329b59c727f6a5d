package handlers

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/daffahilmyf/creature-catalog/internal/domain/repository"
	"github.com/daffahilmyf/creature-catalog/internal/domain/service"
	"github.com/daffahilmyf/creature-catalog/internal/transport/http/middleware"
	"github.com/daffahilmyf/creature-catalog/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

const nameRequiredMessage = "creature name or id is required"

type Handler struct {
	creatures service.CreatureService
	store     repository.Store
	// exposeInternal returns internal error details to clients; development only.
	exposeInternal bool
}

func NewHandler(creatures service.CreatureService, store repository.Store, exposeInternal bool) *Handler {
	return &Handler{
		creatures:      creatures,
		store:          store,
		exposeInternal: exposeInternal,
	}
}

type creatureRequest struct {
	Name *string `json:"name"`
}

// bindName accepts only a JSON object whose "name" is a non-blank string.
func bindName(c *gin.Context) (string, error) {
	var req creatureRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return "", service.Validation(nameRequiredMessage)
	}
	return strings.TrimSpace(*req.Name), nil
}

func (h *Handler) createCreature(c *gin.Context) {
	key, err := bindName(c)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	idem := service.Idempotency{
		Key:         c.GetString(middleware.IdempotencyKeyCtx),
		RequestHash: c.GetString(middleware.IdempotencyHashCtx),
	}

	creature, replayed, err := h.creatures.Create(c.Request.Context(), key, idem)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	status := nethttp.StatusCreated
	if replayed {
		status = nethttp.StatusOK
	}
	response.RespondOK(c, status, response.CreatureResponse{
		Message:  fmt.Sprintf("creature %s registered", creature.Name),
		Creature: response.NewCreature(creature),
	})
}

func (h *Handler) listCreatures(c *gin.Context) {
	creatures, err := h.creatures.FindAll(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nethttp.StatusOK, response.NewCreatureList(creatures))
}

func (h *Handler) getCreature(c *gin.Context) {
	creature, err := h.creatures.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nethttp.StatusOK, response.NewCreature(creature))
}

func (h *Handler) updateCreature(c *gin.Context) {
	key, err := bindName(c)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	creature, err := h.creatures.Update(c.Request.Context(), c.Param("id"), key)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nethttp.StatusOK, response.CreatureResponse{
		Message:  fmt.Sprintf("creature updated to %s", creature.Name),
		Creature: response.NewCreature(creature),
	})
}

func (h *Handler) deleteCreature(c *gin.Context) {
	id := c.Param("id")
	if err := h.creatures.Delete(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nethttp.StatusOK, response.MessageResponse{
		Message: fmt.Sprintf("creature %s deleted", id),
	})
}

func (h *Handler) health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.RespondOK(c, nethttp.StatusServiceUnavailable, gin.H{"status": "down"})
		return
	}
	response.RespondOK(c, nethttp.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) routeNotFound(c *gin.Context) {
	response.RespondError(c, nethttp.StatusNotFound, "route not found: "+c.Request.URL.Path)
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	status := statusFor(service.KindOf(err))
	if status < nethttp.StatusInternalServerError {
		response.RespondError(c, status, err.Error())
		return
	}

	_ = c.Error(err)
	message := response.InternalErrorMessage
	if h.exposeInternal {
		message = err.Error()
		if cause := errorsCause(err); cause != "" {
			message += ": " + cause
		}
	}
	response.RespondError(c, status, message)
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindInvalidID:
		return nethttp.StatusBadRequest
	case service.KindUpstreamNotFound, service.KindNotFound:
		return nethttp.StatusNotFound
	case service.KindAlreadyExists, service.KindIdempotencyConflict:
		return nethttp.StatusConflict
	default:
		return nethttp.StatusInternalServerError
	}
}

func errorsCause(err error) string {
	var se *service.Error
	if errors.As(err, &se) && se.Err != nil {
		return se.Err.Error()
	}
	return ""
}
