package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astrokernel/imperium/internal/application/admission"
	"github.com/astrokernel/imperium/internal/application/common"
	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// Handlers exposes the admission commands and queries over HTTP
type Handlers struct {
	mediator common.Mediator
}

// NewHandlers creates the HTTP handler set
func NewHandlers(m common.Mediator) *Handlers {
	return &Handlers{mediator: m}
}

// startRequest is the shared body of all four start endpoints
type startRequest struct {
	CatalogKey string `json:"catalogKey" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// entryView is the wire shape of an admitted queue entry
type entryView struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	CatalogKey  string     `json:"catalogKey"`
	Quantity    int        `json:"quantity,omitempty"`
	TargetLevel int        `json:"targetLevel,omitempty"`
	Status      string     `json:"status"`
	CreditsCost int64      `json:"creditsCost"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletesAt *time.Time `json:"completesAt,omitempty"`
}

// startResponse is the success payload of the start endpoints
type startResponse struct {
	Entry           entryView `json:"entry"`
	EtaMinutes      int       `json:"etaMinutes"`
	CapacityPerHour int       `json:"capacityPerHour"`
}

func viewOf(e *queue.Entry) entryView {
	return entryView{
		ID:          e.ID,
		Type:        string(e.Type),
		CatalogKey:  e.CatalogKey,
		Quantity:    e.Quantity,
		TargetLevel: e.TargetLevel,
		Status:      string(e.Status),
		CreditsCost: e.CreditsCost,
		StartedAt:   e.StartedAt,
		CompletesAt: e.CompletesAt,
	}
}

func (h *Handlers) startStructure(c *gin.Context) {
	empireID, coord, body, ok := h.parseStart(c)
	if !ok {
		return
	}
	h.sendStart(c, &admission.StartStructureCommand{
		EmpireID:   empireID,
		Coord:      coord,
		CatalogKey: body.CatalogKey,
	})
}

func (h *Handlers) startResearch(c *gin.Context) {
	empireID, coord, body, ok := h.parseStart(c)
	if !ok {
		return
	}
	h.sendStart(c, &admission.StartResearchCommand{
		EmpireID:   empireID,
		Coord:      coord,
		CatalogKey: body.CatalogKey,
	})
}

func (h *Handlers) trainUnits(c *gin.Context) {
	empireID, coord, body, ok := h.parseStart(c)
	if !ok {
		return
	}
	h.sendStart(c, &admission.TrainUnitsCommand{
		EmpireID:   empireID,
		Coord:      coord,
		CatalogKey: body.CatalogKey,
		Quantity:   body.Quantity,
	})
}

func (h *Handlers) startDefense(c *gin.Context) {
	empireID, coord, body, ok := h.parseStart(c)
	if !ok {
		return
	}
	h.sendStart(c, &admission.StartDefenseCommand{
		EmpireID:   empireID,
		Coord:      coord,
		CatalogKey: body.CatalogKey,
	})
}

func (h *Handlers) cancelEntry(c *gin.Context) {
	empireID := empireFromContext(c)

	queueType := catalog.Kind(c.Param("type"))
	switch queueType {
	case catalog.KindStructure, catalog.KindTech, catalog.KindUnit, catalog.KindDefense:
	default:
		respondError(c, shared.NewInvalidRequestError("unknown queue type: "+c.Param("type")))
		return
	}

	response, err := h.mediator.Send(c.Request.Context(), &admission.CancelCommand{
		EmpireID: empireID,
		EntryID:  c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, response)
}

func (h *Handlers) baseStatus(c *gin.Context) {
	empireID := empireFromContext(c)
	coord, err := shared.NewCoord(c.Param("coord"))
	if err != nil {
		respondError(c, shared.NewInvalidRequestError(err.Error()))
		return
	}

	response, err := h.mediator.Send(c.Request.Context(), &admission.BaseStatusQuery{
		EmpireID: empireID,
		Coord:    coord,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, response)
}

func (h *Handlers) transactionLog(c *gin.Context) {
	q := &admission.TransactionLogQuery{
		EmpireID: empireFromContext(c),
		Category: c.Query("category"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(c, shared.NewInvalidRequestError("invalid limit: "+raw))
			return
		}
		q.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			respondError(c, shared.NewInvalidRequestError("invalid offset: "+raw))
			return
		}
		q.Offset = offset
	}

	response, err := h.mediator.Send(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, response)
}

func (h *Handlers) listCatalog(c *gin.Context) {
	response, err := h.mediator.Send(c.Request.Context(), &admission.CatalogQuery{
		Kind: c.Param("kind"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, response)
}

func (h *Handlers) empireOverview(c *gin.Context) {
	response, err := h.mediator.Send(c.Request.Context(), &admission.EmpireOverviewQuery{
		EmpireID: empireFromContext(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, response)
}

// parseStart extracts the empire, coordinate and body shared by the start endpoints
func (h *Handlers) parseStart(c *gin.Context) (shared.EmpireID, shared.Coord, *startRequest, bool) {
	empireID := empireFromContext(c)

	coord, err := shared.NewCoord(c.Param("coord"))
	if err != nil {
		respondError(c, shared.NewInvalidRequestError(err.Error()))
		return shared.EmpireID{}, shared.Coord{}, nil, false
	}

	var body startRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, shared.NewInvalidRequestError("invalid request body: "+err.Error()))
		return shared.EmpireID{}, shared.Coord{}, nil, false
	}

	return empireID, coord, &body, true
}

// sendStart dispatches an admission command and shapes the start response
func (h *Handlers) sendStart(c *gin.Context, cmd common.Request) {
	response, err := h.mediator.Send(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	result, ok := response.(*admission.StartResult)
	if !ok {
		respondError(c, shared.NewStorageError(nil))
		return
	}

	respondData(c, http.StatusOK, startResponse{
		Entry:           viewOf(result.Entry),
		EtaMinutes:      result.EtaMinutes,
		CapacityPerHour: result.CapacityPerHour,
	})
}
