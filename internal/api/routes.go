package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zulandar/swapyard/internal/graph"
	"github.com/zulandar/swapyard/internal/itemmatch"
	"github.com/zulandar/swapyard/internal/ledger"
	"github.com/zulandar/swapyard/internal/matching"
	"github.com/zulandar/swapyard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type handlers struct {
	svc    *matching.Service
	round  *matching.Round
	ledger Ledger
	log    *zap.Logger
}

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, h *handlers) {
	router.GET("/healthz", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/participants", h.createParticipant)
	router.GET("/participants", h.listParticipants)
	router.GET("/participants/:id", h.getParticipant)
	router.DELETE("/participants/:id", h.deleteParticipant)
	router.GET("/participants/:id/trades", h.participantTrades)

	router.POST("/rebuild", h.rebuild)
	router.GET("/trades/direct", h.directTrades)
	router.GET("/cycles", h.cycles)
	router.GET("/matches", h.matches)
	router.POST("/execute", h.execute)

	router.POST("/evaluate", h.evaluate)
	router.GET("/items/matching", h.matchingItems)
	router.GET("/items/range", h.itemsInRange)

	router.GET("/runs", h.runs)
	router.GET("/runs/:id", h.getRun)
}

// participantRequest is the registration body. Pointers distinguish a
// missing field from a zero coordinate or id.
type participantRequest struct {
	ID        *int          `json:"id" binding:"required"`
	Name      string        `json:"name"`
	Latitude  *float64      `json:"latitude" binding:"required"`
	Longitude *float64      `json:"longitude" binding:"required"`
	Give      []models.Item `json:"items_to_give"`
	Wants     []models.Want `json:"items_to_receive"`
}

func (r participantRequest) participant() (*models.Participant, error) {
	p := models.NewParticipant(*r.ID, r.Name, *r.Latitude, *r.Longitude)
	for _, item := range r.Give {
		if err := p.AddGive(item); err != nil {
			return nil, err
		}
	}
	for _, w := range r.Wants {
		p.AddWant(w)
	}
	return p, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrDuplicateParticipant):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidLocation),
		errors.Is(err, models.ErrDuplicateItem),
		errors.Is(err, models.ErrDuplicateWant),
		errors.Is(err, graph.ErrInvalidCycle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) createParticipant(c *gin.Context) {
	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	p, err := req.participant()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := h.svc.RegisterParticipant(p); err != nil {
		abort(c, statusFor(err), err)
		return
	}
	stored, err := h.svc.Participant(p.ID)
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (h *handlers) listParticipants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"participants": h.svc.Participants()})
}

// pathID parses the :id parameter, writing a 400 when it is not an integer.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abort(c, http.StatusBadRequest, errors.New("participant id must be an integer"))
		return 0, false
	}
	return id, true
}

func (h *handlers) getParticipant(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.svc.Participant(id)
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteParticipant(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveParticipant(id); err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) participantTrades(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if h.ledger == nil {
		abort(c, http.StatusNotFound, errors.New("ledger is not configured"))
		return
	}
	trades, err := h.ledger.TradesFor(c.Request.Context(), id)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant_id": id, "trades": nonNil(trades)})
}

func (h *handlers) rebuild(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Rebuild())
}

func (h *handlers) directTrades(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"direct_trades": nonNil(h.svc.GetDirectTrades())})
}

// maxLength reads ?max_length=, defaulting to the service maximum.
func (h *handlers) maxLength(c *gin.Context) (int, bool) {
	raw := c.Query("max_length")
	if raw == "" {
		return h.svc.Options().MaxCycleLength, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 2 {
		abort(c, http.StatusBadRequest, errors.New("max_length must be an integer of at least 2"))
		return 0, false
	}
	return n, true
}

func (h *handlers) cycles(c *gin.Context) {
	n, ok := h.maxLength(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"max_length": n, "cycles": nonNil(h.svc.GetCycles(n))})
}

func (h *handlers) matches(c *gin.Context) {
	n, ok := h.maxLength(c)
	if !ok {
		return
	}
	r := h.svc.Matches(n)
	c.JSON(http.StatusOK, gin.H{
		"direct_trades": nonNil(r.DirectTrades),
		"cycles":        nonNil(r.Cycles),
	})
}

func (h *handlers) execute(c *gin.Context) {
	res, err := h.round.Run(c.Request.Context(), matching.TriggerAPI)
	if err != nil {
		body := gin.H{"error": err.Error()}
		if res != nil {
			body["run_id"] = res.RunID
			body["cycle_trades"] = nonNil(res.CycleTrades)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":        res.RunID,
		"direct_trades": nonNil(res.DirectTrades),
		"cycle_trades":  nonNil(res.CycleTrades),
		"cycles":        nonNil(res.Cycles),
	})
}

func (h *handlers) evaluate(c *gin.Context) {
	var item models.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	v := h.svc.EvaluateValue(&item)
	c.JSON(http.StatusOK, gin.H{"item": item, "value": v})
}

func (h *handlers) matchingItems(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		abort(c, http.StatusBadRequest, errors.New("category is required"))
		return
	}
	want := models.NewCategoryWant(category)
	if raw := c.Query("value"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			abort(c, http.StatusBadRequest, errors.New("value must be a number"))
			return
		}
		want = models.NewValuedWant(0, category, v)
	}
	c.JSON(http.StatusOK, gin.H{"want": want, "items": nonNil[itemmatch.Entry](h.svc.FindMatching(want))})
}

func (h *handlers) itemsInRange(c *gin.Context) {
	lo, errLo := strconv.ParseFloat(c.Query("lo"), 64)
	hi, errHi := strconv.ParseFloat(c.Query("hi"), 64)
	if errLo != nil || errHi != nil || lo > hi {
		abort(c, http.StatusBadRequest, errors.New("lo and hi must be numbers with lo <= hi"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"lo": lo, "hi": hi, "items": nonNil(h.svc.InValueRange(lo, hi))})
}

func (h *handlers) runs(c *gin.Context) {
	if h.ledger == nil {
		abort(c, http.StatusNotFound, errors.New("ledger is not configured"))
		return
	}
	limit := ledger.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abort(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	runs, err := h.ledger.ListRuns(c.Request.Context(), limit)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": nonNil(runs)})
}

func (h *handlers) getRun(c *gin.Context) {
	if h.ledger == nil {
		abort(c, http.StatusNotFound, errors.New("ledger is not configured"))
		return
	}
	run, err := h.ledger.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		abort(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
