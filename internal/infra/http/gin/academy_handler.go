package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"academy/internal/domain/injury"
	"academy/internal/domain/wire"
	"academy/internal/infra/obs"
	"academy/internal/infra/storage/memory"
)

type AcademyHandler struct {
	Store  *memory.Academy
	Now    func() time.Time
	Logger *slog.Logger
}

type injuryRequest struct {
	PlayerID       string `json:"playerId"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	InjuredAt      string `json:"injuredAt"`
	ExpectedReturn string `json:"expectedReturn"`
	PhotoURL       string `json:"photoUrl"`
}

type injuryPatch struct {
	Status         *string `json:"status"`
	ExpectedReturn *string `json:"expectedReturn"`
	Description    *string `json:"description"`
}

type playerRequest struct {
	Name      string `json:"name"`
	Position  string `json:"position"`
	Number    int    `json:"number"`
	BirthDate string `json:"birthDate"`
}

// User serves staff accounts and, failing that, players, so every id a
// client may need a name for resolves here.
func (h AcademyHandler) User(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id := c.Param("id")
	if user, err := h.Store.UserByID(id); err == nil {
		c.JSON(http.StatusOK, gin.H{"user": renderUser(user)})
		return
	}
	if player, err := h.Store.PlayerByID(id); err == nil {
		c.JSON(http.StatusOK, gin.H{"data": renderPlayer(player)})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
}

func (h AcademyHandler) Injuries(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	items, err := extJSONList(h.Store.Injuries(strings.TrimSpace(c.Query("playerId"))))
	if err != nil {
		h.internalError(c, "render injuries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"injuries": items})
}

func (h AcademyHandler) ReportInjury(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	var req injuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}
	player, err := h.Store.PlayerByID(strings.TrimSpace(req.PlayerID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}
	now := h.now().UTC()
	injuredAt := now
	if req.InjuredAt != "" {
		if injuredAt, err = wire.ParseTime(req.InjuredAt); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid injuredAt"})
			return
		}
	}
	record := memory.Injury{
		PlayerID:    player.ID,
		Type:        strings.TrimSpace(req.Type),
		Description: strings.TrimSpace(req.Description),
		Severity:    strings.TrimSpace(req.Severity),
		Status:      injury.StatusActive,
		InjuredAt:   injuredAt,
		PhotoURL:    strings.TrimSpace(req.PhotoURL),
		UpdatedAt:   now,
	}
	if req.ExpectedReturn != "" {
		back, err := wire.ParseTime(req.ExpectedReturn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expectedReturn"})
			return
		}
		record.ExpectedReturn = &back
	}
	raw, err := extJSON(h.Store.SaveInjury(record))
	if err != nil {
		h.internalError(c, "render injury", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"injury": raw})
}

func (h AcademyHandler) UpdateInjury(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	var req injuryPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	record, err := h.Store.InjuryByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "injury not found"})
		return
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !injury.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		record.Status = status
	}
	if req.ExpectedReturn != nil {
		back, err := wire.ParseTime(*req.ExpectedReturn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expectedReturn"})
			return
		}
		record.ExpectedReturn = &back
	}
	if req.Description != nil {
		record.Description = strings.TrimSpace(*req.Description)
	}
	record.UpdatedAt = h.now().UTC()
	raw, err := extJSON(h.Store.SaveInjury(record))
	if err != nil {
		h.internalError(c, "render injury", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": raw})
}

func (h AcademyHandler) Stadiums(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	stadiums := h.Store.Stadiums()
	items := make([]gin.H, 0, len(stadiums))
	for _, s := range stadiums {
		items = append(items, renderStadium(s))
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h AcademyHandler) Players(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	players := h.Store.Players(c.Param("id"))
	items := make([]gin.H, 0, len(players))
	for _, p := range players {
		items = append(items, renderPlayer(p))
	}
	c.JSON(http.StatusOK, gin.H{"players": items})
}

func (h AcademyHandler) AddPlayer(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	team, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	first, last, _ := strings.Cut(name, " ")
	player := memory.Player{
		TeamID:    team,
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		Position:  strings.TrimSpace(req.Position),
		Number:    req.Number,
	}
	if req.BirthDate != "" {
		birth, err := wire.ParseTime(req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid birthDate"})
			return
		}
		player.BirthDate = &birth
	}
	c.JSON(http.StatusCreated, gin.H{"player": renderPlayer(h.Store.AddPlayer(player))})
}

func (h AcademyHandler) RemovePlayer(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	if err := h.Store.RemovePlayer(c.Param("id"), c.Param("playerId")); err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		h.internalError(c, "remove player", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Tournaments answers with a bare array.
func (h AcademyHandler) Tournaments(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	items, err := extJSONList(h.Store.Tournaments())
	if err != nil {
		h.internalError(c, "render tournaments", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h AcademyHandler) internalError(c *gin.Context, op string, err error) {
	if log := obs.LoggerFrom(c.Request.Context(), h.Logger); log != nil {
		log.Error(op, "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h AcademyHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}
