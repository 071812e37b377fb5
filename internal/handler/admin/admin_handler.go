package admin

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dinerozz/behavior-monitor/config"
	"github.com/dinerozz/behavior-monitor/internal/entity"
	"github.com/dinerozz/behavior-monitor/internal/model/request"
	"github.com/dinerozz/behavior-monitor/internal/model/response"
	"github.com/dinerozz/behavior-monitor/internal/model/response/wrapper"
	"github.com/dinerozz/behavior-monitor/internal/repository"
	service "github.com/dinerozz/behavior-monitor/internal/service/report"
	"github.com/dinerozz/behavior-monitor/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AdminHandler struct {
	service service.ReportService
	auth    config.AuthConfig
}

func NewAdminHandler(service service.ReportService, auth config.AuthConfig) *AdminHandler {
	return &AdminHandler{
		service: service,
		auth:    auth,
	}
}

// Auth godoc
// @Summary Authenticate admin
// @Description Checks the admin credentials and issues a session token (also set as the "token" cookie)
// @Tags admin
// @Accept json
// @Produce json
// @Param credentials body request.AdminLogin true "Admin credentials"
// @Success 200 {object} wrapper.ResponseWrapper{data=response.AdminSession}
// @Failure 400 {object} wrapper.ErrorWrapper
// @Failure 401 {object} wrapper.ErrorWrapper
// @Failure 403 {object} wrapper.ErrorWrapper
// @Router /admin/auth [post]
func (h *AdminHandler) Auth(c *gin.Context) {
	var login request.AdminLogin
	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	if h.auth.AdminPasswordHash == "" || h.auth.JWTSecret == "" {
		c.JSON(http.StatusForbidden, wrapper.ErrorWrapper{Message: "Admin login is disabled", Success: false})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(login.Username), []byte(h.auth.AdminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.auth.AdminPasswordHash), []byte(login.Password))
	if !userOK || passErr != nil {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Invalid username or password", Success: false})
		return
	}

	token, expiresAt, err := utils.GenerateToken([]byte(h.auth.JWTSecret), login.Username, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.SetCookie("token", token, int(utils.AdminTokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data: response.AdminSession{
			Username:  login.Username,
			Token:     token,
			ExpiresAt: expiresAt,
		},
		Success: true,
	})
}

// GetBehaviors godoc
// @Summary      Get reported behaviors
// @Description  Get reported behavior events with optional filters
// @Tags         admin
// @Produce      json
// @Param        projectName  query     string  false  "Project name"
// @Param        userId       query     string  false  "Visitor ID"
// @Param        behavior     query     string  false  "uv, pv, click or dwell"
// @Param        pageUrl      query     string  false  "Page URL (partial match)"
// @Param        startTime    query     string  false  "Start time (RFC3339 format)"
// @Param        endTime      query     string  false  "End time (RFC3339 format)"
// @Param        page         query     int     false  "Page number (starts from 1)"
// @Param        per_page     query     int     false  "Items per page (default: 20, max: 1000)"
// @Success      200          {object}  entity.PaginatedResponse{data=[]entity.BehaviorEvent}
// @Failure      400          {object}  wrapper.ErrorWrapper
// @Failure      401          {object}  wrapper.ErrorWrapper
// @Failure      500          {object}  wrapper.ErrorWrapper
// @Router       /admin/behaviors [get]
func (h *AdminHandler) GetBehaviors(c *gin.Context) {
	var filter entity.BehaviorEventFilter

	if projectName := c.Query("projectName"); projectName != "" {
		filter.ProjectName = &projectName
	}

	if userID := c.Query("userId"); userID != "" {
		filter.UserID = &userID
	}

	if behaviorKind := c.Query("behavior"); behaviorKind != "" {
		filter.Behavior = &behaviorKind
	}

	if pageURL := c.Query("pageUrl"); pageURL != "" {
		filter.PageURL = &pageURL
	}

	if startTimeStr := c.Query("startTime"); startTimeStr != "" {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
				Message: "Invalid startTime format, use RFC3339",
			})
			return
		}
		filter.StartTime = &startTime
	}

	if endTimeStr := c.Query("endTime"); endTimeStr != "" {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
				Message: "Invalid endTime format, use RFC3339",
			})
			return
		}
		filter.EndTime = &endTime
	}

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
				Message: "Invalid page parameter, must be >= 1",
			})
			return
		}
		filter.Page = page
	}

	if perPageStr := c.Query("per_page"); perPageStr != "" {
		perPage, err := strconv.Atoi(perPageStr)
		if err != nil || perPage < 1 {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
				Message: "Invalid per_page parameter, must be >= 1",
			})
			return
		}
		filter.PerPage = perPage
	}

	events, pagination, err := h.service.GetEvents(c.Request.Context(), filter)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidQuery) {
			status = http.StatusBadRequest
		}
		c.JSON(status, wrapper.ErrorWrapper{
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, entity.PaginatedResponse{
		Data:       events,
		Success:    true,
		Pagination: *pagination,
	})
}

// GetBehaviorByID godoc
// @Summary      Get behavior by ID
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Behavior ID"
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.BehaviorEvent}
// @Failure      400  {object}  wrapper.ErrorWrapper
// @Failure      404  {object}  wrapper.ErrorWrapper
// @Failure      500  {object}  wrapper.ErrorWrapper
// @Router       /admin/behaviors/{id} [get]
func (h *AdminHandler) GetBehaviorByID(c *gin.Context) {
	idStr := c.Param("id")
	if !utils.ValidateUUID(idStr) {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid UUID format",
		})
		return
	}

	event, err := h.service.GetEventByID(c.Request.Context(), uuid.FromStringOrNil(idStr))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, wrapper.ErrorWrapper{
				Message: "Behavior not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data: event, Success: true,
	})
}

// GetDailyStats godoc
// @Summary      Daily project stats
// @Description  Page views, unique visitors, clicks and average dwell time of a project for one UTC day
// @Tags         admin
// @Produce      json
// @Param        project  query     string  true   "Project name"
// @Param        day      query     string  false  "Day (YYYY-MM-DD), defaults to today"
// @Success      200      {object}  wrapper.ResponseWrapper{data=entity.DailyStats}
// @Failure      400      {object}  wrapper.ErrorWrapper
// @Failure      503      {object}  wrapper.ErrorWrapper
// @Failure      500      {object}  wrapper.ErrorWrapper
// @Router       /admin/stats/daily [get]
func (h *AdminHandler) GetDailyStats(c *gin.Context) {
	stats, err := h.service.GetDailyStats(c.Request.Context(), c.Query("project"), c.Query("day"))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrInvalidQuery):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrStatsDisabled):
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: stats, Success: true})
}
