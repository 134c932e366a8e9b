package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rankhwa/internal/auth"
	"rankhwa/internal/repository"
	"rankhwa/internal/service"
)

// ManhwaHandler handles catalog and rating endpoints.
type ManhwaHandler struct {
	manhwaService service.ManhwaService
	ratingService service.RatingService
}

// NewManhwaHandler creates a new manhwa handler.
func NewManhwaHandler(manhwaService service.ManhwaService, ratingService service.RatingService) *ManhwaHandler {
	return &ManhwaHandler{manhwaService: manhwaService, ratingService: ratingService}
}

// RateRequest carries a score between 1 and 10.
type RateRequest struct {
	Score int `json:"score"`
}

// Search godoc
// @Summary Search manhwa
// @Description All filters are optional and combined with AND. genres is a comma separated list matched with OR.
// @Tags manhwa
// @Produce json
// @Param query query string false "Case-insensitive title substring"
// @Param min_rating query number false "Minimum average rating"
// @Param min_votes query int false "Minimum vote count"
// @Param year query int false "Release year"
// @Param genres query string false "Comma separated genres"
// @Param sort query string false "rating (default), date or title"
// @Param page query int false "Zero based page"
// @Param size query int false "Page size, default 20"
// @Success 200 {array} ManhwaSummary
// @Failure 400 {object} errors.ErrorResponse
// @Router /manhwa [get]
func (h *ManhwaHandler) Search(c echo.Context) error {
	criteria, err := searchCriteria(c)
	if err != nil {
		return err
	}
	rows, err := h.manhwaService.Search(c.Request().Context(), criteria)
	if err != nil {
		return mapError(err)
	}
	out := make([]ManhwaSummary, 0, len(rows))
	for i := range rows {
		out = append(out, toManhwaSummary(&rows[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func searchCriteria(c echo.Context) (repository.SearchCriteria, error) {
	var (
		criteria  repository.SearchCriteria
		minRating float64
		minVotes  int
		year      int
		sort      string
		genres    string
	)
	criteria.Size = repository.DefaultPageSize

	err := echo.QueryParamsBinder(c).
		String("query", &criteria.Query).
		Float64("min_rating", &minRating).
		Int("min_votes", &minVotes).
		Int("year", &year).
		String("sort", &sort).
		String("genres", &genres).
		Int("page", &criteria.Page).
		Int("size", &criteria.Size).
		BindError()
	if err != nil {
		return criteria, badRequest("invalid search parameters", "INVALID_QUERY")
	}

	if c.QueryParam("min_rating") != "" {
		criteria.MinRating = &minRating
	}
	if c.QueryParam("min_votes") != "" {
		criteria.MinVotes = &minVotes
	}
	if c.QueryParam("year") != "" {
		criteria.Year = &year
	}
	criteria.Sort = repository.ParseSortKey(sort)
	criteria.Genres = repository.ParseGenres(genres)
	return criteria, nil
}

// Get godoc
// @Summary Manhwa detail
// @Tags manhwa
// @Produce json
// @Param id path int true "Manhwa ID"
// @Success 200 {object} ManhwaDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /manhwa/{id} [get]
func (h *ManhwaHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.manhwaService.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toManhwaDetail(m))
}

// Rate godoc
// @Summary Rate a manhwa
// @Description Replaces any earlier score by the caller and recomputes the average.
// @Tags ratings
// @Accept json
// @Security BearerAuth
// @Param id path int true "Manhwa ID"
// @Param request body RateRequest true "Score"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /manhwa/{id}/rating [post]
func (h *ManhwaHandler) Rate(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req RateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_BODY")
	}
	if _, err := h.ratingService.Rate(c.Request().Context(), userID, id, req.Score); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusOK)
}

// MyRating godoc
// @Summary My rating
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Manhwa ID"
// @Success 200 {object} ScoreResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /manhwa/{id}/rating [get]
func (h *ManhwaHandler) MyRating(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return mapError(err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	score, err := h.ratingService.MyRating(c.Request().Context(), userID, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, ScoreResponse{Score: score})
}
