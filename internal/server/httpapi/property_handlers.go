package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	"github.com/dmitrijs2005/bienesraices/internal/server/services"
	"github.com/labstack/echo/v4"
)

const ownerPageSize = 10

type propertyRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  int64   `json:"categoryId"`
	PriceID     int64   `json:"priceId"`
	Rooms       int     `json:"rooms"`
	Parking     int     `json:"parking"`
	Bathrooms   int     `json:"bathrooms"`
	Street      string  `json:"street"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

func (r *propertyRequest) toInput() *services.PropertyInput {
	return &services.PropertyInput{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		PriceID:     r.PriceID,
		Rooms:       r.Rooms,
		Parking:     r.Parking,
		Bathrooms:   r.Bathrooms,
		Street:      r.Street,
		Lat:         r.Lat,
		Lng:         r.Lng,
	}
}

type propertyResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  int64   `json:"categoryId"`
	PriceID     int64   `json:"priceId"`
	Rooms       int     `json:"rooms"`
	Parking     int     `json:"parking"`
	Bathrooms   int     `json:"bathrooms"`
	Street      string  `json:"street"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	ImageKey    string  `json:"image"`
	Published   bool    `json:"published"`
}

func toPropertyResponse(p *models.Property) propertyResponse {
	return propertyResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		PriceID:     p.PriceID,
		Rooms:       p.Rooms,
		Parking:     p.Parking,
		Bathrooms:   p.Bathrooms,
		Street:      p.Street,
		Lat:         p.Lat,
		Lng:         p.Lng,
		ImageKey:    p.ImageKey,
		Published:   p.Published,
	}
}

func (s *HTTPServer) handleListOwnProperties(c echo.Context) error {
	claims := currentClaims(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	result, err := s.properties.ListByOwner(c.Request().Context(), claims.UserID, ownerPageSize, (page-1)*ownerPageSize)
	if err != nil {
		return s.errorResponse(c, err)
	}

	items := make([]propertyResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, toPropertyResponse(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": result.Total, "page": page})
}

func (s *HTTPServer) handleCreateProperty(c echo.Context) error {
	claims := currentClaims(c)

	var req propertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := s.properties.Create(c.Request().Context(), claims.UserID, req.toInput())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, toPropertyResponse(p))
}

func (s *HTTPServer) handleGetOwnProperty(c echo.Context) error {
	claims := currentClaims(c)

	p, err := s.properties.Get(c.Request().Context(), claims.UserID, c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p))
}

func (s *HTTPServer) handleUpdateProperty(c echo.Context) error {
	claims := currentClaims(c)

	var req propertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := s.properties.Update(c.Request().Context(), claims.UserID, c.Param("id"), req.toInput())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p))
}

func (s *HTTPServer) handleDeleteProperty(c echo.Context) error {
	claims := currentClaims(c)

	if err := s.properties.Delete(c.Request().Context(), claims.UserID, c.Param("id")); err != nil {
		return s.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) handleTogglePublish(c echo.Context) error {
	claims := currentClaims(c)

	p, err := s.properties.TogglePublish(c.Request().Context(), claims.UserID, c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p))
}

func (s *HTTPServer) handleRequestImageUpload(c echo.Context) error {
	claims := currentClaims(c)

	url, key, err := s.properties.RequestImageUpload(c.Request().Context(), claims.UserID, c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url, "key": key})
}

type confirmImageRequest struct {
	Key string `json:"key"`
}

func (s *HTTPServer) handleConfirmImageUpload(c echo.Context) error {
	claims := currentClaims(c)

	var req confirmImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.properties.ConfirmImageUpload(c.Request().Context(), claims.UserID, c.Param("id"), req.Key); err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "image attached"})
}

func (s *HTTPServer) handleListMessages(c echo.Context) error {
	claims := currentClaims(c)

	msgs, err := s.messages.ListForOwner(c.Request().Context(), claims.UserID, c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}

	type messageResponse struct {
		ID         string `json:"id"`
		Text       string `json:"text"`
		SenderName string `json:"senderName"`
	}
	items := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, messageResponse{ID: m.ID, Text: m.Text, SenderName: m.SenderName})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (s *HTTPServer) handlePublicProperty(c echo.Context) error {
	ctx := c.Request().Context()

	p, err := s.properties.GetPublished(ctx, c.Param("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}

	resp := echo.Map{"property": toPropertyResponse(p)}
	if p.ImageKey != "" {
		if url, err := s.properties.GetImageURL(ctx, p.ImageKey); err == nil {
			resp["imageUrl"] = url
		} else {
			s.logger.Warn(ctx, "image url presign failed", "key", p.ImageKey, "error", err)
		}
	}
	// Visitors see whether they could message the owner; the owner sees
	// their own listing without the message form.
	if claims := currentClaims(c); claims != nil {
		resp["isOwner"] = claims.UserID == p.UserID
	}
	return c.JSON(http.StatusOK, resp)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (s *HTTPServer) handleSendMessage(c echo.Context) error {
	claims := currentClaims(c)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	m, err := s.messages.Send(c.Request().Context(), claims.UserID, c.Param("id"), req.Text)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": m.ID})
}

func (s *HTTPServer) handlePublishedListings(c echo.Context) error {
	listings, err := s.properties.ListPublished(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, err)
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	return c.JSON(http.StatusOK, listings)
}

func (s *HTTPServer) handleCategories(c echo.Context) error {
	categories, err := s.properties.Categories(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, err)
	}
	type categoryResponse struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	items := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		items = append(items, categoryResponse{ID: cat.ID, Name: cat.Name})
	}
	return c.JSON(http.StatusOK, items)
}

func (s *HTTPServer) handlePriceRanges(c echo.Context) error {
	prices, err := s.properties.PriceRanges(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, err)
	}
	type priceResponse struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	items := make([]priceResponse, 0, len(prices))
	for _, pr := range prices {
		items = append(items, priceResponse{ID: pr.ID, Name: pr.Name})
	}
	return c.JSON(http.StatusOK, items)
}
