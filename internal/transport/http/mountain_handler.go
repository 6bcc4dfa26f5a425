package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/service"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/util"
)

type MountainListResponse struct {
	Mountains []domain.MountainPeak `json:"mountains"`
}

type MountainResponse struct {
	Mountain *domain.MountainPeak `json:"mountain"`
}

// RegisterMountains exposes the peak gazetteer. It is public so the trip form
// can offer suggestions before sign-in.
func RegisterMountains(e *echo.Echo, insights InsightsAPI) {
	g := e.Group("/api/mountains")

	g.GET("", func(c echo.Context) error {
		peaks := insights.Mountains(c.Request().Context(), c.QueryParam("q"))
		if peaks == nil {
			peaks = []domain.MountainPeak{}
		}
		return c.JSON(http.StatusOK, MountainListResponse{Mountains: peaks})
	})

	g.GET("/all", func(c echo.Context) error {
		return c.JSON(http.StatusOK, MountainListResponse{Mountains: insights.Peaks(c.Request().Context())})
	})

	g.GET("/resolve", func(c echo.Context) error {
		peak, err := insights.Resolve(c.Request().Context(), c.QueryParam("name"))
		if err != nil {
			if errors.Is(err, service.ErrMountainNotFound) {
				return c.JSON(http.StatusNotFound, util.Error("Pick a mountain from the suggestions so the map marker is placed correctly"))
			}
			return c.JSON(http.StatusInternalServerError, util.Error("Server error while resolving mountain"))
		}
		return c.JSON(http.StatusOK, MountainResponse{Mountain: peak})
	})
}
