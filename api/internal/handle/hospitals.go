package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medassist/api/internal/assist"
)

type hospitalsReq struct {
	Lat   *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng   *float64 `json:"lng" binding:"omitempty,longitude"`
	Query string   `json:"query" binding:"max=500"`
}

// FindHospitals handles POST /api/hospitals.
func (h *Handle) FindHospitals(c *gin.Context) {
	var req hospitalsReq
	if !bind(c, &req) {
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		badRequest(c, "lat and lng must be given together")
		return
	}

	in := assist.Envelope{Query: req.Query}
	if req.Lat != nil {
		in.Geo = &assist.Geo{Lat: *req.Lat, Lng: *req.Lng}
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	out, err := h.ai.FindHospitals(ctx, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
