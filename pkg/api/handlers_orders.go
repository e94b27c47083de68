package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"entregas/service"
)

type rateReq struct {
	Stars   int    `json:"stars" binding:"required"`
	Comment string `json:"comment"`
}

func (s *Server) listActiveTariffs(c *gin.Context) {
	list, err := s.svc.Tariff().List(c.Request.Context(), true)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) quote(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	km, err := strconv.ParseFloat(c.Query("km"), 64)
	if err != nil {
		badRequest(c, "km must be a number")
		return
	}
	price, err := s.svc.Tariff().Quote(c.Request.Context(), id, km)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"tariff_id": id, "distance_km": km, "price": price})
}

func (s *Server) createOrder(c *gin.Context) {
	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	o, err := s.svc.Order().Create(c.Request.Context(), currentProfile(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, o)
}

func (s *Server) listMyOrders(c *gin.Context) {
	list, err := s.svc.Order().ListForClient(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) getOrder(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	o, err := s.svc.Order().Get(c.Request.Context(), currentProfile(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, o)
}

func (s *Server) cancelOrder(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	if err := s.svc.Order().Cancel(c.Request.Context(), currentProfile(c), id); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"id": id, "status": "cancelled"})
}

func (s *Server) rateOrder(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "stars is required")
		return
	}
	r, err := s.svc.Rating().Rate(c.Request.Context(), currentProfile(c), id, req.Stars, req.Comment)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, r)
}
