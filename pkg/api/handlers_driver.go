package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"entregas/pkg/models"
)

type completeReq struct {
	ProofURL string `json:"proof_url"`
}

type withdrawalReq struct {
	Amount     int64  `json:"amount" binding:"required"`
	PixKeyType string `json:"pix_key_type" binding:"required"`
	PixKey     string `json:"pix_key" binding:"required"`
}

func (s *Server) availableOrders(c *gin.Context) {
	list, err := s.svc.Order().ListAvailable(c.Request.Context(), currentProfile(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) acceptOrder(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	d, err := s.svc.Delivery().Accept(c.Request.Context(), currentProfile(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, d)
}

func (s *Server) listDeliveries(c *gin.Context) {
	p := currentProfile(c)
	var (
		list []*models.Delivery
		err  error
	)
	if c.Query("active") == "true" {
		list, err = s.svc.Delivery().Active(c.Request.Context(), p.ID)
	} else {
		list, err = s.svc.Delivery().ListForDriver(c.Request.Context(), p.ID)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) pickUp(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	d, err := s.svc.Delivery().PickUp(c.Request.Context(), currentProfile(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, d)
}

func (s *Server) complete(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	var req completeReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
	}
	d, err := s.svc.Delivery().Complete(c.Request.Context(), currentProfile(c), id, req.ProofURL)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, d)
}

func (s *Server) balance(c *gin.Context) {
	b, err := s.svc.Withdrawal().Balance(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, b)
}

func (s *Server) listWithdrawals(c *gin.Context) {
	list, err := s.svc.Withdrawal().ListForDriver(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) requestWithdrawal(c *gin.Context) {
	var req withdrawalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount, pix_key_type and pix_key are required")
		return
	}
	w, err := s.svc.Withdrawal().Request(c.Request.Context(), currentProfile(c), req.Amount, req.PixKeyType, req.PixKey)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, w)
}

func (s *Server) rank(c *gin.Context) {
	st, err := s.svc.Profile().Standing(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, st)
}

func (s *Server) myRatings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := s.svc.Rating().ListForDriver(c.Request.Context(), currentProfile(c).ID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) getVehicle(c *gin.Context) {
	v, err := s.svc.Profile().GetVehicle(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, v)
}

func (s *Server) setVehicle(c *gin.Context) {
	var req models.DriverVehicle
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	v, err := s.svc.Profile().SetVehicle(c.Request.Context(), currentProfile(c).ID, &req)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, v)
}

func (s *Server) leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := s.svc.Profile().Leaderboard(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}
