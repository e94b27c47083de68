package api

import (
	"github.com/gin-gonic/gin"

	"entregas/pkg/models"
)

type tariffReq struct {
	Name        string `json:"name"`
	VehicleType string `json:"vehicle_type"`
	BaseFee     int64  `json:"base_fee"`
	PerKmFee    int64  `json:"per_km_fee"`
	DriverShare int    `json:"driver_share"`
	IsActive    *bool  `json:"is_active"`
}

// tariff defaults is_active to true when the field is omitted.
func (r tariffReq) tariff() *models.Tariff {
	t := &models.Tariff{
		Name:        r.Name,
		VehicleType: r.VehicleType,
		BaseFee:     r.BaseFee,
		PerKmFee:    r.PerKmFee,
		DriverShare: r.DriverShare,
		IsActive:    true,
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	return t
}

type rejectReq struct {
	Note string `json:"note" binding:"required"`
}

func (s *Server) dashboard(c *gin.Context) {
	st, err := s.svc.Stats().Dashboard(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, st)
}

func (s *Server) listProfiles(c *gin.Context) {
	filter := models.ProfileFilter{
		Role:        c.Query("role"),
		OnlyPending: c.Query("pending") == "true",
		OnlyBlocked: c.Query("blocked") == "true",
	}
	list, err := s.svc.Profile().List(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) getProfile(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	p, err := s.svc.Profile().Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, p)
}

func (s *Server) profileAction(c *gin.Context, action func(*gin.Context, int64) error) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	if err := action(c, id); err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.svc.Profile().Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, p)
}

func (s *Server) approveProfile(c *gin.Context) {
	s.profileAction(c, func(c *gin.Context, id int64) error {
		return s.svc.Profile().Approve(c.Request.Context(), id)
	})
}

func (s *Server) blockProfile(c *gin.Context) {
	s.profileAction(c, func(c *gin.Context, id int64) error {
		return s.svc.Profile().Block(c.Request.Context(), id)
	})
}

func (s *Server) unblockProfile(c *gin.Context) {
	s.profileAction(c, func(c *gin.Context, id int64) error {
		return s.svc.Profile().Unblock(c.Request.Context(), id)
	})
}

func (s *Server) listAllTariffs(c *gin.Context) {
	list, err := s.svc.Tariff().List(c.Request.Context(), false)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) createTariff(c *gin.Context) {
	var req tariffReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	t, err := s.svc.Tariff().Create(c.Request.Context(), req.tariff())
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, t)
}

func (s *Server) updateTariff(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	var req tariffReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	t := req.tariff()
	t.ID = id
	t, err := s.svc.Tariff().Update(c.Request.Context(), t)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, t)
}

func (s *Server) deleteTariff(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	if err := s.svc.Tariff().Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"id": id})
}

func (s *Server) listAllOrders(c *gin.Context) {
	list, err := s.svc.Order().ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) listWithdrawalsByStatus(c *gin.Context) {
	list, err := s.svc.Withdrawal().ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) withdrawalAction(c *gin.Context, action func(*gin.Context, *models.Profile, int64) (*models.Withdrawal, error)) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	w, err := action(c, currentProfile(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, w)
}

func (s *Server) approveWithdrawal(c *gin.Context) {
	s.withdrawalAction(c, func(c *gin.Context, admin *models.Profile, id int64) (*models.Withdrawal, error) {
		return s.svc.Withdrawal().Approve(c.Request.Context(), admin, id)
	})
}

func (s *Server) rejectWithdrawal(c *gin.Context) {
	var req rejectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "note is required")
		return
	}
	s.withdrawalAction(c, func(c *gin.Context, admin *models.Profile, id int64) (*models.Withdrawal, error) {
		return s.svc.Withdrawal().Reject(c.Request.Context(), admin, id, req.Note)
	})
}

func (s *Server) markWithdrawalPaid(c *gin.Context) {
	s.withdrawalAction(c, func(c *gin.Context, admin *models.Profile, id int64) (*models.Withdrawal, error) {
		return s.svc.Withdrawal().MarkPaid(c.Request.Context(), admin, id)
	})
}
