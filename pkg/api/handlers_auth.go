package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"entregas/pkg/validator"
	"entregas/service"
)

type signInReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type valueReq struct {
	Value string `json:"value" binding:"required"`
}

type validationResp struct {
	Valid     bool   `json:"valid"`
	Kind      string `json:"kind,omitempty"`
	Formatted string `json:"formatted,omitempty"`
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) signUp(c *gin.Context) {
	var req service.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	sess, err := s.svc.Auth().SignUp(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, sess)
}

func (s *Server) signIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	sess, err := s.svc.Auth().SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, sess)
}

func (s *Server) validateDocument(c *gin.Context) {
	var req valueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "value is required")
		return
	}
	kind, valid := validator.ValidDocument(req.Value)
	resp := validationResp{Valid: valid}
	if valid {
		resp.Kind = string(kind)
		resp.Formatted = validator.FormatDocument(req.Value)
	}
	ok(c, resp)
}

func (s *Server) validatePhone(c *gin.Context) {
	var req valueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "value is required")
		return
	}
	resp := validationResp{Valid: validator.ValidPhone(req.Value)}
	if resp.Valid {
		resp.Formatted = validator.FormatPhone(req.Value)
	}
	ok(c, resp)
}

func (s *Server) validateCEP(c *gin.Context) {
	var req valueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "value is required")
		return
	}
	resp := validationResp{Valid: validator.ValidCEP(req.Value)}
	if resp.Valid {
		resp.Formatted = validator.FormatCEP(req.Value)
	}
	ok(c, resp)
}
