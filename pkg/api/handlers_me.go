package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"entregas/pkg/logger"
)

type updateMeReq struct {
	Phone string `json:"phone"`
	CEP   string `json:"cep"`
}

func (s *Server) me(c *gin.Context) {
	ok(c, currentProfile(c))
}

func (s *Server) updateMe(c *gin.Context) {
	var req updateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := s.svc.Profile().UpdateContact(c.Request.Context(), currentProfile(c).ID, req.Phone, req.CEP)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, p)
}

func (s *Server) telegramLinkCode(c *gin.Context) {
	code, err := s.svc.Profile().TelegramLinkCode(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"code": code, "command": "/start " + code})
}

func (s *Server) listNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	unreadOnly := c.Query("unread") == "true"
	list, err := s.svc.Notification().List(c.Request.Context(), currentProfile(c).ID, unreadOnly, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, list)
}

func (s *Server) unreadCount(c *gin.Context) {
	n, err := s.svc.Notification().UnreadCount(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"unread": n})
}

func (s *Server) markRead(c *gin.Context) {
	id, valid := idParam(c)
	if !valid {
		return
	}
	if err := s.svc.Notification().MarkRead(c.Request.Context(), currentProfile(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"id": id})
}

func (s *Server) markAllRead(c *gin.Context) {
	n, err := s.svc.Notification().MarkAllRead(c.Request.Context(), currentProfile(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, gin.H{"marked": n})
}

func (s *Server) serveWS(c *gin.Context) {
	p := currentProfile(c)
	if err := s.hub.ServeWS(c.Writer, c.Request, p.ID); err != nil {
		s.log.Warning("websocket closed", logger.Int64("profile_id", p.ID), logger.Error(err))
	}
}
