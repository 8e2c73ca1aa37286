// Package httpapi exposes the assistant as a small JSON API for web front-ends.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smart-store-agent/internal/assistant"
)

const ChannelName = "http"

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

type sessionResponse struct {
	SessionID string   `json:"session_id"`
	Messages  []string `json:"messages"`
}

// Server holds the routes of the chat API.
type Server struct {
	handler assistant.Handler
	timeout time.Duration
	engine  *gin.Engine
	srv     *http.Server
}

func NewServer(handler assistant.Handler, timeout time.Duration) *Server {
	s := &Server{handler: handler, timeout: timeout, engine: gin.New()}
	s.engine.Use(gin.Logger(), gin.Recovery())

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	api := s.engine.Group("/api/sessions")
	{
		api.POST("", s.StartSessionHandler)
		api.POST("/:id/messages", s.MessageHandler)
	}
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 HTTP API listening on %s", addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// StartSessionHandler opens a new session and returns the welcome message.
func (s *Server) StartSessionHandler(c *gin.Context) {
	sess := &bufferedSession{id: uuid.NewString()}
	if err := s.handler.OnSessionStart(c.Request.Context(), sess); err != nil {
		log.Printf("[ERROR] failed to start session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{SessionID: sess.id, Messages: sess.out()})
}

// MessageHandler answers one complaint within an existing session.
func (s *Server) MessageHandler(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text must not be blank"})
		return
	}

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sess := &bufferedSession{id: id}
	if err := s.handler.OnMessage(ctx, sess, req.Text); err != nil {
		log.Printf("[ERROR] failed to handle message in session %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to handle message: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionResponse{SessionID: id, Messages: sess.out()})
}

// bufferedSession collects outgoing messages so they can be returned in the response body.
type bufferedSession struct {
	id   string
	sent []string
}

func (b *bufferedSession) ID() string { return b.id }

func (b *bufferedSession) Send(text string) error {
	b.sent = append(b.sent, text)
	return nil
}

func (b *bufferedSession) out() []string {
	if b.sent == nil {
		return []string{}
	}
	return b.sent
}
