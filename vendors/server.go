// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Server exposes the search Service over HTTP.
type Server struct {
	svc         *Service
	corsOrigins []string
}

func NewServer(svc *Service, corsOrigins []string) *Server {
	return &Server{svc: svc, corsOrigins: corsOrigins}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID(), s.cors())

	r.GET("/health", s.health)
	r.GET("/applicants", s.searchByName)
	r.GET("/applicants/address", s.searchByAddress)
	r.GET("/applicants/nearby", s.searchNearby)

	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("Listening on %s", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx.Set("request_id", id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		if origin != "" && (slices.Contains(s.corsOrigins, origin) || slices.Contains(s.corsOrigins, "*")) {
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			if headers := ctx.GetHeader("Access-Control-Request-Headers"); headers != "" {
				ctx.Header("Access-Control-Allow-Headers", headers)
			}

			ctx.Header("Vary", "Origin, Access-Control-Request-Headers")
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)

			return
		}

		ctx.Next()
	}
}

type nameQuery struct {
	Name      *string `form:"name" binding:"required"`
	AllStatus bool    `form:"all_status"`
}

type addressQuery struct {
	Contains *string `form:"contains" binding:"required"`
}

type nearbyQuery struct {
	Lat       *float64 `form:"lat" binding:"required"`
	Long      *float64 `form:"long" binding:"required"`
	AllStatus bool     `form:"all_status"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (s *Server) health(ctx *gin.Context) {
	n, err := s.svc.Count(ctx.Request.Context())
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "UP", "vendors": n})
}

func (s *Server) searchByName(ctx *gin.Context) {
	var q nameQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})

		return
	}

	vendors, err := s.svc.SearchByName(ctx.Request.Context(), *q.Name, q.AllStatus)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, nonNil(vendors))
}

func (s *Server) searchByAddress(ctx *gin.Context) {
	var q addressQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})

		return
	}

	vendors, err := s.svc.SearchByAddress(ctx.Request.Context(), *q.Contains)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, nonNil(vendors))
}

func (s *Server) searchNearby(ctx *gin.Context) {
	var q nearbyQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})

		return
	}

	vendors, err := s.svc.FindNearby(ctx.Request.Context(), *q.Lat, *q.Long, q.AllStatus, q.Limit)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, nonNil(vendors))
}

func (s *Server) fail(ctx *gin.Context, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", ctx.GetString("request_id"), ctx.Request.Method, ctx.Request.URL.Path, err)
		ctx.JSON(status, gin.H{"detail": "internal error"})

		return
	}

	var se *SearchError
	if errors.As(err, &se) {
		ctx.JSON(status, gin.H{"detail": se.Message})

		return
	}

	ctx.JSON(status, gin.H{"detail": err.Error()})
}

func nonNil(vendors []*Vendor) []*Vendor {
	if vendors == nil {
		return []*Vendor{}
	}

	return vendors
}
