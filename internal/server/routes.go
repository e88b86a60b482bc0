package server

import (
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/akmonengine/billiard"
	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/config"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

type SpeedRequest struct {
	// Either a raw speed or a slider position
	Speed  *float64 `json:"speed"`
	Slider *float64 `json:"slider"`
}

type ShotRequest struct {
	Ball            string           `json:"ball" binding:"required"`
	Velocity        actor.Vec3State  `json:"v"`
	AngularVelocity *actor.Vec3State `json:"w"`
}

// SetupRoutes configures the API of a session
func SetupRoutes(router *gin.Engine, s *Session, hub *Hub, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
	}

	router.GET("/health", HealthCheck(s))
	router.GET("/diagram", GetDiagram(s))
	router.PUT("/diagram", PutDiagram(s))
	router.PUT("/speed", PutSpeed(s))
	router.POST("/reset", PostReset(s))
	router.POST("/shot", PostShot(s))
	router.GET("/energy", GetEnergy(s))
	router.GET("/ws", hub.ServeWS)
}

// HealthCheck returns server health status
func HealthCheck(s *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := s.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "billiard",
			"uptime":   time.Since(startTime).String(),
			"ticks":    stats.Ticks,
			"episodes": stats.Episodes,
			"forced":   stats.ForcedConvergences,
		})
	}
}

func GetDiagram(s *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Diagram())
	}
}

func PutDiagram(s *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var diagram map[string]actor.BallState
		if err := c.ShouldBindJSON(&diagram); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := s.LoadDiagram(diagram); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, billiard.ErrUnknownBall) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		log.Printf("[API] diagram loaded with %d balls", len(diagram))
		c.JSON(http.StatusOK, s.Diagram())
	}
}

func PutSpeed(s *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SpeedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var speed float64
		switch {
		case req.Speed != nil:
			speed = *req.Speed
		case req.Slider != nil:
			speed = billiard.SpeedFromSlider(*req.Slider)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "speed or slider required"})
			return
		}
		if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "speed must be a finite non negative number"})
			return
		}

		s.SetSpeed(speed)
		c.JSON(http.StatusOK, gin.H{"speed": speed})
	}
}

func PostReset(s *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.Reset()
		c.JSON(http.StatusOK, s.Diagram())
	}
}

func PostShot(s *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var w actor.Vec3State
		if req.AngularVelocity != nil {
			w = *req.AngularVelocity
		}
		if err := s.Shot(req.Ball, req.Velocity.Vec3(), w.Vec3()); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ball": req.Ball})
	}
}

func GetEnergy(s *Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"energy": s.Energy()})
	}
}
