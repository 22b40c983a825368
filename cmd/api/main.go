package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studytrack/internal/auth"
	"studytrack/internal/config"
	"studytrack/internal/httpmiddleware"
	"studytrack/internal/imagestore"
	"studytrack/internal/queue"
	"studytrack/internal/store"
	"studytrack/internal/study"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(context.Background()); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	cache := store.NewAggCache(redisClient.Client, cfg.AggCacheTTL)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "studytrack:sessions")
	}

	svc := study.NewService(study.NewRepository(db.Client), cache, q)

	// Cloudinary client for profile images (nil when not configured)
	var images *imagestore.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		images = imagestore.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Auth callback: upserts the profile and issues a token pair.
	r.POST("/api/v1/auth/callback", func(c *gin.Context) {
		var req struct {
			Email           string `json:"email" binding:"required"`
			FirstName       string `json:"firstName"`
			LastName        string `json:"lastName"`
			ProfileImageURL string `json:"profileImageUrl"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := svc.UpsertProfile(c.Request.Context(), req.Email, req.FirstName, req.LastName, req.ProfileImageURL)
		if err != nil {
			respondErr(c, err)
			return
		}

		tokens, err := auth.Issue(user.ID, user.Email, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		_ = svc.SaveRefreshToken(c.Request.Context(), user.ID, tokens.RefreshToken, tokens.RefreshExp)

		c.JSON(http.StatusCreated, gin.H{
			"user":          user,
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	r.POST("/api/v1/auth/refresh", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims, err := auth.Parse(req.RefreshToken, cfg.JWTSigningKey, cfg.JWTIssuer)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		tokens, err := auth.Issue(claims.Subject, claims.Email, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		_ = svc.SaveRefreshToken(c.Request.Context(), claims.Subject, tokens.RefreshToken, tokens.RefreshExp)
		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	api := r.Group("/api/v1", auth.UserAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	api.GET("/auth/user", func(c *gin.Context) {
		user, err := svc.GetUser(c.Request.Context(), auth.OwnerID(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	})

	// Profile image upload — base64 JSON body or multipart file.
	api.POST("/upload", func(c *gin.Context) {
		if images == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
			return
		}

		var result *imagestore.UploadResult
		var err error
		if strings.Contains(c.ContentType(), "multipart/form-data") {
			file, header, ferr := c.Request.FormFile("file")
			if ferr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
				return
			}
			defer file.Close()
			data, ferr := io.ReadAll(file)
			if ferr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
				return
			}
			result, err = images.UploadBytes(data, header.Filename)
		} else {
			var body struct {
				Data string `json:"data" binding:"required"`
			}
			if berr := c.ShouldBindJSON(&body); berr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
				return
			}
			result, err = images.UploadBase64(body.Data)
		}
		if err != nil {
			log.Printf("image upload failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": result.SecureURL, "public_id": result.PublicID})
	})

	api.GET("/todos", func(c *gin.Context) {
		todos, err := svc.Todos(c.Request.Context(), auth.OwnerID(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"todos": todos})
	})

	api.POST("/todos", func(c *gin.Context) {
		var req struct {
			Title string `json:"title" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		todo, err := svc.CreateTodo(c.Request.Context(), auth.OwnerID(c), req.Title)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, todo)
	})

	api.PATCH("/todos/:id", func(c *gin.Context) {
		var req study.TodoUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		todo, err := svc.UpdateTodo(c.Request.Context(), auth.OwnerID(c), c.Param("id"), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	})

	api.DELETE("/todos/:id", func(c *gin.Context) {
		if err := svc.DeleteTodo(c.Request.Context(), auth.OwnerID(c), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	api.GET("/question-counts/:date", func(c *gin.Context) {
		counts, err := svc.QuestionCountsByDate(c.Request.Context(), auth.OwnerID(c), c.Param("date"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"questionCounts": counts})
	})

	api.POST("/question-counts", func(c *gin.Context) {
		var req struct {
			Subject string `json:"subject" binding:"required"`
			Count   *int   `json:"count" binding:"required"`
			Date    string `json:"date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		qc, err := svc.UpsertQuestionCount(c.Request.Context(), auth.OwnerID(c), req.Subject, *req.Count, req.Date)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, qc)
	})

	api.GET("/timer-sessions/:date", func(c *gin.Context) {
		sessions, err := svc.SessionsByDate(c.Request.Context(), auth.OwnerID(c), c.Param("date"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"timerSessions": sessions})
	})

	api.GET("/timer-sessions", func(c *gin.Context) {
		sessions, err := svc.SessionsByRange(c.Request.Context(), auth.OwnerID(c), c.Query("start"), c.Query("end"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"timerSessions": sessions})
	})

	api.POST("/timer-sessions", func(c *gin.Context) {
		var req struct {
			Subject  string `json:"subject" binding:"required"`
			Duration *int   `json:"duration" binding:"required"`
			Date     string `json:"date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := svc.SaveSession(c.Request.Context(), auth.OwnerID(c), req.Subject, *req.Duration, req.Date)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, session)
	})

	api.GET("/streak", func(c *gin.Context) {
		streak, err := svc.Streak(c.Request.Context(), auth.OwnerID(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"streak": streak})
	})

	api.GET("/monthly-study/:year/:month", func(c *gin.Context) {
		year, yerr := strconv.Atoi(c.Param("year"))
		month, merr := strconv.Atoi(c.Param("month"))
		if yerr != nil || merr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year or month"})
			return
		}
		days, err := svc.MonthlyStudy(c.Request.Context(), auth.OwnerID(c), year, month)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days})
	})

	api.GET("/stats", func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context(), auth.OwnerID(c), c.Query("startDate"), c.Query("endDate"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	api.GET("/net-results", func(c *gin.Context) {
		results, err := svc.NetResults(c.Request.Context(), auth.OwnerID(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"netResults": results})
	})

	api.POST("/net-results", func(c *gin.Context) {
		var req struct {
			ExamType      string                      `json:"examType" binding:"required"`
			AYTField      string                      `json:"aytField"`
			Date          string                      `json:"date" binding:"required"`
			Publisher     string                      `json:"publisher"`
			TotalNet      string                      `json:"totalNet" binding:"required"`
			SubjectScores map[string]study.SubjectNet `json:"subjectScores" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := svc.CreateNetResult(c.Request.Context(), auth.OwnerID(c), study.NetResult{
			ExamType:      req.ExamType,
			AYTField:      req.AYTField,
			Date:          req.Date,
			Publisher:     req.Publisher,
			TotalNet:      req.TotalNet,
			SubjectScores: req.SubjectScores,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	})

	api.DELETE("/net-results/:id", func(c *gin.Context) {
		if err := svc.DeleteNetResult(c.Request.Context(), auth.OwnerID(c), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// respondErr maps the study error taxonomy onto HTTP status codes. Store
// failures get a generic message and a log line.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, study.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, study.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, study.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
