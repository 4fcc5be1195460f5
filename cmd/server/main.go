package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"bar_pos_backend/internal/cache"
	"bar_pos_backend/internal/database"
	"bar_pos_backend/internal/router"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil {
		utils.LogInfo("No .env file found, using process environment")
	}

	utils.InitLogger()

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "bar_pos_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "bar_pos_password")
	dbName := utils.Getenv("DB_NAME", "bar_pos_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"host": dbHost, "name": dbName})

	// Redis is optional; without it the catalog is read straight from
	// Postgres on every request.
	var productCache cache.ProductCache = cache.NoopProductCache{}
	if redisAddr := utils.Getenv("REDIS_ADDR", ""); redisAddr != "" {
		redisCache := cache.NewRedisProductCache(redisAddr, utils.Getenv("REDIS_PASSWORD", ""), 0)
		if err := redisCache.Ping(context.Background()); err != nil {
			utils.LogError(err, "Redis unavailable, falling back to uncached catalog reads")
		} else {
			productCache = redisCache
			utils.LogInfo("Product catalog cache enabled", map[string]interface{}{"addr": redisAddr})
		}
	}

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, database.GetDB(), productCache)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
