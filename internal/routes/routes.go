package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jornathano/dashboard/internal/config"
	handler "github.com/jornathano/dashboard/internal/handlers"
	"github.com/jornathano/dashboard/internal/logging"
	"github.com/jornathano/dashboard/internal/repository"
	"github.com/jornathano/dashboard/internal/services/invoices"
	"github.com/jornathano/dashboard/internal/services/pagecache"
)

// NewRouter builds the gin engine with its middleware and every route.
func NewRouter(cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Location", "X-Cache", "Age"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, db, pagecache.New())
	return r
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cache *pagecache.Cache) {
	invoiceRepo := repository.NewInvoiceRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	invoiceService := invoices.NewInvoiceService(invoiceRepo, cache)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, invoiceRepo, customerRepo, cache)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		stats := config.Health(c.Request.Context(), db)
		if stats["status"] != "up" {
			c.JSON(http.StatusServiceUnavailable, stats)
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	// Invoice screen
	dash := r.Group("/dashboard/invoices")
	dash.GET("", invoiceHandler.ListInvoices)
	dash.GET("/create", invoiceHandler.CreateForm)
	dash.POST("/create", invoiceHandler.CreateInvoice)
	dash.GET("/:id/edit", invoiceHandler.EditForm)
	dash.POST("/:id/edit", invoiceHandler.EditInvoice)
	dash.POST("/:id/delete", invoiceHandler.DeleteInvoice)
	dash.DELETE("/:id", invoiceHandler.DeleteInvoice)
}
