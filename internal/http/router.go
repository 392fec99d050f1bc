package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reefcloud/catalog-provision-service/internal/config"
	"github.com/reefcloud/catalog-provision-service/internal/service"
)

type Server struct {
	router  *gin.Engine
	handler *Handler
	cfg     *config.Config
	db      *pgxpool.Pool
}

func NewServer(cfg *config.Config, db *pgxpool.Pool, orderService *service.OrderService) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:  router,
		handler: NewHandler(orderService),
		cfg:     cfg,
		db:      db,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ok", "service": "catalog-provision-service"})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Internal API: called by the catalog layer after it has authorized
	// the user action. Creation dispatches exactly one provision attempt;
	// retire dispatches exactly one retirement attempt.
	internal := s.router.Group("/api/internal", InternalAuthMiddleware(s.cfg.InternalSecret))
	{
		internal.POST("/order-items", s.handler.CreateOrderItem)
		internal.POST("/order-items/:id/retire", s.handler.RetireOrderItem)
		internal.DELETE("/order-items/:id", s.handler.DeleteOrderItem)
	}

	// User API: read-only views of provisioning state.
	user := s.router.Group("/api/v1", JWTAuthMiddleware(s.cfg.JWT.SecretKey))
	{
		user.GET("/order-items/:id", s.handler.GetOrderItem)
		user.GET("/order-items/:id/logs", s.handler.GetOrderItemLogs)
		user.GET("/orders/:order_id/items", s.handler.GetOrderItems)
	}
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
