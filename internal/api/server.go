package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"

	"github.com/gin-gonic/gin"
)

// Server exposes the planner over HTTP.
type Server struct {
	app    *app.App
	tokens TokenService
	logger *slog.Logger
	router *gin.Engine
}

// NewServer builds the router. Everything under /api requires a bearer token.
func NewServer(a *app.App, tokens TokenService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{app: a, tokens: tokens, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	router.GET("/health", s.health)

	protected := router.Group("/api")
	protected.Use(AuthMiddleware(tokens))
	protected.GET("/plan", s.getPlan)
	protected.PUT("/plan/:day", s.assign)
	protected.DELETE("/plan/:day", s.unassign)
	protected.POST("/shopping-list", s.shoppingList)
	protected.POST("/shopping-list/toggle", s.toggle)
	protected.POST("/shopping-list/clear-completed", s.clearCompleted)
	protected.GET("/recipes", s.searchRecipes)
	protected.GET("/categories", s.categories)

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "system": s.app.Health()})
}

func (s *Server) getPlan(c *gin.Context) {
	state := s.app.Plan()
	c.JSON(http.StatusOK, gin.H{
		"mealPlan":              state.MealPlan,
		"shoppingListCompleted": state.Completed,
	})
}

type assignReq struct {
	RecipeID string `json:"recipeId"`
}

func (s *Server) assign(c *gin.Context) {
	day, err := planner.ParseDay(c.Param("day"))
	if err != nil {
		s.writeError(c, err, http.StatusBadRequest)
		return
	}

	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	r, err := s.app.AssignRecipe(c.Request.Context(), day, req.RecipeID)
	if err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day.String(), "recipe": r})
}

func (s *Server) unassign(c *gin.Context) {
	day, err := planner.ParseDay(c.Param("day"))
	if err != nil {
		s.writeError(c, err, http.StatusBadRequest)
		return
	}
	if err := s.app.Unassign(c.Request.Context(), day); err != nil {
		s.writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) shoppingList(c *gin.Context) {
	entries, err := s.app.ShoppingList(c.Request.Context())
	if err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Item keys carry raw measures such as "1/2 cup", so they travel in the body
// rather than the path.
type toggleReq struct {
	Key string `json:"key"`
}

func (s *Server) toggle(c *gin.Context) {
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	key := req.Key
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item key required"})
		return
	}
	completed := s.app.Toggle(c.Request.Context(), key)
	c.JSON(http.StatusOK, gin.H{"key": key, "completed": completed})
}

func (s *Server) clearCompleted(c *gin.Context) {
	removed := s.app.ClearCompleted(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) searchRecipes(c *gin.Context) {
	recipes, err := s.app.Search(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (s *Server) categories(c *gin.Context) {
	cats, err := s.app.Categories(c.Request.Context())
	if err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// writeError maps domain errors to statuses; anything unrecognised gets fallback.
// Fetch failures are checked first since an absent planned recipe also
// matches ErrRecipeNotFound.
func (s *Server) writeError(c *gin.Context, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, shopping.ErrFetchFailed):
		status = http.StatusBadGateway
	case errors.Is(err, planner.ErrInvalidDay), errors.Is(err, planner.ErrInvalidRecipe):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrRecipeNotFound):
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
