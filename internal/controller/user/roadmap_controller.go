package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/internal/controller"
	"github.com/solenne/roadmapper/internal/dto"
	"github.com/solenne/roadmapper/internal/service"
)

type RoadmapController struct {
	generation service.GenerationService
	users      service.UserService
}

func NewRoadmapController(generation service.GenerationService, users service.UserService) *RoadmapController {
	return &RoadmapController{generation: generation, users: users}
}

func (c *RoadmapController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/users", c.RegisterUser)
	api.GET("/users/:user_id", c.GetUser)
	api.POST("/users/:user_id/login", c.TouchLogin)

	users := api.Group("/users/:user_id")
	users.POST("/roadmaps", c.CreateRoadmap)
	users.GET("/roadmaps", c.ListRoadmaps)
	users.POST("/roadmaps/:roadmap_id/generate", c.Generate)
	users.POST("/roadmaps/:roadmap_id/regenerate", c.Regenerate)

	api.GET("/roadmaps/:roadmap_id", c.GetRoadmap)
	api.GET("/roadmaps/:roadmap_id/status", c.GetStatus)
	api.GET("/roadmaps/:roadmap_id/history", c.GetHistory)
	api.POST("/roadmaps/:roadmap_id/archive", c.Archive)
	api.DELETE("/roadmaps/:roadmap_id", c.Delete)
}

// RegisterUser godoc
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body dto.RegisterUserRequest true "Account details"
// @Success 201 {object} dto.UserDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /users [post]
func (c *RoadmapController) RegisterUser(ctx *gin.Context) {
	var req dto.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	user, err := c.users.Register(req.Email, req.Username)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.UserDTO
	if err := copier.Copy(&out, user); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// GetUser godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.UserDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{user_id} [get]
func (c *RoadmapController) GetUser(ctx *gin.Context) {
	user, err := c.users.Get(ctx.Param("user_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.UserDTO
	if err := copier.Copy(&out, user); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// TouchLogin godoc
// @Summary Record a user login
// @Description Updates the user's last-login timestamp, which feeds the activity level used during generation.
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{user_id}/login [post]
func (c *RoadmapController) TouchLogin(ctx *gin.Context) {
	if err := c.users.TouchLogin(ctx.Param("user_id")); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "login recorded"})
}

// CreateRoadmap godoc
// @Summary Create a draft roadmap
// @Tags Roadmaps
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param roadmap body dto.CreateRoadmapRequest true "Roadmap title"
// @Success 201 {object} dto.RoadmapDTO
// @Router /users/{user_id}/roadmaps [post]
func (c *RoadmapController) CreateRoadmap(ctx *gin.Context) {
	var req dto.CreateRoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	userID := ctx.Param("user_id")
	roadmap, err := c.generation.Create(&userID, req.Title)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.RoadmapDTO
	if err := copier.Copy(&out, roadmap); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// ListRoadmaps godoc
// @Summary List a user's roadmaps
// @Tags Roadmaps
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {array} dto.RoadmapDTO
// @Router /users/{user_id}/roadmaps [get]
func (c *RoadmapController) ListRoadmaps(ctx *gin.Context) {
	roadmaps, err := c.generation.ListForUser(ctx.Param("user_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out []dto.RoadmapDTO
	if err := copier.Copy(&out, &roadmaps); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Generate godoc
// @Summary Generate a roadmap
// @Description Runs a generation from the user's staged answers. Config fields omitted from the body keep their defaults.
// @Tags Roadmaps
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param roadmap_id path string true "Roadmap ID"
// @Param config body dto.GenerateRoadmapRequest false "Configuration overrides"
// @Success 200 {object} service.GenerationOutcome
// @Failure 409 {object} dto.ErrorResponse "Already generating or archived"
// @Failure 502 {object} dto.ErrorResponse "Completion service failure"
// @Router /users/{user_id}/roadmaps/{roadmap_id}/generate [post]
func (c *RoadmapController) Generate(ctx *gin.Context) {
	c.runGeneration(ctx, c.generation.Generate)
}

// Regenerate godoc
// @Summary Regenerate a completed or failed roadmap
// @Tags Roadmaps
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param roadmap_id path string true "Roadmap ID"
// @Param config body dto.GenerateRoadmapRequest false "Configuration overrides"
// @Success 200 {object} service.GenerationOutcome
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/{user_id}/roadmaps/{roadmap_id}/regenerate [post]
func (c *RoadmapController) Regenerate(ctx *gin.Context) {
	c.runGeneration(ctx, c.generation.Regenerate)
}

func (c *RoadmapController) runGeneration(ctx *gin.Context, run func(ctx context.Context, roadmapID, userID string, override service.ConfigOverride) (*service.GenerationOutcome, error)) {
	var req dto.GenerateRoadmapRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
			return
		}
	}

	override := service.ConfigOverride{
		Model:            req.Model,
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
	}

	outcome, err := run(ctx.Request.Context(), ctx.Param("roadmap_id"), ctx.Param("user_id"), override)
	if err != nil {
		log.Warn().Err(err).Str("roadmapID", ctx.Param("roadmap_id")).Msg("Generation request failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, outcome)
}

// GetRoadmap godoc
// @Summary Get a roadmap with its content
// @Tags Roadmaps
// @Produce json
// @Param roadmap_id path string true "Roadmap ID"
// @Success 200 {object} dto.RoadmapDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /roadmaps/{roadmap_id} [get]
func (c *RoadmapController) GetRoadmap(ctx *gin.Context) {
	roadmap, err := c.generation.Get(ctx.Param("roadmap_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.RoadmapDTO
	if err := copier.Copy(&out, roadmap); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// GetStatus godoc
// @Summary Poll a roadmap's generation status
// @Tags Roadmaps
// @Produce json
// @Param roadmap_id path string true "Roadmap ID"
// @Success 200 {object} dto.RoadmapStatusDTO
// @Router /roadmaps/{roadmap_id}/status [get]
func (c *RoadmapController) GetStatus(ctx *gin.Context) {
	roadmap, err := c.generation.Get(ctx.Param("roadmap_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.RoadmapStatusDTO{ID: roadmap.ID, Status: roadmap.Status, Version: roadmap.Version})
}

// GetHistory godoc
// @Summary List generation attempts for a roadmap
// @Tags Roadmaps
// @Produce json
// @Param roadmap_id path string true "Roadmap ID"
// @Success 200 {array} dto.GenerationRecordDTO
// @Router /roadmaps/{roadmap_id}/history [get]
func (c *RoadmapController) GetHistory(ctx *gin.Context) {
	records, err := c.generation.History(ctx.Param("roadmap_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out []dto.GenerationRecordDTO
	if err := copier.Copy(&out, &records); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Archive godoc
// @Summary Archive a roadmap
// @Description Moves the roadmap to its terminal ARCHIVED state.
// @Tags Roadmaps
// @Produce json
// @Param roadmap_id path string true "Roadmap ID"
// @Success 200 {object} dto.RoadmapDTO
// @Failure 409 {object} dto.ErrorResponse "Already archived"
// @Router /roadmaps/{roadmap_id}/archive [post]
func (c *RoadmapController) Archive(ctx *gin.Context) {
	roadmap, err := c.generation.Archive(ctx.Param("roadmap_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.RoadmapDTO
	if err := copier.Copy(&out, roadmap); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// Delete godoc
// @Summary Delete a roadmap
// @Tags Roadmaps
// @Produce json
// @Param roadmap_id path string true "Roadmap ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 409 {object} dto.ErrorResponse "Archived roadmaps cannot be deleted"
// @Router /roadmaps/{roadmap_id} [delete]
func (c *RoadmapController) Delete(ctx *gin.Context) {
	if err := c.generation.Delete(ctx.Param("roadmap_id")); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "roadmap deleted"})
}
