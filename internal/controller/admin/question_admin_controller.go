package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/internal/controller"
	"github.com/solenne/roadmapper/internal/dto"
	"github.com/solenne/roadmapper/internal/service"
)

type QuestionAdminController struct {
	questionService service.QuestionService
}

func NewQuestionAdminController(questionService service.QuestionService) *QuestionAdminController {
	return &QuestionAdminController{questionService: questionService}
}

func (c *QuestionAdminController) RegisterRoutes(admin *gin.RouterGroup) {
	questions := admin.Group("/questions")
	questions.POST("", c.CreateQuestion)
	questions.GET("", c.ListQuestions)
	questions.GET("/stats", c.GetStats)
	questions.POST("/reorder", c.ReorderQuestions)
	questions.GET("/:question_id", c.GetQuestion)
	questions.PUT("/:question_id", c.UpdateQuestion)
	questions.PATCH("/:question_id/toggle", c.ToggleQuestion)
	questions.DELETE("/:question_id", c.DeleteQuestion)
}

// CreateQuestion godoc
// @Summary (Admin) Create a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param question body dto.CreateQuestionRequest true "Question definition"
// @Success 201 {object} dto.QuestionDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/questions [post]
func (c *QuestionAdminController) CreateQuestion(ctx *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	question, err := c.questionService.Create(service.QuestionInput{
		Text:          req.Text,
		Type:          req.Type,
		Category:      req.Category,
		OrderNum:      req.OrderNum,
		Configuration: req.Configuration,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Admin CreateQuestion rejected")
		controller.WriteError(ctx, err)
		return
	}

	var out dto.QuestionDTO
	if err := copier.Copy(&out, question); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

// ListQuestions godoc
// @Summary (Admin) List all questions including inactive ones
// @Tags Admin - Questions
// @Produce json
// @Success 200 {array} dto.QuestionDTO
// @Router /admin/questions [get]
func (c *QuestionAdminController) ListQuestions(ctx *gin.Context) {
	questions, err := c.questionService.List()
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out []dto.QuestionDTO
	if err := copier.Copy(&out, &questions); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// GetQuestion godoc
// @Summary (Admin) Get a question
// @Tags Admin - Questions
// @Produce json
// @Param question_id path string true "Question ID"
// @Success 200 {object} dto.QuestionDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/questions/{question_id} [get]
func (c *QuestionAdminController) GetQuestion(ctx *gin.Context) {
	question, err := c.questionService.Get(ctx.Param("question_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.QuestionDTO
	if err := copier.Copy(&out, question); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// UpdateQuestion godoc
// @Summary (Admin) Update a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param question_id path string true "Question ID"
// @Param question body dto.UpdateQuestionRequest true "New definition"
// @Success 200 {object} dto.QuestionDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/questions/{question_id} [put]
func (c *QuestionAdminController) UpdateQuestion(ctx *gin.Context) {
	var req dto.UpdateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	question, err := c.questionService.Update(ctx.Param("question_id"), service.QuestionInput{
		Text:          req.Text,
		Type:          req.Type,
		Category:      req.Category,
		OrderNum:      req.OrderNum,
		Configuration: req.Configuration,
	})
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	var out dto.QuestionDTO
	if err := copier.Copy(&out, question); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// ToggleQuestion godoc
// @Summary (Admin) Toggle a question's visibility
// @Tags Admin - Questions
// @Produce json
// @Param question_id path string true "Question ID"
// @Success 200 {object} dto.QuestionDTO
// @Router /admin/questions/{question_id}/toggle [patch]
func (c *QuestionAdminController) ToggleQuestion(ctx *gin.Context) {
	question, err := c.questionService.ToggleActive(ctx.Param("question_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.QuestionDTO
	if err := copier.Copy(&out, question); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// ReorderQuestions godoc
// @Summary (Admin) Reorder questions within a category
// @Description Applies new order positions atomically. Duplicate positions are rejected.
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param order body dto.ReorderQuestionsRequest true "Category and positions"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/questions/reorder [post]
func (c *QuestionAdminController) ReorderQuestions(ctx *gin.Context) {
	var req dto.ReorderQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.questionService.Reorder(req.Category, req.OrderByID); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "questions reordered"})
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Description Fails for questions that already have responses.
// @Tags Admin - Questions
// @Produce json
// @Param question_id path string true "Question ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 409 {object} dto.ErrorResponse "Question has responses"
// @Router /admin/questions/{question_id} [delete]
func (c *QuestionAdminController) DeleteQuestion(ctx *gin.Context) {
	if err := c.questionService.Delete(ctx.Param("question_id")); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "question deleted"})
}

// GetStats godoc
// @Summary (Admin) Catalog statistics
// @Tags Admin - Questions
// @Produce json
// @Success 200 {object} service.QuestionStats
// @Router /admin/questions/stats [get]
func (c *QuestionAdminController) GetStats(ctx *gin.Context) {
	stats, err := c.questionService.Stats()
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
