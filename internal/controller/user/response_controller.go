package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/internal/controller"
	"github.com/solenne/roadmapper/internal/dto"
	"github.com/solenne/roadmapper/internal/service"
)

type ResponseController struct {
	responseService service.ResponseService
	questionService service.QuestionService
	buffer          service.AnswerBufferService
}

func NewResponseController(
	responseService service.ResponseService,
	questionService service.QuestionService,
	buffer service.AnswerBufferService,
) *ResponseController {
	return &ResponseController{
		responseService: responseService,
		questionService: questionService,
		buffer:          buffer,
	}
}

func (c *ResponseController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/questions", c.ListActiveQuestions)

	users := api.Group("/users/:user_id")
	users.POST("/answers", c.SubmitAnswer)
	users.GET("/answers", c.ListAnswers)
	users.GET("/answers/:question_id", c.GetAnswer)
	users.POST("/buffer", c.StageAnswer)
	users.GET("/buffer", c.GetStagedAnswers)
	users.DELETE("/buffer", c.ClearStagedAnswers)

	api.GET("/answers/:response_id/history", c.GetBackupChain)
	api.DELETE("/answers/:response_id", c.DeleteAnswer)
}

// ListActiveQuestions godoc
// @Summary List active questionnaire questions
// @Description Returns the active questions in display order.
// @Tags Questions
// @Produce json
// @Success 200 {array} dto.QuestionDTO
// @Router /questions [get]
func (c *ResponseController) ListActiveQuestions(ctx *gin.Context) {
	questions, err := c.questionService.ListActive()
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

// SubmitAnswer godoc
// @Summary Submit an answer
// @Description Records an answer for a question. Resubmissions snapshot the previous version before overwriting.
// @Tags Answers
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param answer body dto.SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} dto.ResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/{user_id}/answers [post]
func (c *ResponseController) SubmitAnswer(ctx *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	response, err := c.responseService.SubmitAnswer(ctx.Param("user_id"), req.QuestionID, req.Content, req.IsComplete, req.SourceToken)
	if err != nil {
		log.Warn().Err(err).Str("questionID", req.QuestionID).Msg("SubmitAnswer rejected")
		controller.WriteError(ctx, err)
		return
	}

	var out dto.ResponseDTO
	if err := copier.Copy(&out, response); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// ListAnswers godoc
// @Summary List a user's answers
// @Tags Answers
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {array} dto.ResponseDTO
// @Router /users/{user_id}/answers [get]
func (c *ResponseController) ListAnswers(ctx *gin.Context) {
	responses, err := c.responseService.GetUserResponses(ctx.Param("user_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out []dto.ResponseDTO
	if err := copier.Copy(&out, &responses); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// GetAnswer godoc
// @Summary Get a user's answer to one question
// @Tags Answers
// @Produce json
// @Param user_id path string true "User ID"
// @Param question_id path string true "Question ID"
// @Success 200 {object} dto.ResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{user_id}/answers/{question_id} [get]
func (c *ResponseController) GetAnswer(ctx *gin.Context) {
	response, err := c.responseService.GetAnswer(ctx.Param("user_id"), ctx.Param("question_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out dto.ResponseDTO
	if err := copier.Copy(&out, response); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// GetBackupChain godoc
// @Summary List the version history of an answer
// @Description Returns the backup chain ordered oldest first.
// @Tags Answers
// @Produce json
// @Param response_id path string true "Response ID"
// @Success 200 {array} dto.ResponseBackupDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /answers/{response_id}/history [get]
func (c *ResponseController) GetBackupChain(ctx *gin.Context) {
	backups, err := c.responseService.GetBackupChain(ctx.Param("response_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	var out []dto.ResponseBackupDTO
	if err := copier.Copy(&out, &backups); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// DeleteAnswer godoc
// @Summary Delete an answer
// @Description Deletes a non-original answer. Originals require force=true.
// @Tags Answers
// @Produce json
// @Param response_id path string true "Response ID"
// @Param force query bool false "Force deletion of an original answer"
// @Success 200 {object} dto.MessageResponse
// @Failure 409 {object} dto.ErrorResponse "Original answer is protected"
// @Router /answers/{response_id} [delete]
func (c *ResponseController) DeleteAnswer(ctx *gin.Context) {
	force := ctx.Query("force") == "true"
	if err := c.responseService.DeleteResponse(ctx.Param("response_id"), force); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "answer deleted"})
}

// StageAnswer godoc
// @Summary Stage an answer for generation
// @Description Holds an answer in the in-memory buffer used by roadmap generation. Nothing is persisted.
// @Tags Generation buffer
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param answer body dto.StageAnswerRequest true "Answer payload"
// @Success 200 {object} dto.MessageResponse
// @Router /users/{user_id}/buffer [post]
func (c *ResponseController) StageAnswer(ctx *gin.Context) {
	var req dto.StageAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	c.buffer.Stage(ctx.Param("user_id"), req.QuestionID, req.Answer)
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "answer staged"})
}

// GetStagedAnswers godoc
// @Summary Inspect the generation buffer
// @Tags Generation buffer
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /users/{user_id}/buffer [get]
func (c *ResponseController) GetStagedAnswers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.buffer.Snapshot(ctx.Param("user_id")))
}

// ClearStagedAnswers godoc
// @Summary Clear the generation buffer
// @Tags Generation buffer
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Router /users/{user_id}/buffer [delete]
func (c *ResponseController) ClearStagedAnswers(ctx *gin.Context) {
	c.buffer.Clear(ctx.Param("user_id"))
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "buffer cleared"})
}
