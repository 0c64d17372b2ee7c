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

type UserAdminController struct {
	userService     service.UserService
	responseService service.ResponseService
}

func NewUserAdminController(userService service.UserService, responseService service.ResponseService) *UserAdminController {
	return &UserAdminController{userService: userService, responseService: responseService}
}

func (c *UserAdminController) RegisterRoutes(admin *gin.RouterGroup) {
	admin.DELETE("/users/:user_id", c.DeleteUser)
	admin.PATCH("/users/:user_id/deactivate", c.DeactivateUser)
	admin.POST("/users/:user_id/answers/restore", c.RestoreAnswer)
	admin.POST("/responses/swap-tables", c.SwapTableResponses)
}

// DeleteUser godoc
// @Summary (Admin) Delete a user account
// @Description Archives every answer into a final backup, removes the user's responses and backups, then deletes the account. Roadmaps are kept without a user reference.
// @Tags Admin - Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{user_id} [delete]
func (c *UserAdminController) DeleteUser(ctx *gin.Context) {
	userID := ctx.Param("user_id")
	if err := c.userService.DeleteAccount(userID); err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Admin DeleteUser failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "user account deleted"})
}

// DeactivateUser godoc
// @Summary (Admin) Deactivate a user account
// @Tags Admin - Users
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Router /admin/users/{user_id}/deactivate [patch]
func (c *UserAdminController) DeactivateUser(ctx *gin.Context) {
	if _, err := c.userService.Deactivate(ctx.Param("user_id")); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "user deactivated"})
}

// RestoreAnswer godoc
// @Summary (Admin) Restore an answer without a backup step
// @Description Force-writes an answer for a user: existing rows are overwritten in place, missing rows are inserted as originals. No backup is created.
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param answer body dto.RestoreAnswerRequest true "Answer payload"
// @Success 200 {object} dto.ResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/users/{user_id}/answers/restore [post]
func (c *UserAdminController) RestoreAnswer(ctx *gin.Context) {
	var req dto.RestoreAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	response, err := c.responseService.RestoreAnswer(ctx.Param("user_id"), req.QuestionID, req.Content, req.IsComplete)
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

// SwapTableResponses godoc
// @Summary (Admin) Swap the answers of two TABLE questions
// @Description Exchanges the stored answer content between two TABLE questions in one transaction. One response per question is swapped. Both questions must be of type TABLE.
// @Tags Admin - Responses
// @Accept json
// @Produce json
// @Param swap body dto.SwapTableResponsesRequest true "Question pair"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/responses/swap-tables [post]
func (c *UserAdminController) SwapTableResponses(ctx *gin.Context) {
	var req dto.SwapTableResponsesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.responseService.SwapTableResponses(req.QuestionAID, req.QuestionBID); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "table responses swapped"})
}
