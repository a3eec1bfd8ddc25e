package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/response"
	"taskboard-api/internal/service"
)

// InvitationHandler handles board invitation requests
type InvitationHandler struct {
	invitationService service.InvitationService
	logger            *zap.Logger
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitationService service.InvitationService, logger *zap.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		logger:            logger,
	}
}

// CreateInvitation godoc
// @Summary      Board 초대
// @Description  memberId 또는 email로 사용자를 Board에 초대합니다 (소유자만 가능)
// @Description  path의 id는 Board ID입니다
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Board ID (UUID)"
// @Param        request body dto.CreateInvitationRequest true "초대 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.InvitationResponse} "초대 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청 또는 자기 자신 초대"
// @Failure      403 {object} response.ErrorResponse "소유자가 아님"
// @Failure      404 {object} response.ErrorResponse "Board 또는 사용자를 찾을 수 없음"
// @Failure      409 {object} response.ErrorResponse "이미 멤버이거나 대기 중인 초대가 있음"
// @Router       /invitations/{id} [post]
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	boardID, ok := pathUUID(c, "id", "board")
	if !ok {
		return
	}

	var req dto.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.CreateInvitation(requestContext(c), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, invitation)
}

// RespondInvitation godoc
// @Summary      초대 응답
// @Description  받은 초대를 수락(accepted)하거나 거절(declined)합니다
// @Description  이미 수락한 초대를 다시 수락하면 변화 없이 성공합니다
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invitation ID (UUID)"
// @Param        request body dto.RespondInvitationRequest true "응답 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.InvitationResponse} "응답 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "본인에게 온 초대가 아님"
// @Failure      404 {object} response.ErrorResponse "초대를 찾을 수 없음"
// @Failure      409 {object} response.ErrorResponse "이미 처리된 초대"
// @Router       /invitations/{id}/respond [post]
func (h *InvitationHandler) RespondInvitation(c *gin.Context) {
	inviteID, ok := pathUUID(c, "id", "invitation")
	if !ok {
		return
	}

	var req dto.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.RespondInvitation(requestContext(c), userID, inviteID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, invitation)
}

// ListMyInvitations godoc
// @Summary      내 초대 목록
// @Description  보낸 초대와 받은 초대를 함께 반환합니다
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "pending | accepted | declined"
// @Success      200 {object} response.SuccessResponse{data=dto.MyInvitationsResponse} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 상태 값"
// @Router       /invitations [get]
func (h *InvitationHandler) ListMyInvitations(c *gin.Context) {
	var filters dto.InvitationFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid query parameters")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListMyInvitations(c.Request.Context(), userID, &filters)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, invitations)
}
