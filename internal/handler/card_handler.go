package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/response"
	"taskboard-api/internal/service"
)

// CardHandler handles card HTTP requests
type CardHandler struct {
	cardService service.CardService
	logger      *zap.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService service.CardService, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		logger:      logger,
	}
}

// CreateCard godoc
// @Summary      Card 생성
// @Description  Board의 마지막 위치에 Card를 추가합니다
// @Tags         cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.CreateCardRequest true "Card 생성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.CardResponse} "Card 생성 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Router       /boards/{boardId}/cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	card, err := h.cardService.CreateCard(requestContext(c), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, card)
}

// ListCards godoc
// @Summary      Card 목록 조회
// @Description  boardIndex 오름차순으로 Card 목록을 조회합니다
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.CardResponse} "조회 성공"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Router       /boards/{boardId}/cards [get]
func (h *CardHandler) ListCards(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	cards, err := h.cardService.ListCards(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, cards)
}

// GetCard godoc
// @Summary      Card 조회
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "Card가 해당 Board에 속하지 않음"
// @Failure      404 {object} response.ErrorResponse "Card를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "card")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(c.Request.Context(), userID, boardID, cardID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, card)
}

// UpdateCard godoc
// @Summary      Card 수정
// @Tags         cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        request body dto.UpdateCardRequest true "Card 수정 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.CardResponse} "Card 수정 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Card를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId} [put]
func (h *CardHandler) UpdateCard(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "card")
	if !ok {
		return
	}

	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	card, err := h.cardService.UpdateCard(requestContext(c), userID, boardID, cardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, card)
}

// DeleteCard godoc
// @Summary      Card 삭제
// @Description  Card와 그 Task를 삭제하고 남은 Card의 순서를 다시 매깁니다
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string} "Card 삭제 성공"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Card를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId} [delete]
func (h *CardHandler) DeleteCard(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	cardID, ok := pathUUID(c, "cardId", "card")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(requestContext(c), userID, boardID, cardID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Card deleted successfully"})
}

// ReorderCards godoc
// @Summary      Card 순서 변경
// @Description  sourceId Card를 targetId Card의 위치로 옮기고 사이의 Card를 한 칸씩 밉니다
// @Description  sourceId와 targetId가 같으면 아무것도 바꾸지 않습니다 (changed=false)
// @Tags         cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        X-Connection-ID header string false "요청을 보낸 실시간 연결 ID"
// @Param        request body dto.ReorderRequest true "순서 변경 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.ReorderCardsResponse} "순서 변경 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Card를 찾을 수 없음"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Router       /boards/{boardId}/cards/reorder [post]
func (h *CardHandler) ReorderCards(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	result, err := h.cardService.ReorderCards(requestContext(c), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}
