package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/response"
	"taskboard-api/internal/service"
)

// BoardHandler handles board HTTP requests
type BoardHandler struct {
	boardService service.BoardService
	logger       *zap.Logger
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(boardService service.BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		logger:       logger,
	}
}

// CreateBoard godoc
// @Summary      Board 생성
// @Description  새 Board를 만듭니다. 요청한 사용자가 소유자가 됩니다
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBoardRequest true "Board 생성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.BoardResponse} "Board 생성 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Router       /boards [post]
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	board, err := h.boardService.CreateBoard(requestContext(c), userID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, board)
}

// ListBoards godoc
// @Summary      Board 목록 조회
// @Description  소유하거나 멤버로 참여 중인 Board 목록을 최신순으로 조회합니다
// @Description  name은 부분 일치 검색, scope는 owned(소유) / shared(참여) / all
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Param        name query string false "이름 검색어"
// @Param        scope query string false "owned | shared | all"
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardResponse} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 필터"
// @Failure      401 {object} response.ErrorResponse "인증 실패"
// @Router       /boards [get]
func (h *BoardHandler) ListBoards(c *gin.Context) {
	var filters dto.BoardFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid query parameters")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	boards, err := h.boardService.ListBoards(c.Request.Context(), userID, &filters)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, boards)
}

// GetBoard godoc
// @Summary      Board 조회
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 Board ID"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Router       /boards/{boardId} [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// UpdateBoard godoc
// @Summary      Board 수정
// @Description  Board의 이름과 설명을 수정합니다 (소유자와 멤버 가능)
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        X-Connection-ID header string false "요청을 보낸 실시간 연결 ID"
// @Param        request body dto.UpdateBoardRequest true "Board 수정 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse} "Board 수정 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Router       /boards/{boardId} [put]
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	board, err := h.boardService.UpdateBoard(requestContext(c), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// DeleteBoard godoc
// @Summary      Board 삭제
// @Description  Board와 그 아래의 Card, Task, 멤버, 초대를 모두 삭제합니다 (소유자만 가능)
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string} "Board 삭제 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 Board ID"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Router       /boards/{boardId} [delete]
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(requestContext(c), userID, boardID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Board deleted successfully"})
}

// ListMembers godoc
// @Summary      Board 멤버 목록 조회
// @Description  소유자를 먼저, 그 다음 초대를 수락한 멤버를 참여 순으로 반환합니다
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardMemberResponse} "조회 성공"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Router       /boards/{boardId}/members [get]
func (h *BoardHandler) ListMembers(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	members, err := h.boardService.ListMembers(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, members)
}
