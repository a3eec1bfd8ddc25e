package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard-api/internal/dto"
	"taskboard-api/internal/response"
	"taskboard-api/internal/service"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *zap.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

type taskPath struct {
	boardID uuid.UUID
	cardID  uuid.UUID
	taskID  uuid.UUID
}

// parseTaskPath reads boardId, cardId and, when withTask is set, taskId
func parseTaskPath(c *gin.Context, withTask bool) (taskPath, bool) {
	var p taskPath
	var ok bool
	if p.boardID, ok = pathUUID(c, "boardId", "board"); !ok {
		return p, false
	}
	if p.cardID, ok = pathUUID(c, "cardId", "card"); !ok {
		return p, false
	}
	if withTask {
		if p.taskID, ok = pathUUID(c, "taskId", "task"); !ok {
			return p, false
		}
	}
	return p, true
}

// CreateTask godoc
// @Summary      Task 생성
// @Description  Card의 마지막 위치에 Task를 추가하고 Card의 tasksCount를 늘립니다
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        request body dto.CreateTaskRequest true "Task 생성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.TaskResponse} "Task 생성 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Card를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId}/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := parseTaskPath(c, false)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(requestContext(c), userID, p.boardID, p.cardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, task)
}

// ListTasks godoc
// @Summary      Task 목록 조회
// @Description  cardIndex 오름차순으로 Task 목록을 조회합니다
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.TaskResponse} "조회 성공"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Card를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId}/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, ok := parseTaskPath(c, false)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID, p.boardID, p.cardID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tasks)
}

// GetTask godoc
// @Summary      Task 조회
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskResponse} "조회 성공"
// @Failure      400 {object} response.ErrorResponse "Task가 해당 Card에 속하지 않음"
// @Failure      404 {object} response.ErrorResponse "Task를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId}/tasks/{taskId} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	p, ok := parseTaskPath(c, true)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, p.boardID, p.cardID, p.taskID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// UpdateTask godoc
// @Summary      Task 수정
// @Description  제목, 설명, 상태(new, wip, reject, complete)를 수정합니다
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.UpdateTaskRequest true "Task 수정 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskResponse} "Task 수정 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      404 {object} response.ErrorResponse "Task를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId}/tasks/{taskId} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	p, ok := parseTaskPath(c, true)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(requestContext(c), userID, p.boardID, p.cardID, p.taskID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary      Task 삭제
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string} "Task 삭제 성공"
// @Failure      404 {object} response.ErrorResponse "Task를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId}/tasks/{taskId} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, ok := parseTaskPath(c, true)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(requestContext(c), userID, p.boardID, p.cardID, p.taskID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// AssignTask godoc
// @Summary      Task 담당자 지정
// @Description  Board 소유자 또는 멤버를 담당자로 추가합니다. 이미 지정된 경우 변화 없음
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        request body dto.AssignTaskRequest true "담당자 지정 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskResponse} "지정 성공"
// @Failure      400 {object} response.ErrorResponse "Board 멤버가 아님"
// @Failure      404 {object} response.ErrorResponse "Task를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId}/tasks/{taskId}/assign [post]
func (h *TaskHandler) AssignTask(c *gin.Context) {
	p, ok := parseTaskPath(c, true)
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	task, err := h.taskService.AssignTask(requestContext(c), userID, p.boardID, p.cardID, p.taskID, req.MemberID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// UnassignTask godoc
// @Summary      Task 담당자 해제
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        taskId path string true "Task ID (UUID)"
// @Param        memberId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskResponse} "해제 성공"
// @Failure      404 {object} response.ErrorResponse "Task를 찾을 수 없음"
// @Router       /boards/{boardId}/cards/{cardId}/tasks/{taskId}/assign/{memberId} [delete]
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	p, ok := parseTaskPath(c, true)
	if !ok {
		return
	}
	memberID, ok := pathUUID(c, "memberId", "member")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	task, err := h.taskService.UnassignTask(requestContext(c), userID, p.boardID, p.cardID, p.taskID, memberID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// ReorderTasks godoc
// @Summary      Task 순서 변경
// @Description  같은 Card 안에서 sourceId Task를 targetId Task의 위치로 옮깁니다
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        X-Connection-ID header string false "요청을 보낸 실시간 연결 ID"
// @Param        request body dto.ReorderRequest true "순서 변경 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.ReorderTasksResponse} "순서 변경 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      404 {object} response.ErrorResponse "Task를 찾을 수 없음"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Router       /boards/{boardId}/cards/{cardId}/tasks/reorder [post]
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	p, ok := parseTaskPath(c, false)
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

	result, err := h.taskService.ReorderTasks(requestContext(c), userID, p.boardID, p.cardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}

// MoveTask godoc
// @Summary      Task 이동
// @Description  sourceId Task를 destinationCardId Card의 targetId 위치로 옮깁니다
// @Description  targetId가 "-1"이면 대상 Card의 맨 앞(빈 Card면 유일한 위치)에 놓습니다
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        boardId path string true "Board ID (UUID)"
// @Param        X-Connection-ID header string false "요청을 보낸 실시간 연결 ID"
// @Param        request body dto.MoveTaskRequest true "이동 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.MoveTaskResponse} "이동 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Task를 찾을 수 없음"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Router       /boards/{boardId}/tasks/move [post]
func (h *TaskHandler) MoveTask(c *gin.Context) {
	boardID, ok := pathUUID(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	result, err := h.taskService.MoveTask(requestContext(c), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, result)
}
