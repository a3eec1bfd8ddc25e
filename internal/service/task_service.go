package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/metrics"
	"taskboard-api/internal/ordering"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/response"
)

// TaskService defines the interface for task business logic
type TaskService interface {
	CreateTask(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, callerID, boardID, cardID uuid.UUID) ([]*dto.TaskResponse, error)
	GetTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) (*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) error
	AssignTask(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error)
	UnassignTask(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error)
	ReorderTasks(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderTasksResponse, error)
	MoveTask(ctx context.Context, callerID, boardID uuid.UUID, req *dto.MoveTaskRequest) (*dto.MoveTaskResponse, error)
}

type taskServiceImpl struct {
	taskRepo  repository.TaskRepository
	cardRepo  repository.CardRepository
	access    AccessService
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	cardRepo repository.CardRepository,
	access AccessService,
	publisher realtime.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) TaskService {
	return &taskServiceImpl{
		taskRepo:  taskRepo,
		cardRepo:  cardRepo,
		access:    access,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func parseStatus(raw string) (domain.TaskStatus, error) {
	status := domain.TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", response.NewAppError(response.ErrCodeValidation, "Invalid task status", raw)
	}
	return status, nil
}

// CreateTask appends a task at the end of the card
func (s *taskServiceImpl) CreateTask(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	_, card, err := s.loadCard(ctx, callerID, boardID, cardID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Task title is required", "")
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		CardID:      card.ID,
		BoardID:     boardID,
		OwnerID:     callerID,
		Title:       title,
		Description: req.Description,
		Status:      status,
	}
	if err := s.taskRepo.Append(ctx, task); err != nil {
		s.logger.Error("Failed to create task", zap.String("card_id", cardID.String()), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create task", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementTaskCreated()
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTaskCreated, cardID))
	return toTaskResponse(task), nil
}

// ListTasks returns the card's tasks by card index
func (s *taskServiceImpl) ListTasks(ctx context.Context, callerID, boardID, cardID uuid.UUID) ([]*dto.TaskResponse, error) {
	if _, _, err := s.loadCard(ctx, callerID, boardID, cardID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListOrdered(ctx, cardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list tasks", err.Error())
	}
	return toTaskResponses(tasks), nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) (*dto.TaskResponse, error) {
	_, task, err := s.loadTask(ctx, callerID, boardID, cardID, taskID)
	if err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	_, task, err := s.loadTask(ctx, callerID, boardID, cardID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, response.NewAppError(response.ErrCodeValidation, "Task title cannot be empty", "")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, repoError(err, "Task not found", "Failed to update task")
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTaskUpdated, cardID))
	return toTaskResponse(task), nil
}

// DeleteTask removes the task and closes the gap it leaves in the card
func (s *taskServiceImpl) DeleteTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) error {
	_, task, err := s.loadTask(ctx, callerID, boardID, cardID, taskID)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Remove(ctx, task); err != nil {
		s.logger.Error("Failed to delete task", zap.String("task_id", taskID.String()), zap.Error(err))
		return repoError(err, "Task not found", "Failed to delete task")
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTaskDeleted, cardID))
	return nil
}

// AssignTask adds memberID to the task's assignees. The assignee must be the
// board owner or a member; assigning twice changes nothing.
func (s *taskServiceImpl) AssignTask(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error) {
	board, task, err := s.loadTask(ctx, callerID, boardID, cardID, taskID)
	if err != nil {
		return nil, err
	}
	if !hasAccess(board, memberID) {
		return nil, response.NewAppError(response.ErrCodeValidation, "Assignee must be a member of the board", memberID.String())
	}
	if task.IsAssigned(memberID) {
		return toTaskResponse(task), nil
	}

	task, err = s.taskRepo.AddAssignee(ctx, task.ID, memberID)
	if err != nil {
		return nil, repoError(err, "Task not found", "Failed to assign task")
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTaskAssigned, cardID))
	return toTaskResponse(task), nil
}

// UnassignTask removes memberID from the task's assignees
func (s *taskServiceImpl) UnassignTask(ctx context.Context, callerID, boardID, cardID, taskID, memberID uuid.UUID) (*dto.TaskResponse, error) {
	_, task, err := s.loadTask(ctx, callerID, boardID, cardID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAssigned(memberID) {
		return toTaskResponse(task), nil
	}

	task, err = s.taskRepo.RemoveAssignee(ctx, task.ID, memberID)
	if err != nil {
		return nil, repoError(err, "Task not found", "Failed to unassign task")
	}
	publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTaskAssigned, cardID))
	return toTaskResponse(task), nil
}

// ReorderTasks moves a task to the position of a sibling in the same card
func (s *taskServiceImpl) ReorderTasks(ctx context.Context, callerID, boardID, cardID uuid.UUID, req *dto.ReorderRequest) (*dto.ReorderTasksResponse, error) {
	if _, _, err := s.loadCard(ctx, callerID, boardID, cardID); err != nil {
		return nil, err
	}
	sourceID, err := parseID(req.SourceID, "sourceId")
	if err != nil {
		return nil, err
	}
	targetID, err := parseID(req.TargetID, "targetId")
	if err != nil {
		return nil, err
	}

	changed, err := s.reorderWithin(ctx, cardID, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	if changed {
		publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTasksReordered, cardID))
	}

	tasks, err := s.taskRepo.ListOrdered(ctx, cardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list tasks", err.Error())
	}
	return &dto.ReorderTasksResponse{Changed: changed, Tasks: toTaskResponses(tasks)}, nil
}

// MoveTask moves a task into another card of the same board. TargetID "-1"
// puts it first in the destination. A destination equal to the task's own
// card is handled as a reorder within that card.
func (s *taskServiceImpl) MoveTask(ctx context.Context, callerID, boardID uuid.UUID, req *dto.MoveTaskRequest) (*dto.MoveTaskResponse, error) {
	if err := s.access.AuthorizeBoardAccess(ctx, callerID, boardID); err != nil {
		return nil, err
	}
	taskID, err := parseID(req.SourceID, "sourceId")
	if err != nil {
		return nil, err
	}
	target, err := ordering.ParseTarget(req.TargetID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "Invalid targetId", err.Error())
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, repoError(err, "Task not found", "Failed to load task")
	}
	if task.BoardID != boardID {
		return nil, response.NewAppError(response.ErrCodeValidation, "Task does not belong to this board", "")
	}
	dest, err := s.cardRepo.FindByID(ctx, req.DestinationCardID)
	if err != nil {
		return nil, repoError(err, "Destination card not found", "Failed to load card")
	}
	if dest.BoardID != boardID {
		return nil, response.NewAppError(response.ErrCodeValidation, "Destination card does not belong to this board", "")
	}
	fromCardID := task.CardID

	var changed bool
	if dest.ID == fromCardID {
		changed, err = s.moveWithinCard(ctx, fromCardID, taskID, target)
		if err != nil {
			return nil, err
		}
		if changed {
			publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTasksReordered, fromCardID))
		}
	} else {
		if err := s.transfer(ctx, task, dest, target); err != nil {
			return nil, err
		}
		changed = true
		publish(ctx, s.publisher, s.logger, boardUpdate(boardID, callerID, realtime.TagTaskMoved, fromCardID, dest.ID))
	}

	return s.moveResult(ctx, changed, taskID, fromCardID, dest.ID)
}

func (s *taskServiceImpl) moveWithinCard(ctx context.Context, cardID, taskID uuid.UUID, target *uuid.UUID) (bool, error) {
	if target != nil {
		return s.reorderWithin(ctx, cardID, taskID, *target)
	}
	ids, err := s.taskRepo.ListIDs(ctx, cardID)
	if err != nil {
		return false, response.NewAppError(response.ErrCodeInternal, "Failed to load tasks", err.Error())
	}
	if len(ids) == 0 {
		return false, response.NewAppError(response.ErrCodeNotFound, "Task not found in this card", "")
	}
	return s.reorderWithin(ctx, cardID, taskID, ids[0])
}

func (s *taskServiceImpl) reorderWithin(ctx context.Context, cardID, sourceID, targetID uuid.UUID) (bool, error) {
	ids, err := s.taskRepo.ListIDs(ctx, cardID)
	if err != nil {
		return false, response.NewAppError(response.ErrCodeInternal, "Failed to load tasks", err.Error())
	}

	after, changed, err := ordering.Move(ids, sourceID, targetID)
	if err != nil {
		if errors.Is(err, ordering.ErrNotFound) {
			return false, response.NewAppError(response.ErrCodeNotFound, "Task not found in this card", err.Error())
		}
		return false, response.NewAppError(response.ErrCodeInternal, "Failed to reorder tasks", err.Error())
	}
	if !changed {
		s.recordReorder("task", metrics.OutcomeNoop)
		return false, nil
	}

	if err := s.taskRepo.ApplyOrder(ctx, cardID, ordering.Changed(ids, after)); err != nil {
		s.recordReorder("task", metrics.OutcomeFailed)
		s.logger.Error("Failed to persist task order", zap.String("card_id", cardID.String()), zap.Error(err))
		return false, repoError(err, "Task not found in this card", "Failed to reorder tasks")
	}
	s.recordReorder("task", metrics.OutcomeApplied)
	return true, nil
}

func (s *taskServiceImpl) transfer(ctx context.Context, task *domain.Task, dest *domain.Card, target *uuid.UUID) error {
	srcIDs, err := s.taskRepo.ListIDs(ctx, task.CardID)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to load tasks", err.Error())
	}
	dstIDs, err := s.taskRepo.ListIDs(ctx, dest.ID)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to load tasks", err.Error())
	}

	newSrc, newDst, err := ordering.Transfer(srcIDs, dstIDs, task.ID, target)
	if err != nil {
		if errors.Is(err, ordering.ErrNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Target task not found in destination card", err.Error())
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to move task", err.Error())
	}

	move := repository.TaskMove{
		TaskID:      task.ID,
		FromCardID:  task.CardID,
		ToCardID:    dest.ID,
		ToBoardID:   dest.BoardID,
		Source:      ordering.Changed(srcIDs, newSrc),
		Destination: ordering.Changed(dstIDs, newDst),
	}
	if err := s.taskRepo.ApplyMove(ctx, move); err != nil {
		s.recordReorder("move", metrics.OutcomeFailed)
		s.logger.Error("Failed to persist task move",
			zap.String("task_id", task.ID.String()),
			zap.String("from_card_id", task.CardID.String()),
			zap.String("to_card_id", dest.ID.String()),
			zap.Error(err),
		)
		return repoError(err, "Task not found", "Failed to move task")
	}
	s.recordReorder("move", metrics.OutcomeApplied)
	return nil
}

func (s *taskServiceImpl) moveResult(ctx context.Context, changed bool, taskID, fromCardID, toCardID uuid.UUID) (*dto.MoveTaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, repoError(err, "Task not found", "Failed to load task")
	}
	source, err := s.taskRepo.ListOrdered(ctx, fromCardID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list tasks", err.Error())
	}
	destination := source
	if toCardID != fromCardID {
		if destination, err = s.taskRepo.ListOrdered(ctx, toCardID); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list tasks", err.Error())
		}
	}
	return &dto.MoveTaskResponse{
		Changed:     changed,
		Task:        toTaskResponse(task),
		Source:      toTaskResponses(source),
		Destination: toTaskResponses(destination),
	}, nil
}

func (s *taskServiceImpl) recordReorder(scope, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordReorder(scope, outcome)
	}
}

func hasAccess(board *domain.Board, userID uuid.UUID) bool {
	if board.IsOwner(userID) {
		return true
	}
	for _, m := range board.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (s *taskServiceImpl) loadCard(ctx context.Context, callerID, boardID, cardID uuid.UUID) (*domain.Board, *domain.Card, error) {
	board, err := s.access.LoadBoard(ctx, callerID, boardID)
	if err != nil {
		return nil, nil, err
	}
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		return nil, nil, repoError(err, "Card not found", "Failed to load card")
	}
	if card.BoardID != boardID {
		return nil, nil, response.NewAppError(response.ErrCodeValidation, "Card does not belong to this board", "")
	}
	return board, card, nil
}

func (s *taskServiceImpl) loadTask(ctx context.Context, callerID, boardID, cardID, taskID uuid.UUID) (*domain.Board, *domain.Task, error) {
	board, _, err := s.loadCard(ctx, callerID, boardID, cardID)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, repoError(err, "Task not found", "Failed to load task")
	}
	if task.CardID != cardID {
		return nil, nil, response.NewAppError(response.ErrCodeValidation, "Task does not belong to this card", "")
	}
	return board, task, nil
}
