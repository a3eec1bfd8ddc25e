package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskboard-api/internal/domain"
	"taskboard-api/internal/ordering"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/repository"
)

// MockBoardRepository is a mock implementation of BoardRepository
type MockBoardRepository struct {
	CreateFunc        func(ctx context.Context, board *domain.Board) error
	FindByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	ListFunc          func(ctx context.Context, filter repository.BoardFilter) ([]*domain.Board, error)
	UpdateFunc        func(ctx context.Context, board *domain.Board) error
	DeleteCascadeFunc func(ctx context.Context, id uuid.UUID) error
	IsMemberFunc      func(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	AddMemberFunc     func(ctx context.Context, boardID, userID uuid.UUID) error
	ListMemberIDsFunc func(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)
	CountFunc         func(ctx context.Context) (int64, error)
}

func (m *MockBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBoardRepository) List(ctx context.Context, filter repository.BoardFilter) ([]*domain.Board, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockBoardRepository) Update(ctx context.Context, board *domain.Board) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, board)
	}
	return nil
}

func (m *MockBoardRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	if m.DeleteCascadeFunc != nil {
		return m.DeleteCascadeFunc(ctx, id)
	}
	return nil
}

func (m *MockBoardRepository) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	if m.IsMemberFunc != nil {
		return m.IsMemberFunc(ctx, boardID, userID)
	}
	return false, nil
}

func (m *MockBoardRepository) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, boardID, userID)
	}
	return nil
}

func (m *MockBoardRepository) ListMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	if m.ListMemberIDsFunc != nil {
		return m.ListMemberIDsFunc(ctx, boardID)
	}
	return nil, nil
}

func (m *MockBoardRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockCardRepository wraps a real CardRepository and lets a test intercept
// individual calls. Unset Func fields delegate to the embedded repository.
type MockCardRepository struct {
	repository.CardRepository
	ApplyOrderFunc func(ctx context.Context, boardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error
}

func (m *MockCardRepository) ApplyOrder(ctx context.Context, boardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error {
	if m.ApplyOrderFunc != nil {
		return m.ApplyOrderFunc(ctx, boardID, placements)
	}
	return m.CardRepository.ApplyOrder(ctx, boardID, placements)
}

// MockTaskRepository wraps a real TaskRepository the same way
type MockTaskRepository struct {
	repository.TaskRepository
	ApplyOrderFunc func(ctx context.Context, cardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error
	ApplyMoveFunc  func(ctx context.Context, move repository.TaskMove) error
	UpdateFunc     func(ctx context.Context, task *domain.Task) error
}

func (m *MockTaskRepository) ApplyOrder(ctx context.Context, cardID uuid.UUID, placements []ordering.Placement[uuid.UUID]) error {
	if m.ApplyOrderFunc != nil {
		return m.ApplyOrderFunc(ctx, cardID, placements)
	}
	return m.TaskRepository.ApplyOrder(ctx, cardID, placements)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, task)
	}
	return m.TaskRepository.Update(ctx, task)
}

func (m *MockTaskRepository) ApplyMove(ctx context.Context, move repository.TaskMove) error {
	if m.ApplyMoveFunc != nil {
		return m.ApplyMoveFunc(ctx, move)
	}
	return m.TaskRepository.ApplyMove(ctx, move)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	FindByIDsFunc   func(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)
	SearchFunc      func(ctx context.Context, query string, limit int) ([]*domain.User, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return nil, nil
}

// MockInvitationRepository is a mock implementation of InvitationRepository
type MockInvitationRepository struct {
	CreateFunc       func(ctx context.Context, invitation *domain.Invitation) error
	FindByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	FindPendingFunc  func(ctx context.Context, boardID, memberID uuid.UUID) (*domain.Invitation, error)
	ListSentFunc     func(ctx context.Context, ownerID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error)
	ListReceivedFunc func(ctx context.Context, memberID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error)
	RespondFunc      func(ctx context.Context, invitation *domain.Invitation, status domain.InvitationStatus) error
}

func (m *MockInvitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, invitation)
	}
	return nil
}

func (m *MockInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockInvitationRepository) FindPending(ctx context.Context, boardID, memberID uuid.UUID) (*domain.Invitation, error) {
	if m.FindPendingFunc != nil {
		return m.FindPendingFunc(ctx, boardID, memberID)
	}
	return nil, nil
}

func (m *MockInvitationRepository) ListSent(ctx context.Context, ownerID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error) {
	if m.ListSentFunc != nil {
		return m.ListSentFunc(ctx, ownerID, status)
	}
	return nil, nil
}

func (m *MockInvitationRepository) ListReceived(ctx context.Context, memberID uuid.UUID, status domain.InvitationStatus) ([]*domain.Invitation, error) {
	if m.ListReceivedFunc != nil {
		return m.ListReceivedFunc(ctx, memberID, status)
	}
	return nil, nil
}

func (m *MockInvitationRepository) Respond(ctx context.Context, invitation *domain.Invitation, status domain.InvitationStatus) error {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, invitation, status)
	}
	return nil
}

// recordingPublisher collects every published update
type recordingPublisher struct {
	mu      sync.Mutex
	updates []realtime.Update
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, u realtime.Update) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
	return p.err
}

func (p *recordingPublisher) tags() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	tags := make([]string, len(p.updates))
	for i, u := range p.updates {
		tags[i] = u.Tag
	}
	return tags
}

func (p *recordingPublisher) last() realtime.Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return realtime.Update{}
	}
	return p.updates[len(p.updates)-1]
}
