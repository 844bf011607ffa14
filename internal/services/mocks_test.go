package services_test

import (
	"context"

	"github.com/schedulr/apiserver/types"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(types.User), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID string) ([]types.Task, error) {
	args := m.Called(ctx, ownerID)
	tasks, _ := args.Get(0).([]types.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) FindOwned(ctx context.Context, id, ownerID string) (types.Task, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(types.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(types.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	args := m.Called(ctx, task)
	if fn, ok := args.Get(0).(func(context.Context, types.Task) types.Task); ok {
		return fn(ctx, task), args.Error(1)
	}
	return args.Get(0).(types.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyCompleted(ctx context.Context, task types.Task) {
	m.Called(ctx, task)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	args := m.Called(ctx, channel, data, attrs)
	return args.String(0), args.Error(1)
}
