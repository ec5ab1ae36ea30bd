// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mocks

import (
	"context"

	"github.com/MaksimBoltov/comments/comments/models"
	commentRepository "github.com/MaksimBoltov/comments/comments/repository"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

var _ commentRepository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	args := m.Called(ctx, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockEntityTypeRepository is a mock implementation of EntityTypeRepository
type MockEntityTypeRepository struct {
	mock.Mock
}

var _ commentRepository.EntityTypeRepository = (*MockEntityTypeRepository)(nil)

func (m *MockEntityTypeRepository) Create(ctx context.Context, entityType *models.EntityType) error {
	args := m.Called(ctx, entityType)
	return args.Error(0)
}

func (m *MockEntityTypeRepository) FindByID(ctx context.Context, id int64) (*models.EntityType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntityType), args.Error(1)
}

func (m *MockEntityTypeRepository) FindByName(ctx context.Context, name string) (*models.EntityType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntityType), args.Error(1)
}
