package usecase

import (
	"context"
	"strings"

	"poorito-booking/internal/data/repository"
	"poorito-booking/internal/dto/response"

	"go.uber.org/zap"
)

type MountainService interface {
	GetAllMountains(ctx context.Context) (*response.MountainListResponse, error)
	GetMountainByID(ctx context.Context, id int64) (*response.MountainResponse, error)
	GetMountainsByDifficulty(ctx context.Context, level string) (*response.MountainListResponse, error)
}

type mountainService struct {
	repo repository.MountainRepository
	log  *zap.Logger
}

func NewMountainService(repo repository.MountainRepository, log *zap.Logger) MountainService {
	return &mountainService{
		repo: repo,
		log:  log.With(zap.String("service", "mountain")),
	}
}

func (s *mountainService) GetAllMountains(ctx context.Context) (*response.MountainListResponse, error) {
	mountains, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := response.MountainsToResponse(mountains)
	return &resp, nil
}

func (s *mountainService) GetMountainByID(ctx context.Context, id int64) (*response.MountainResponse, error) {
	mountain, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mountain == nil {
		return nil, ErrMountainNotFound
	}

	resp := response.MountainToResponse(mountain)
	return &resp, nil
}

func (s *mountainService) GetMountainsByDifficulty(ctx context.Context, level string) (*response.MountainListResponse, error) {
	mountains, err := s.repo.FindByDifficulty(ctx, strings.TrimSpace(level))
	if err != nil {
		return nil, err
	}

	resp := response.MountainsToResponse(mountains)
	return &resp, nil
}
