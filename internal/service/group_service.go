package service

import (
	"context"
	"strings"

	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

type GroupService struct {
	groupRepo repository.GroupRepository
}

type CreateGroupInput struct {
	Title       string
	Slug        string
	Description string
}

func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	form := validation.GroupForm{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		Description: strings.TrimSpace(in.Description),
	}
	if errs := form.Validate(); !errs.Empty() {
		return nil, models.NewFieldValidationError(errs)
	}

	group := &models.Group{Title: form.Title, Slug: form.Slug, Description: form.Description}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}
