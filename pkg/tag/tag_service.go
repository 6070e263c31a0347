package tag

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type (
	TagService interface {
		CreateTag(ctx context.Context, req domain.CreateTagRequest) (domain.TagView, error)
		GetTag(ctx context.Context, id string) (domain.TagView, error)
		GetTags(ctx context.Context) ([]domain.TagView, error)
	}

	tagService struct {
		tagRepository TagRepository
	}
)

func NewTagService(tagRepository TagRepository) TagService {
	return &tagService{tagRepository: tagRepository}
}

func (s *tagService) CreateTag(ctx context.Context, req domain.CreateTagRequest) (domain.TagView, error) {
	tagSlug := req.Slug
	if tagSlug == "" {
		tagSlug = slug.Make(req.Name)
	}

	exists, err := s.tagRepository.TagExists(ctx, req.Name, req.Color, tagSlug)
	if err != nil {
		return domain.TagView{}, err
	}
	if exists {
		return domain.TagView{}, domain.ErrTagAlreadyExists
	}

	tag := entities.Tag{
		Name:  req.Name,
		Color: req.Color,
		Slug:  tagSlug,
	}
	if err := s.tagRepository.CreateTag(ctx, &tag); err != nil {
		return domain.TagView{}, err
	}

	return ToTagView(&tag), nil
}

func (s *tagService) GetTag(ctx context.Context, id string) (domain.TagView, error) {
	tag, err := s.tagRepository.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagView{}, domain.ErrTagNotFound
		}
		return domain.TagView{}, err
	}
	return ToTagView(tag), nil
}

func (s *tagService) GetTags(ctx context.Context) ([]domain.TagView, error) {
	tags, err := s.tagRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.TagView, 0, len(tags))
	for _, t := range tags {
		result = append(result, ToTagView(t))
	}
	return result, nil
}

func ToTagView(tag *entities.Tag) domain.TagView {
	return domain.TagView{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}
