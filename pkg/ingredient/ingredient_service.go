package ingredient

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	IngredientService interface {
		CreateIngredient(ctx context.Context, req domain.CreateIngredientRequest) (domain.IngredientView, error)
		GetIngredient(ctx context.Context, id string) (domain.IngredientView, error)
		GetIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientView, error)
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
	}
)

func NewIngredientService(ingredientRepository IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepository: ingredientRepository}
}

func (s *ingredientService) CreateIngredient(ctx context.Context, req domain.CreateIngredientRequest) (domain.IngredientView, error) {
	ingredient := entities.Ingredient{
		Name:            req.Name,
		MeasurementUnit: req.MeasurementUnit,
	}
	if err := s.ingredientRepository.CreateIngredient(ctx, &ingredient); err != nil {
		return domain.IngredientView{}, err
	}
	return ToIngredientView(&ingredient), nil
}

func (s *ingredientService) GetIngredient(ctx context.Context, id string) (domain.IngredientView, error) {
	ingredient, err := s.ingredientRepository.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientView{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientView{}, err
	}
	return ToIngredientView(ingredient), nil
}

func (s *ingredientService) GetIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientView, error) {
	ingredients, err := s.ingredientRepository.GetIngredients(ctx, namePrefix)
	if err != nil {
		return nil, err
	}

	result := make([]domain.IngredientView, 0, len(ingredients))
	for _, i := range ingredients {
		result = append(result, ToIngredientView(i))
	}
	return result, nil
}

func ToIngredientView(ingredient *entities.Ingredient) domain.IngredientView {
	return domain.IngredientView{
		ID:              ingredient.ID.String(),
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}
