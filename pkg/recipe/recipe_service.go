package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/tag"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	shoppingListHeader  = "Продукты которые нужно купить:\n\n"
	shoppingListTrailer = "\n\n\n\nПроект создан Filengun"

	// ShoppingCartFilename is the attachment name of the downloadable list.
	ShoppingCartFilename = "foodgram_shopping_cart.txt"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.RecipeWriteInput, authorID string) (domain.RecipeView, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.RecipeWriteInput, viewerID string, isAdmin bool) (domain.RecipeView, error)
		DeleteRecipe(ctx context.Context, recipeID string, viewerID string, isAdmin bool) error
		GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeView, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeView, int64, error)

		AddFavorite(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToCart(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		RemoveFromCart(ctx context.Context, recipeID, userID string) error
		DownloadShoppingCart(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        tag.TagRepository
		ingredientRepository ingredient.IngredientRepository
		s3                   storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository tag.TagRepository,
	ingredientRepository ingredient.IngredientRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		tagRepository:        tagRepository,
		ingredientRepository: ingredientRepository,
		s3:                   s3,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.RecipeWriteInput, authorID string) (domain.RecipeView, error) {
	if req.Name == "" {
		return domain.RecipeView{}, domain.ErrNameRequired
	}
	if req.CookingTime < 1 {
		return domain.RecipeView{}, domain.ErrInvalidCookingTime
	}

	tags, lines, err := s.resolveRelations(ctx, req)
	if err != nil {
		return domain.RecipeView{}, err
	}

	imageURL, err := s.resolveImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeView{}, err
	}

	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeView{}, domain.ErrParseUUID
	}

	recipe := entities.Recipe{
		Name:        req.Name,
		AuthorID:    &authorUUID,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, &recipe, tags, lines); err != nil {
		return domain.RecipeView{}, err
	}

	return s.GetRecipe(ctx, recipe.ID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.RecipeWriteInput, viewerID string, isAdmin bool) (domain.RecipeView, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeView{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeView{}, err
	}

	if !canMutate(recipe, viewerID, isAdmin) {
		return domain.RecipeView{}, domain.ErrNotRecipeAuthor
	}

	tags, lines, err := s.resolveRelations(ctx, req)
	if err != nil {
		return domain.RecipeView{}, err
	}

	// Partial scalar update: omitted fields keep their prior value. Author
	// and pub_date never change.
	if req.Name != "" {
		recipe.Name = req.Name
	}
	if req.Text != "" {
		recipe.Text = req.Text
	}
	if req.CookingTime > 0 {
		recipe.CookingTime = req.CookingTime
	}
	if req.Image != "" {
		imageURL, err := s.resolveImage(ctx, req.Image)
		if err != nil {
			return domain.RecipeView{}, err
		}
		recipe.ImageURL = imageURL
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, tags, lines); err != nil {
		return domain.RecipeView{}, err
	}

	return s.GetRecipe(ctx, recipeID, viewerID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, viewerID string, isAdmin bool) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if !canMutate(recipe, viewerID, isAdmin) {
		return domain.ErrNotRecipeAuthor
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipe.ID)
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeView, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeView{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeView{}, err
	}

	views, err := s.annotate(ctx, []*entities.Recipe{recipe}, viewerID)
	if err != nil {
		return domain.RecipeView{}, err
	}
	return views[0], nil
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeView, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.annotate(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, userUUID, err := s.lookupToggleTarget(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}

	if err := s.recipeRepository.AddBookmark(ctx, userUUID, recipe.ID); err != nil {
		return domain.RecipeSummary{}, err
	}
	return ToRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	recipe, userUUID, err := s.lookupToggleTarget(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.recipeRepository.RemoveBookmark(ctx, userUUID, recipe.ID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, userUUID, err := s.lookupToggleTarget(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}

	if err := s.recipeRepository.AddCartItem(ctx, userUUID, recipe.ID); err != nil {
		return domain.RecipeSummary{}, err
	}
	return ToRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID string) error {
	recipe, userUUID, err := s.lookupToggleTarget(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.recipeRepository.RemoveCartItem(ctx, userUUID, recipe.ID)
}

func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID string) (string, error) {
	items, err := s.recipeRepository.GetShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	return RenderShoppingList(items), nil
}

// RenderShoppingList formats the consolidated cart as the downloadable
// plain-text report, one line per (name, unit) group.
func RenderShoppingList(items []domain.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	for _, item := range items {
		b.WriteString(fmt.Sprintf("- %s(%s) - %d\n", item.Name, item.MeasurementUnit, item.Amount))
	}
	b.WriteString(shoppingListTrailer)
	return b.String()
}

// resolveRelations validates and resolves the tag and ingredient payload of
// a write request. Both sets are required and fully replace prior state.
func (s *recipeService) resolveRelations(ctx context.Context, req domain.RecipeWriteInput) ([]*entities.Tag, []*entities.RecipeIngredientLine, error) {
	if len(req.Tags) == 0 {
		return nil, nil, domain.ErrTagsRequired
	}
	if len(req.Ingredients) == 0 {
		return nil, nil, domain.ErrIngredientsRequired
	}

	seen := make(map[string]bool, len(req.Ingredients))
	for _, entry := range req.Ingredients {
		if entry.Amount < 1 {
			return nil, nil, domain.ErrAmountTooSmall
		}
		if seen[entry.ID] {
			return nil, nil, domain.ErrDuplicateIngredient
		}
		seen[entry.ID] = true
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, req.Tags)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(uniqueStrings(req.Tags)) {
		return nil, nil, domain.ErrTagNotFound
	}

	ingredientIDs := make([]string, 0, len(req.Ingredients))
	for _, entry := range req.Ingredients {
		ingredientIDs = append(ingredientIDs, entry.ID)
	}
	ingredients, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(ingredients) != len(ingredientIDs) {
		return nil, nil, domain.ErrIngredientNotFound
	}

	lines := make([]*entities.RecipeIngredientLine, 0, len(req.Ingredients))
	for _, entry := range req.Ingredients {
		ingredientUUID, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		lines = append(lines, &entities.RecipeIngredientLine{
			IngredientID: ingredientUUID,
			Amount:       entry.Amount,
		})
	}

	return tags, lines, nil
}

// resolveImage uploads an inline base64 payload to S3 and returns the stored
// URL; an already-hosted URL passes through untouched.
func (s *recipeService) resolveImage(ctx context.Context, image string) (string, error) {
	if image == "" || !strings.HasPrefix(image, "data:") {
		return image, nil
	}

	data, contentType, err := utils.DecodeBase64Image(image)
	if err != nil {
		return "", domain.ErrInvalidImagePayload
	}

	key := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), utils.ImageExtension(contentType))
	return s.s3.UploadFile(ctx, key, data, contentType)
}

// annotate builds the read views for a page of recipes, computing the
// viewer-dependent flags with batched lookups. An anonymous viewer gets
// all-false flags without touching the store.
func (s *recipeService) annotate(ctx context.Context, recipes []*entities.Recipe, viewerID string) ([]domain.RecipeView, error) {
	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	if viewerID != "" {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			if r.AuthorID != nil {
				authorIDs = append(authorIDs, *r.AuthorID)
			}
		}

		var err error
		favorited, err = s.recipeRepository.GetBookmarkedSet(ctx, viewerID, recipeIDs)
		if err != nil {
			return nil, err
		}
		inCart, err = s.recipeRepository.GetCartSet(ctx, viewerID, recipeIDs)
		if err != nil {
			return nil, err
		}
		subscribed, err = s.recipeRepository.GetSubscribedSet(ctx, viewerID, authorIDs)
		if err != nil {
			return nil, err
		}
	}

	views := make([]domain.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		view := domain.RecipeView{
			ID:               r.ID.String(),
			Tags:             make([]domain.TagView, 0, len(r.Tags)),
			Ingredients:      make([]domain.IngredientLineView, 0, len(r.IngredientLines)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate.Format(time.RFC3339),
		}

		for _, t := range r.Tags {
			view.Tags = append(view.Tags, tag.ToTagView(t))
		}
		for _, line := range r.IngredientLines {
			if line.Ingredient == nil {
				continue
			}
			view.Ingredients = append(view.Ingredients, domain.IngredientLineView{
				ID:              line.Ingredient.ID.String(),
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		if r.Author != nil {
			view.Author = &domain.UserView{
				ID:           r.Author.ID.String(),
				Email:        r.Author.Email,
				Username:     r.Author.Username,
				FirstName:    r.Author.FirstName,
				LastName:     r.Author.LastName,
				IsSubscribed: subscribed[r.Author.ID],
			}
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *recipeService) lookupToggleTarget(ctx context.Context, recipeID, userID string) (*entities.Recipe, uuid.UUID, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, domain.ErrRecipeNotFound
		}
		return nil, uuid.Nil, err
	}

	return recipe, userUUID, nil
}

func canMutate(recipe *entities.Recipe, viewerID string, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	return recipe.AuthorID != nil && recipe.AuthorID.String() == viewerID
}

// ToRecipeSummary builds the short payload used by the favorite,
// shopping-cart and subscription endpoints.
func ToRecipeSummary(recipe *entities.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
