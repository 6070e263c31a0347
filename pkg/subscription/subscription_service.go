package subscription

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/recipe"
	"Foodgram-Backend/pkg/user"
	"context"

	"github.com/google/uuid"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, subscriberID, authorID string, recipesLimit int) (domain.SubscriberView, error)
		Unsubscribe(ctx context.Context, subscriberID, authorID string) error
		GetSubscriptions(ctx context.Context, subscriberID string, page, limit, recipesLimit int) ([]domain.SubscriberView, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         user.UserRepository
		recipeRepository       recipe.RecipeRepository
	}
)

func NewSubscriptionService(
	subscriptionRepository SubscriptionRepository,
	userRepository user.UserRepository,
	recipeRepository recipe.RecipeRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
		recipeRepository:       recipeRepository,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, subscriberID, authorID string, recipesLimit int) (domain.SubscriberView, error) {
	if subscriberID == authorID {
		return domain.SubscriberView{}, domain.ErrSelfSubscription
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if user.IsNotFound(err) {
			return domain.SubscriberView{}, domain.ErrUserNotFound
		}
		return domain.SubscriberView{}, err
	}

	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return domain.SubscriberView{}, domain.ErrParseUUID
	}

	if err := s.subscriptionRepository.CreateSubscription(ctx, subscriberUUID, author.ID); err != nil {
		return domain.SubscriberView{}, err
	}

	return s.buildSubscriberView(ctx, author, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if user.IsNotFound(err) {
			return domain.ErrUserNotFound
		}
		return err
	}

	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return domain.ErrParseUUID
	}

	return s.subscriptionRepository.DeleteSubscription(ctx, subscriberUUID, author.ID)
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, subscriberID string, page, limit, recipesLimit int) ([]domain.SubscriberView, int64, error) {
	authors, count, err := s.subscriptionRepository.GetSubscribedAuthors(ctx, subscriberID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]domain.SubscriberView, 0, len(authors))
	for _, author := range authors {
		view, err := s.buildSubscriberView(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}

	return views, count, nil
}

// buildSubscriberView annotates an author with their recipe count and an
// optionally truncated recipe list. The flag is always true here: the view
// is only ever produced for authors the caller follows.
func (s *subscriptionService) buildSubscriberView(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriberView, error) {
	recipesCount, err := s.recipeRepository.CountRecipesByAuthor(ctx, author.ID.String())
	if err != nil {
		return domain.SubscriberView{}, err
	}

	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriberView{}, err
	}

	summaries := make([]domain.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, recipe.ToRecipeSummary(r))
	}

	return domain.SubscriberView{
		ID:           author.ID.String(),
		Email:        author.Email,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: true,
		Recipes:      summaries,
		RecipesCount: recipesCount,
	}, nil
}
