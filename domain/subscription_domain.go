package domain

import "errors"

var (
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrAlreadySubscribed = errors.New("already subscribed to this author")
	ErrNotSubscribed     = errors.New("not subscribed to this author")
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
)

type (
	// SubscriberView is an author as seen by one of their subscribers:
	// profile plus recipe count and an optionally truncated recipe list.
	SubscriberView struct {
		ID           string          `json:"id"`
		Email        string          `json:"email"`
		Username     string          `json:"username"`
		FirstName    string          `json:"first_name"`
		LastName     string          `json:"last_name"`
		IsSubscribed bool            `json:"is_subscribed"`
		Recipes      []RecipeSummary `json:"recipes"`
		RecipesCount int64           `json:"recipes_count"`
	}
)
