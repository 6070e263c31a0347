package domain

import "errors"

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessSaveRecipe      = "recipe saved successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessFavorite        = "recipe added to favorites"
	MessageSuccessUnfavorite      = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedSaveRecipe      = "failed to save recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedFavorite        = "failed to update favorites"
	MessageFailedCart            = "failed to update shopping cart"
	MessageFailedDownloadCart    = "failed to download shopping cart"

	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrNameRequired         = errors.New("recipe name is required")
	ErrNotRecipeAuthor      = errors.New("only the author can modify this recipe")
	ErrTagsRequired         = errors.New("at least one tag is required")
	ErrIngredientsRequired  = errors.New("at least one ingredient is required")
	ErrAmountTooSmall       = errors.New("ingredient amount must be at least 1")
	ErrDuplicateIngredient  = errors.New("ingredient listed more than once")
	ErrAlreadyFavorited     = errors.New("recipe already in favorites")
	ErrNotFavorited         = errors.New("recipe is not in favorites")
	ErrAlreadyInCart        = errors.New("recipe already in shopping cart")
	ErrNotInCart            = errors.New("recipe is not in shopping cart")
	ErrInvalidImagePayload  = errors.New("invalid image payload")
	ErrInvalidCookingTime   = errors.New("cooking time must be at least 1")
	ErrInvalidFilterBoolean = errors.New("filter value must be a boolean")
)

type (
	// RecipeIngredientEntry is one {ingredient id, amount} pair of a write
	// payload.
	RecipeIngredientEntry struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,gte=1"`
	}

	// RecipeWriteInput is the write shape for create and (partially) update.
	RecipeWriteInput struct {
		Name        string                  `json:"name" validate:"omitempty,max=200"`
		Text        string                  `json:"text"`
		Image       string                  `json:"image"`
		CookingTime int                     `json:"cooking_time" validate:"omitempty,gte=1"`
		Tags        []string                `json:"tags" validate:"omitempty,dive,uuid"`
		Ingredients []RecipeIngredientEntry `json:"ingredients" validate:"omitempty,dive"`
	}

	// RecipeFilter holds the typed query parameters of the recipe listing.
	// Favorited and InCart apply only for authenticated viewers.
	RecipeFilter struct {
		TagSlugs  []string
		AuthorID  string
		Favorited *bool
		InCart    *bool
	}

	IngredientLineView struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	// RecipeView is the read shape for a recipe, annotated with the
	// viewer-dependent flags.
	RecipeView struct {
		ID               string               `json:"id"`
		Tags             []TagView            `json:"tags"`
		Author           *UserView            `json:"author"`
		Ingredients      []IngredientLineView `json:"ingredients"`
		IsFavorited      bool                 `json:"is_favorited"`
		IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
		Name             string               `json:"name"`
		Image            string               `json:"image"`
		Text             string               `json:"text"`
		CookingTime      int                  `json:"cooking_time"`
		PubDate          string               `json:"pub_date"`
	}

	// RecipeSummary is the short recipe payload returned by the favorite,
	// shopping-cart and subscription endpoints.
	RecipeSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	// ShoppingListItem is one consolidated row of the downloadable list:
	// amounts summed across every recipe in the cart, grouped by
	// (name, measurement unit).
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}
)
