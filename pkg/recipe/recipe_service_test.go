package recipe_test

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/recipe"
	"Foodgram-Backend/pkg/tag"
	"Foodgram-Backend/pkg/user"
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	// One in-memory database per test, shared by every connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredientLine{},
		&entities.Bookmark{},
		&entities.CartItem{},
		&entities.Subscription{},
	))
	return db
}

type fixture struct {
	db      *gorm.DB
	service recipe.RecipeService
	author  *entities.User
	viewer  *entities.User
	tag     *entities.Tag
	salt    *entities.Ingredient
	flour   *entities.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	repo := recipe.NewRecipeRepository(db)
	service := recipe.NewRecipeService(repo, tag.NewTagRepository(db), ingredient.NewIngredientRepository(db), nil)

	author := &entities.User{Username: "author", Email: "author@example.com", FirstName: "Alex"}
	viewer := &entities.User{Username: "viewer", Email: "viewer@example.com", FirstName: "Val"}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(viewer).Error)

	breakfast := &entities.Tag{Name: "Завтрак", Color: "#1A85FF", Slug: "breakfast"}
	require.NoError(t, db.Create(breakfast).Error)

	salt := &entities.Ingredient{Name: "Соль", MeasurementUnit: "г"}
	flour := &entities.Ingredient{Name: "Мука", MeasurementUnit: "г"}
	require.NoError(t, db.Create(salt).Error)
	require.NoError(t, db.Create(flour).Error)

	return &fixture{
		db:      db,
		service: service,
		author:  author,
		viewer:  viewer,
		tag:     breakfast,
		salt:    salt,
		flour:   flour,
	}
}

func (f *fixture) writeInput(ingredients ...domain.RecipeIngredientEntry) domain.RecipeWriteInput {
	return domain.RecipeWriteInput{
		Name:        "Блины",
		Text:        "Смешать и жарить.",
		Image:       "https://example.com/pancakes.png",
		CookingTime: 20,
		Tags:        []string{f.tag.ID.String()},
		Ingredients: ingredients,
	}
}

func (f *fixture) createRecipe(t *testing.T) domain.RecipeView {
	t.Helper()
	view, err := f.service.CreateRecipe(context.Background(), f.writeInput(
		domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 10},
	), f.author.ID.String())
	require.NoError(t, err)
	return view
}

func TestCreateRecipeReturnsAnnotatedView(t *testing.T) {
	f := newFixture(t)

	view := f.createRecipe(t)

	require.Equal(t, "Блины", view.Name)
	require.Equal(t, 20, view.CookingTime)
	require.Len(t, view.Tags, 1)
	require.Equal(t, "breakfast", view.Tags[0].Slug)
	require.Len(t, view.Ingredients, 1)
	require.Equal(t, "Соль", view.Ingredients[0].Name)
	require.Equal(t, 10, view.Ingredients[0].Amount)
	require.NotNil(t, view.Author)
	require.Equal(t, "author", view.Author.Username)
	require.False(t, view.IsFavorited)
	require.False(t, view.IsInShoppingCart)
}

func TestCreateRecipeWithoutTagsPersistsNothing(t *testing.T) {
	f := newFixture(t)

	input := f.writeInput(domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 10})
	input.Tags = nil

	_, err := f.service.CreateRecipe(context.Background(), input, f.author.ID.String())
	require.ErrorIs(t, err, domain.ErrTagsRequired)

	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateRecipeWithoutIngredientsPersistsNothing(t *testing.T) {
	f := newFixture(t)

	input := f.writeInput()

	_, err := f.service.CreateRecipe(context.Background(), input, f.author.ID.String())
	require.ErrorIs(t, err, domain.ErrIngredientsRequired)

	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateRecipeWithDuplicateIngredientPersistsNothing(t *testing.T) {
	f := newFixture(t)

	input := f.writeInput(
		domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 10},
		domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 5},
	)

	_, err := f.service.CreateRecipe(context.Background(), input, f.author.ID.String())
	require.ErrorIs(t, err, domain.ErrDuplicateIngredient)

	var recipes, lines int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&recipes).Error)
	require.NoError(t, f.db.Model(&entities.RecipeIngredientLine{}).Count(&lines).Error)
	require.Zero(t, recipes)
	require.Zero(t, lines)
}

func TestCreateRecipeRejectsZeroAmount(t *testing.T) {
	f := newFixture(t)

	input := f.writeInput(domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 0})

	_, err := f.service.CreateRecipe(context.Background(), input, f.author.ID.String())
	require.ErrorIs(t, err, domain.ErrAmountTooSmall)
}

func TestAnonymousViewerGetsFalseFlags(t *testing.T) {
	f := newFixture(t)
	view := f.createRecipe(t)

	// Even with the viewer's own bookmark present, an anonymous read shows
	// false flags.
	_, err := f.service.AddFavorite(context.Background(), view.ID, f.viewer.ID.String())
	require.NoError(t, err)

	anon, err := f.service.GetRecipe(context.Background(), view.ID, "")
	require.NoError(t, err)
	require.False(t, anon.IsFavorited)
	require.False(t, anon.IsInShoppingCart)
}

func TestFavoriteToggleRoundTrip(t *testing.T) {
	f := newFixture(t)
	view := f.createRecipe(t)
	ctx := context.Background()
	viewerID := f.viewer.ID.String()

	summary, err := f.service.AddFavorite(ctx, view.ID, viewerID)
	require.NoError(t, err)
	require.Equal(t, view.ID, summary.ID)
	require.Equal(t, view.Name, summary.Name)

	annotated, err := f.service.GetRecipe(ctx, view.ID, viewerID)
	require.NoError(t, err)
	require.True(t, annotated.IsFavorited)

	require.NoError(t, f.service.RemoveFavorite(ctx, view.ID, viewerID))

	annotated, err = f.service.GetRecipe(ctx, view.ID, viewerID)
	require.NoError(t, err)
	require.False(t, annotated.IsFavorited)
}

func TestDuplicateFavoriteConflicts(t *testing.T) {
	f := newFixture(t)
	view := f.createRecipe(t)
	ctx := context.Background()
	viewerID := f.viewer.ID.String()

	_, err := f.service.AddFavorite(ctx, view.ID, viewerID)
	require.NoError(t, err)

	_, err = f.service.AddFavorite(ctx, view.ID, viewerID)
	require.ErrorIs(t, err, domain.ErrAlreadyFavorited)
}

func TestRemoveAbsentFavoriteFails(t *testing.T) {
	f := newFixture(t)
	view := f.createRecipe(t)

	err := f.service.RemoveFavorite(context.Background(), view.ID, f.viewer.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFavorited)
}

func TestCartToggleAndConflicts(t *testing.T) {
	f := newFixture(t)
	view := f.createRecipe(t)
	ctx := context.Background()
	viewerID := f.viewer.ID.String()

	_, err := f.service.AddToCart(ctx, view.ID, viewerID)
	require.NoError(t, err)

	_, err = f.service.AddToCart(ctx, view.ID, viewerID)
	require.ErrorIs(t, err, domain.ErrAlreadyInCart)

	require.NoError(t, f.service.RemoveFromCart(ctx, view.ID, viewerID))
	require.ErrorIs(t, f.service.RemoveFromCart(ctx, view.ID, viewerID), domain.ErrNotInCart)
}

func TestShoppingCartConsolidatesAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewerID := f.viewer.ID.String()

	first, err := f.service.CreateRecipe(ctx, f.writeInput(
		domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 10},
	), f.author.ID.String())
	require.NoError(t, err)

	secondInput := f.writeInput(
		domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 5},
		domain.RecipeIngredientEntry{ID: f.flour.ID.String(), Amount: 200},
	)
	secondInput.Name = "Тесто"
	second, err := f.service.CreateRecipe(ctx, secondInput, f.author.ID.String())
	require.NoError(t, err)

	_, err = f.service.AddToCart(ctx, first.ID, viewerID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, second.ID, viewerID)
	require.NoError(t, err)

	content, err := f.service.DownloadShoppingCart(ctx, viewerID)
	require.NoError(t, err)

	// Sorted by name, salt summed across both recipes.
	require.Contains(t, content, "- Мука(г) - 200\n")
	require.Contains(t, content, "- Соль(г) - 15\n")
	require.Contains(t, content, "Продукты которые нужно купить:")
}

func TestEmptyCartStillRenders(t *testing.T) {
	f := newFixture(t)

	content, err := f.service.DownloadShoppingCart(context.Background(), f.viewer.ID.String())
	require.NoError(t, err)
	require.Contains(t, content, "Продукты которые нужно купить:")
	require.NotContains(t, content, "- ")
}

func TestUpdateRecipeReplacesSetsKeepsAuthorAndPubDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.createRecipe(t)

	var before entities.Recipe
	require.NoError(t, f.db.Where("id = ?", view.ID).First(&before).Error)

	update := f.writeInput(domain.RecipeIngredientEntry{ID: f.flour.ID.String(), Amount: 300})
	update.Name = "Оладьи"

	updated, err := f.service.UpdateRecipe(ctx, view.ID, update, f.author.ID.String(), false)
	require.NoError(t, err)
	require.Equal(t, "Оладьи", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	require.Equal(t, "Мука", updated.Ingredients[0].Name)

	var after entities.Recipe
	require.NoError(t, f.db.Where("id = ?", view.ID).First(&after).Error)
	require.Equal(t, before.AuthorID, after.AuthorID)
	require.Equal(t, before.PubDate.Unix(), after.PubDate.Unix())
}

func TestUpdateRecipeRequiresAuthor(t *testing.T) {
	f := newFixture(t)
	view := f.createRecipe(t)

	update := f.writeInput(domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 1})

	_, err := f.service.UpdateRecipe(context.Background(), view.ID, update, f.viewer.ID.String(), false)
	require.ErrorIs(t, err, domain.ErrNotRecipeAuthor)
}

func TestAdminCanUpdateForeignRecipe(t *testing.T) {
	f := newFixture(t)
	view := f.createRecipe(t)

	update := f.writeInput(domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 1})
	update.Name = "Исправлено"

	updated, err := f.service.UpdateRecipe(context.Background(), view.ID, update, f.viewer.ID.String(), true)
	require.NoError(t, err)
	require.Equal(t, "Исправлено", updated.Name)
}

func TestDeleteRecipeRemovesDependents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.createRecipe(t)
	viewerID := f.viewer.ID.String()

	_, err := f.service.AddFavorite(ctx, view.ID, viewerID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, view.ID, viewerID)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteRecipe(ctx, view.ID, f.author.ID.String(), false))

	var lines, bookmarks, cartItems int64
	require.NoError(t, f.db.Model(&entities.RecipeIngredientLine{}).Count(&lines).Error)
	require.NoError(t, f.db.Model(&entities.Bookmark{}).Count(&bookmarks).Error)
	require.NoError(t, f.db.Model(&entities.CartItem{}).Count(&cartItems).Error)
	require.Zero(t, lines)
	require.Zero(t, bookmarks)
	require.Zero(t, cartItems)

	_, err = f.service.GetRecipe(ctx, view.ID, "")
	require.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestDeletedAuthorLeavesRecipeWithoutAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.createRecipe(t)

	userRepo := user.NewUserRepository(f.db)
	require.NoError(t, userRepo.DeleteUser(ctx, f.author.ID.String()))

	orphan, err := f.service.GetRecipe(ctx, view.ID, "")
	require.NoError(t, err)
	require.Nil(t, orphan.Author)
}

func TestGetRecipesFiltersByTagAndAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dinner := &entities.Tag{Name: "Обед", Color: "#D41159", Slug: "dinner"}
	require.NoError(t, f.db.Create(dinner).Error)

	f.createRecipe(t)

	soup := f.writeInput(domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 3})
	soup.Name = "Суп"
	soup.Tags = []string{dinner.ID.String()}
	_, err := f.service.CreateRecipe(ctx, soup, f.viewer.ID.String())
	require.NoError(t, err)

	views, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"dinner"}}, 1, 20, "")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Len(t, views, 1)
	require.Equal(t, "Суп", views[0].Name)

	views, count, err = f.service.GetRecipes(ctx, domain.RecipeFilter{AuthorID: f.author.ID.String()}, 1, 20, "")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, "Блины", views[0].Name)

	// Both slugs match both recipes exactly once each.
	views, count, err = f.service.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, 1, 20, "")
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Len(t, views, 2)
}

func TestFlagFiltersIgnoredForAnonymous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.createRecipe(t)

	_, err := f.service.AddFavorite(ctx, view.ID, f.viewer.ID.String())
	require.NoError(t, err)

	favorited := true
	views, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Favorited: &favorited}, 1, 20, "")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Len(t, views, 1)
}

func TestFlagFiltersApplyForViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewerID := f.viewer.ID.String()

	first := f.createRecipe(t)

	other := f.writeInput(domain.RecipeIngredientEntry{ID: f.flour.ID.String(), Amount: 100})
	other.Name = "Хлеб"
	_, err := f.service.CreateRecipe(ctx, other, f.author.ID.String())
	require.NoError(t, err)

	_, err = f.service.AddFavorite(ctx, first.ID, viewerID)
	require.NoError(t, err)

	favorited := true
	views, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Favorited: &favorited}, 1, 20, viewerID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Len(t, views, 1)
	require.Equal(t, first.ID, views[0].ID)
	require.True(t, views[0].IsFavorited)
}

func TestGetRecipesOrdersByPubDateDesc(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createRecipe(t)

	newer := f.writeInput(domain.RecipeIngredientEntry{ID: f.flour.ID.String(), Amount: 50})
	newer.Name = "Новый"
	_, err := f.service.CreateRecipe(ctx, newer, f.author.ID.String())
	require.NoError(t, err)

	views, _, err := f.service.GetRecipes(ctx, domain.RecipeFilter{}, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.True(t, views[0].PubDate >= views[1].PubDate)
}

func TestUnknownTagOrIngredientRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.writeInput(domain.RecipeIngredientEntry{ID: f.salt.ID.String(), Amount: 1})
	input.Tags = []string{"00000000-0000-0000-0000-000000000001"}
	_, err := f.service.CreateRecipe(ctx, input, f.author.ID.String())
	require.ErrorIs(t, err, domain.ErrTagNotFound)

	input = f.writeInput(domain.RecipeIngredientEntry{ID: "00000000-0000-0000-0000-000000000002", Amount: 1})
	_, err = f.service.CreateRecipe(ctx, input, f.author.ID.String())
	require.ErrorIs(t, err, domain.ErrIngredientNotFound)
}
