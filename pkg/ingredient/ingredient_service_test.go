package ingredient_test

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/ingredient"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}))
	return db
}

func TestGetIngredientsPrefixFilter(t *testing.T) {
	db := setupTestDB(t)
	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	ctx := context.Background()

	for _, seed := range []domain.CreateIngredientRequest{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "Salmon", MeasurementUnit: "g"},
		{Name: "pepper", MeasurementUnit: "g"},
	} {
		_, err := service.CreateIngredient(ctx, seed)
		require.NoError(t, err)
	}

	// Prefix match is case-insensitive and ordered by name.
	res, err := service.GetIngredients(ctx, "sal")
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "Salmon", res[0].Name)
	require.Equal(t, "salt", res[1].Name)

	// No prefix returns everything.
	res, err = service.GetIngredients(ctx, "")
	require.NoError(t, err)
	require.Len(t, res, 3)

	// Substring in the middle does not match.
	res, err = service.GetIngredients(ctx, "alt")
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestGetIngredientsPrefixTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	ctx := context.Background()

	for _, seed := range []domain.CreateIngredientRequest{
		{Name: "100% rye flour", MeasurementUnit: "g"},
		{Name: "1000 island dressing", MeasurementUnit: "ml"},
		{Name: "sea_salt", MeasurementUnit: "g"},
		{Name: "seaweed", MeasurementUnit: "g"},
	} {
		_, err := service.CreateIngredient(ctx, seed)
		require.NoError(t, err)
	}

	// A literal % in the term must not act as a wildcard.
	res, err := service.GetIngredients(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "100% rye flour", res[0].Name)

	// Same for a literal underscore.
	res, err = service.GetIngredients(ctx, "sea_")
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "sea_salt", res[0].Name)
}

func TestGetIngredientByID(t *testing.T) {
	db := setupTestDB(t)
	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	ctx := context.Background()

	created, err := service.CreateIngredient(ctx, domain.CreateIngredientRequest{Name: "sugar", MeasurementUnit: "g"})
	require.NoError(t, err)

	got, err := service.GetIngredient(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "sugar", got.Name)
	require.Equal(t, "g", got.MeasurementUnit)

	_, err = service.GetIngredient(ctx, "00000000-0000-0000-0000-000000000001")
	require.ErrorIs(t, err, domain.ErrIngredientNotFound)
}
