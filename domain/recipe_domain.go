package domain

import (
	"errors"
)

// Bounds shared by ingredient amounts and cooking time.
const (
	MinAcceptableValue = 1
	MaxAcceptableValue = 32767
)

var (
	MessageSuccessGetRecipes       = "success get recipes"
	MessageSuccessGetRecipeDetail  = "success get recipe detail"
	MessageSuccessCreateRecipe     = "recipe created successfully"
	MessageSuccessUpdateRecipe     = "recipe updated successfully"
	MessageSuccessDeleteRecipe     = "recipe deleted successfully"
	MessageSuccessAddFavorite      = "recipe added to favorites"
	MessageSuccessRemoveFavorite   = "recipe removed from favorites"
	MessageSuccessAddToCart        = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart   = "recipe removed from shopping cart"
	MessageSuccessDownloadCartList = "success get purchase list"

	MessageFailedGetRecipes       = "failed to get recipes"
	MessageFailedGetRecipeDetail  = "failed to get recipe detail"
	MessageFailedCreateRecipe     = "failed to create recipe"
	MessageFailedUpdateRecipe     = "failed to update recipe"
	MessageFailedDeleteRecipe     = "failed to delete recipe"
	MessageFailedAddFavorite      = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite   = "failed to remove recipe from favorites"
	MessageFailedAddToCart        = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart   = "failed to remove recipe from shopping cart"
	MessageFailedDownloadCartList = "failed to get purchase list"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrEmptyTags             = errors.New("tags must not be empty")
	ErrEmptyIngredients      = errors.New("ingredients must not be empty")
	ErrDuplicateTag          = errors.New("duplicate tag in recipe")
	ErrDuplicateIngredient   = errors.New("duplicate ingredient in recipe")
	ErrAmountOutOfRange      = errors.New("ingredient amount out of range")
	ErrCookingTimeOutOfRange = errors.New("cooking time out of range")
	ErrUnknownTag            = errors.New("unknown tag in recipe")
	ErrUnknownIngredient     = errors.New("unknown ingredient in recipe")
	ErrInvalidImagePayload   = errors.New("invalid image payload")
	ErrAlreadyFavorited      = errors.New("recipe already added to favorites")
	ErrNotInFavorites        = errors.New("recipe was not added to favorites")
	ErrAlreadyInShoppingCart = errors.New("recipe already added to shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe was not added to shopping cart")
)

type (
	// UpsertRecipeRequest is the write model for recipe create and update.
	// The read representation is RecipeResponse; the two are intentionally
	// asymmetric.
	UpsertRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		Image       string                    `json:"image" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required"`
		Tags        []string                  `json:"tags" validate:"required,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,dive"`
	}

	RecipeIngredientRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required"`
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	// RecipeResponse is the read view assembled for a concrete viewer.
	RecipeResponse struct {
		ID               string                     `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
	}

	// RecipeSummary is the compact representation returned from the
	// favorite/cart toggles and inside subscription views.
	RecipeSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	// RecipeFilterRequest carries the list filters; the favorited/cart flags
	// only apply when the viewer is authenticated.
	RecipeFilterRequest struct {
		TagSlugs       []string
		AuthorID       string
		Favorited      bool
		InShoppingCart bool
	}

	// PurchaseItem is one aggregated line of the shopping list.
	PurchaseItem struct {
		Name            string `json:"name"`
		Amount          int    `json:"amount"`
		MeasurementUnit string `json:"measurement_unit"`
	}
)
