package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/ingredient"
	"Foodgram-Backend/pkg/tag"
	"Foodgram-Backend/pkg/user"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilterRequest, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.UpsertRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpsertRecipeRequest, actorID, role string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID, actorID, role string) error

		AddFavorite(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToCart(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error)
		RemoveFromCart(ctx context.Context, recipeID, userID string) error

		DownloadShoppingList(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        tag.TagRepository
		ingredientRepository ingredient.IngredientRepository
		userRepository       user.UserRepository
		s3                   storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository tag.TagRepository,
	ingredientRepository ingredient.IngredientRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		tagRepository:        tagRepository,
		ingredientRepository: ingredientRepository,
		userRepository:       userRepository,
		s3:                   s3,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilterRequest, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error) {
	repoFilter := RecipeFilter{
		TagSlugs: filter.TagSlugs,
		AuthorID: filter.AuthorID,
	}
	// The favorited/cart flags only make sense for an authenticated viewer.
	if viewerID != "" {
		if filter.Favorited {
			repoFilter.FavoritedBy = viewerID
		}
		if filter.InShoppingCart {
			repoFilter.InCartOf = viewerID
		}
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, repoFilter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		view, err := s.toRecipeResponse(ctx, r, viewerID)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, view)
	}
	return res, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, viewerID)
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.UpsertRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	tags, rows, err := s.validateUpsert(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.resolveImage(req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, &recipe, tags, rows); err != nil {
		return domain.RecipeResponse{}, err
	}

	created, err := s.recipeRepository.GetRecipeByID(ctx, recipe.ID.String())
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, created, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpsertRecipeRequest, actorID, role string) (domain.RecipeResponse, error) {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if !domain.CanModifyRecipe(actorID, role, existing.AuthorID.String()) {
		return domain.RecipeResponse{}, domain.ErrUserNotAllowed
	}

	tags, rows, err := s.validateUpsert(ctx, req)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.resolveImage(req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := entities.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		Timestamp:   existing.Timestamp,
	}
	if err := s.recipeRepository.UpdateRecipe(ctx, &recipe, tags, rows); err != nil {
		// The freshly uploaded object is orphaned when the update fails; the
		// stored recipe must keep referencing its previous image.
		if imageURL != existing.ImageURL {
			s.dropStoredImage(imageURL)
		}
		return domain.RecipeResponse{}, err
	}

	if imageURL != existing.ImageURL {
		s.dropStoredImage(existing.ImageURL)
	}

	updated, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, updated, actorID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, actorID, role string) error {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if !domain.CanModifyRecipe(actorID, role, existing.AuthorID.String()) {
		return domain.ErrUserNotAllowed
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}

	s.dropStoredImage(existing.ImageURL)
	return nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, userUUID, err := s.getToggleTarget(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if favorited {
		return domain.RecipeSummary{}, domain.ErrAlreadyFavorited
	}

	if err := s.recipeRepository.AddFavorite(ctx, userUUID, recipe.ID); err != nil {
		// Concurrent duplicate inserts are rejected by the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeSummary{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeSummary{}, err
	}
	return toRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	if _, _, err := s.getToggleTarget(ctx, recipeID, userID); err != nil {
		return err
	}

	affected, err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotInFavorites
	}
	return nil
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID string) (domain.RecipeSummary, error) {
	recipe, userUUID, err := s.getToggleTarget(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}

	inCart, err := s.recipeRepository.IsInCart(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if inCart {
		return domain.RecipeSummary{}, domain.ErrAlreadyInShoppingCart
	}

	if err := s.recipeRepository.AddToCart(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeSummary{}, domain.ErrAlreadyInShoppingCart
		}
		return domain.RecipeSummary{}, err
	}
	return toRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID string) error {
	if _, _, err := s.getToggleTarget(ctx, recipeID, userID); err != nil {
		return err
	}

	affected, err := s.recipeRepository.RemoveFromCart(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

func (s *recipeService) DownloadShoppingList(ctx context.Context, userID string) (string, error) {
	rows, err := s.recipeRepository.GetCartIngredientRows(ctx, userID)
	if err != nil {
		return "", err
	}
	return RenderPurchaseList(AggregatePurchases(rows)), nil
}

func (s *recipeService) getToggleTarget(ctx context.Context, recipeID, userID string) (*entities.Recipe, uuid.UUID, error) {
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

// validateUpsert enforces the write-model invariants before any mutation:
// bounded cooking time and amounts, non-empty duplicate-free tag and
// ingredient sets, and resolvable ids.
func (s *recipeService) validateUpsert(ctx context.Context, req domain.UpsertRecipeRequest) ([]*entities.Tag, []*entities.RecipeIngredient, error) {
	if req.CookingTime < domain.MinAcceptableValue || req.CookingTime > domain.MaxAcceptableValue {
		return nil, nil, domain.ErrCookingTimeOutOfRange
	}

	if len(req.Tags) == 0 {
		return nil, nil, domain.ErrEmptyTags
	}
	seenTags := make(map[string]bool, len(req.Tags))
	for _, id := range req.Tags {
		if seenTags[id] {
			return nil, nil, domain.ErrDuplicateTag
		}
		seenTags[id] = true
	}

	if len(req.Ingredients) == 0 {
		return nil, nil, domain.ErrEmptyIngredients
	}
	seenIngredients := make(map[string]bool, len(req.Ingredients))
	ingredientIDs := make([]string, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if item.Amount < domain.MinAcceptableValue || item.Amount > domain.MaxAcceptableValue {
			return nil, nil, domain.ErrAmountOutOfRange
		}
		if seenIngredients[item.ID] {
			return nil, nil, domain.ErrDuplicateIngredient
		}
		seenIngredients[item.ID] = true
		ingredientIDs = append(ingredientIDs, item.ID)
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, req.Tags)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(req.Tags) {
		return nil, nil, domain.ErrUnknownTag
	}

	ingredients, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(ingredients) != len(ingredientIDs) {
		return nil, nil, domain.ErrUnknownIngredient
	}

	rows := make([]*entities.RecipeIngredient, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredientUUID, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		rows = append(rows, &entities.RecipeIngredient{
			ID:           uuid.New(),
			IngredientID: ingredientUUID,
			Amount:       item.Amount,
		})
	}
	return tags, rows, nil
}

// resolveImage turns a base64 data-URI payload into a stored object URL;
// anything else is treated as an already-stored reference.
func (s *recipeService) resolveImage(payload string) (string, error) {
	if !strings.HasPrefix(payload, "data:") {
		if payload == "" {
			return "", domain.ErrInvalidImagePayload
		}
		return payload, nil
	}

	objectKey, err := s.s3.UploadBase64(uuid.New().String(), payload, "recipes", storage.AllowImage...)
	if err != nil {
		return "", domain.ErrInvalidImagePayload
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

// dropStoredImage removes a replaced or orphaned recipe image best effort.
func (s *recipeService) dropStoredImage(imageURL string) {
	if objectKey := s.s3.GetObjectKeyFromLink(imageURL); objectKey != "" {
		_ = s.s3.DeleteFile(objectKey)
	}
}

// toRecipeResponse assembles the read view for a concrete viewer; the
// per-viewer flags stay false for anonymous viewers.
func (s *recipeService) toRecipeResponse(ctx context.Context, r *entities.Recipe, viewerID string) (domain.RecipeResponse, error) {
	res := domain.RecipeResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Image:       r.ImageURL,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Tags:        make([]domain.TagResponse, 0, len(r.Tags)),
		Ingredients: make([]domain.RecipeIngredientResponse, 0, len(r.IngredientRows)),
	}

	for _, t := range r.Tags {
		res.Tags = append(res.Tags, domain.TagResponse{
			ID:    t.ID.String(),
			Name:  t.Name,
			Color: t.Color,
			Slug:  t.Slug,
		})
	}

	for _, row := range r.IngredientRows {
		item := domain.RecipeIngredientResponse{
			ID:     row.IngredientID.String(),
			Amount: row.Amount,
		}
		if row.Ingredient != nil {
			item.Name = row.Ingredient.Name
			item.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		res.Ingredients = append(res.Ingredients, item)
	}

	if r.Author != nil {
		res.Author = domain.UserResponse{
			ID:        r.Author.ID.String(),
			Email:     r.Author.Email,
			Username:  r.Author.Username,
			FirstName: r.Author.FirstName,
			LastName:  r.Author.LastName,
		}
		if viewerID != "" && viewerID != r.AuthorID.String() {
			subscribed, err := s.userRepository.IsSubscribed(ctx, viewerID, r.AuthorID.String())
			if err != nil {
				return domain.RecipeResponse{}, err
			}
			res.Author.IsSubscribed = subscribed
		}
	}

	if viewerID != "" {
		favorited, err := s.recipeRepository.IsFavorited(ctx, viewerID, r.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		res.IsFavorited = favorited

		inCart, err := s.recipeRepository.IsInCart(ctx, viewerID, r.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		res.IsInShoppingCart = inCart
	}

	return res, nil
}

func toRecipeSummary(r *entities.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          r.ID.String(),
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}
