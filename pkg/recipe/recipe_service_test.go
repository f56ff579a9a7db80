package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRecipeRepository struct {
	recipes   map[string]*entities.Recipe
	favorites map[string]bool
	cart      map[string]bool
	cartRows  []*entities.RecipeIngredient
	lastRows  []*entities.RecipeIngredient

	// Injected failures for paths the in-memory maps cannot produce, such
	// as a unique violation from an insert that raced a concurrent request.
	favoriteInsertErr error
	cartInsertErr     error
	updateErr         error
}

func newFakeRecipeRepository() *fakeRecipeRepository {
	return &fakeRecipeRepository{
		recipes:   make(map[string]*entities.Recipe),
		favorites: make(map[string]bool),
		cart:      make(map[string]bool),
	}
}

func pairKey(userID, recipeID string) string {
	return userID + "/" + recipeID
}

func (f *fakeRecipeRepository) GetRecipes(_ context.Context, _ RecipeFilter, _, _ int) ([]*entities.Recipe, int64, error) {
	recipes := make([]*entities.Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		recipes = append(recipes, r)
	}
	return recipes, int64(len(recipes)), nil
}

func (f *fakeRecipeRepository) GetRecipeByID(_ context.Context, id string) (*entities.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return recipe, nil
}

func (f *fakeRecipeRepository) CreateRecipe(_ context.Context, recipe *entities.Recipe, tags []*entities.Tag, rows []*entities.RecipeIngredient) error {
	for _, row := range rows {
		row.RecipeID = recipe.ID
	}
	recipe.Tags = tags
	recipe.IngredientRows = rows
	f.recipes[recipe.ID.String()] = recipe
	f.lastRows = rows
	return nil
}

func (f *fakeRecipeRepository) UpdateRecipe(_ context.Context, recipe *entities.Recipe, tags []*entities.Tag, rows []*entities.RecipeIngredient) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, row := range rows {
		row.RecipeID = recipe.ID
	}
	existing := f.recipes[recipe.ID.String()]
	recipe.Author = existing.Author
	recipe.Tags = tags
	recipe.IngredientRows = rows
	f.recipes[recipe.ID.String()] = recipe
	f.lastRows = rows
	return nil
}

func (f *fakeRecipeRepository) DeleteRecipe(_ context.Context, id string) error {
	delete(f.recipes, id)
	return nil
}

func (f *fakeRecipeRepository) AddFavorite(_ context.Context, userID, recipeID uuid.UUID) error {
	if f.favoriteInsertErr != nil {
		return f.favoriteInsertErr
	}
	key := pairKey(userID.String(), recipeID.String())
	if f.favorites[key] {
		return gorm.ErrDuplicatedKey
	}
	f.favorites[key] = true
	return nil
}

func (f *fakeRecipeRepository) RemoveFavorite(_ context.Context, userID, recipeID string) (int64, error) {
	key := pairKey(userID, recipeID)
	if !f.favorites[key] {
		return 0, nil
	}
	delete(f.favorites, key)
	return 1, nil
}

func (f *fakeRecipeRepository) IsFavorited(_ context.Context, userID, recipeID string) (bool, error) {
	return f.favorites[pairKey(userID, recipeID)], nil
}

func (f *fakeRecipeRepository) AddToCart(_ context.Context, userID, recipeID uuid.UUID) error {
	if f.cartInsertErr != nil {
		return f.cartInsertErr
	}
	key := pairKey(userID.String(), recipeID.String())
	if f.cart[key] {
		return gorm.ErrDuplicatedKey
	}
	f.cart[key] = true
	return nil
}

func (f *fakeRecipeRepository) RemoveFromCart(_ context.Context, userID, recipeID string) (int64, error) {
	key := pairKey(userID, recipeID)
	if !f.cart[key] {
		return 0, nil
	}
	delete(f.cart, key)
	return 1, nil
}

func (f *fakeRecipeRepository) IsInCart(_ context.Context, userID, recipeID string) (bool, error) {
	return f.cart[pairKey(userID, recipeID)], nil
}

func (f *fakeRecipeRepository) GetCartIngredientRows(_ context.Context, _ string) ([]*entities.RecipeIngredient, error) {
	return f.cartRows, nil
}

type fakeTagRepository struct {
	tags map[string]*entities.Tag
}

func (f *fakeTagRepository) GetTags(_ context.Context) ([]*entities.Tag, error) {
	tags := make([]*entities.Tag, 0, len(f.tags))
	for _, t := range f.tags {
		tags = append(tags, t)
	}
	return tags, nil
}

func (f *fakeTagRepository) GetTagByID(_ context.Context, id string) (*entities.Tag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tag, nil
}

func (f *fakeTagRepository) GetTagsByIDs(_ context.Context, ids []string) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

type fakeIngredientRepository struct {
	ingredients map[string]*entities.Ingredient
}

func (f *fakeIngredientRepository) GetIngredients(_ context.Context, _ string) ([]*entities.Ingredient, error) {
	ingredients := make([]*entities.Ingredient, 0, len(f.ingredients))
	for _, i := range f.ingredients {
		ingredients = append(ingredients, i)
	}
	return ingredients, nil
}

func (f *fakeIngredientRepository) GetIngredientByID(_ context.Context, id string) (*entities.Ingredient, error) {
	ingredient, ok := f.ingredients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ingredient, nil
}

func (f *fakeIngredientRepository) GetIngredientsByIDs(_ context.Context, ids []string) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	for _, id := range ids {
		if ingredient, ok := f.ingredients[id]; ok {
			ingredients = append(ingredients, ingredient)
		}
	}
	return ingredients, nil
}

type fakeSubscriptionChecker struct {
	subscriptions map[string]bool
}

func (f *fakeSubscriptionChecker) CreateUser(_ context.Context, _ *entities.User) error {
	return nil
}

func (f *fakeSubscriptionChecker) GetUserByID(_ context.Context, _ string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriptionChecker) GetUserByEmail(_ context.Context, _ string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriptionChecker) GetUsers(_ context.Context, _, _ int) ([]*entities.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeSubscriptionChecker) CheckEmailExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (f *fakeSubscriptionChecker) CheckUsernameExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (f *fakeSubscriptionChecker) Subscribe(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (f *fakeSubscriptionChecker) Unsubscribe(_ context.Context, _, _ string) (int64, error) {
	return 0, nil
}

func (f *fakeSubscriptionChecker) IsSubscribed(_ context.Context, subscriberID, subscribedToID string) (bool, error) {
	return f.subscriptions[pairKey(subscriberID, subscribedToID)], nil
}

func (f *fakeSubscriptionChecker) GetSubscribedUsers(_ context.Context, _ string, _, _ int) ([]*entities.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeSubscriptionChecker) GetRecipesByAuthor(_ context.Context, _ string) ([]*entities.Recipe, error) {
	return nil, nil
}

type fakeStorage struct {
	deleted []string
}

func (f *fakeStorage) UploadBase64(fileName string, _ string, dir string, _ ...string) (string, error) {
	return dir + "/" + fileName, nil
}

func (f *fakeStorage) DeleteFile(objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeStorage) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (f *fakeStorage) GetObjectKeyFromLink(link string) string {
	if strings.HasPrefix(link, "https://cdn.test/") {
		return strings.TrimPrefix(link, "https://cdn.test/")
	}
	return ""
}

type recipeServiceFixture struct {
	service    RecipeService
	recipeRepo *fakeRecipeRepository
	userRepo   *fakeSubscriptionChecker
	storage    *fakeStorage

	author       *entities.User
	tag          *entities.Tag
	salt         *entities.Ingredient
	flour        *entities.Ingredient
	seededRecipe *entities.Recipe
}

func newRecipeServiceFixture() *recipeServiceFixture {
	author := &entities.User{
		ID:       uuid.New(),
		Email:    "author@example.com",
		Username: "author",
		Role:     domain.RoleUser,
	}
	dinner := &entities.Tag{ID: uuid.New(), Name: "dinner", Color: "#AA0000", Slug: "dinner"}
	salt := &entities.Ingredient{ID: uuid.New(), Name: "salt", MeasurementUnit: "g"}
	flour := &entities.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}

	recipeRepo := newFakeRecipeRepository()
	seeded := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        "bread",
		Text:        "bake it",
		ImageURL:    "https://cdn.test/recipes/bread",
		CookingTime: 60,
		Author:      author,
		Tags:        []*entities.Tag{dinner},
		IngredientRows: []*entities.RecipeIngredient{
			{ID: uuid.New(), IngredientID: flour.ID, Ingredient: flour, Amount: 500},
		},
	}
	recipeRepo.recipes[seeded.ID.String()] = seeded

	tagRepo := &fakeTagRepository{tags: map[string]*entities.Tag{dinner.ID.String(): dinner}}
	ingredientRepo := &fakeIngredientRepository{ingredients: map[string]*entities.Ingredient{
		salt.ID.String():  salt,
		flour.ID.String(): flour,
	}}
	userRepo := &fakeSubscriptionChecker{subscriptions: make(map[string]bool)}
	store := &fakeStorage{}

	return &recipeServiceFixture{
		service:      NewRecipeService(recipeRepo, tagRepo, ingredientRepo, userRepo, store),
		recipeRepo:   recipeRepo,
		userRepo:     userRepo,
		storage:      store,
		author:       author,
		tag:          dinner,
		salt:         salt,
		flour:        flour,
		seededRecipe: seeded,
	}
}

func (f *recipeServiceFixture) validUpsert() domain.UpsertRecipeRequest {
	return domain.UpsertRecipeRequest{
		Name: "pancakes",
		Text: "mix and fry",
		Tags: []string{f.tag.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{
			{ID: f.flour.ID.String(), Amount: 200},
			{ID: f.salt.ID.String(), Amount: 5},
		},
		Image:       "data:image/png;base64,aGVsbG8=",
		CookingTime: 20,
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeServiceFixture()

	res, err := f.service.CreateRecipe(context.Background(), f.validUpsert(), f.author.ID.String())

	require.NoError(t, err)
	assert.Equal(t, "pancakes", res.Name)
	assert.Len(t, res.Tags, 1)
	assert.Len(t, res.Ingredients, 2)
	assert.False(t, res.IsFavorited)
	assert.False(t, res.IsInShoppingCart)
	assert.True(t, strings.HasPrefix(res.Image, "https://cdn.test/recipes/"))
}

func TestCreateRecipeDuplicateIngredient(t *testing.T) {
	f := newRecipeServiceFixture()
	req := f.validUpsert()
	req.Ingredients = append(req.Ingredients, domain.RecipeIngredientRequest{
		ID:     f.salt.ID.String(),
		Amount: 10,
	})

	_, err := f.service.CreateRecipe(context.Background(), req, f.author.ID.String())

	assert.ErrorIs(t, err, domain.ErrDuplicateIngredient)
	assert.Len(t, f.recipeRepo.recipes, 1, "nothing must be persisted on validation failure")
}

func TestCreateRecipeUnknownIngredient(t *testing.T) {
	f := newRecipeServiceFixture()
	req := f.validUpsert()
	req.Ingredients = []domain.RecipeIngredientRequest{{ID: uuid.New().String(), Amount: 5}}

	_, err := f.service.CreateRecipe(context.Background(), req, f.author.ID.String())

	assert.ErrorIs(t, err, domain.ErrUnknownIngredient)
}

func TestCreateRecipeUnknownTag(t *testing.T) {
	f := newRecipeServiceFixture()
	req := f.validUpsert()
	req.Tags = []string{uuid.New().String()}

	_, err := f.service.CreateRecipe(context.Background(), req, f.author.ID.String())

	assert.ErrorIs(t, err, domain.ErrUnknownTag)
}

func TestCreateRecipeEmptyTags(t *testing.T) {
	f := newRecipeServiceFixture()
	req := f.validUpsert()
	req.Tags = nil

	_, err := f.service.CreateRecipe(context.Background(), req, f.author.ID.String())

	assert.ErrorIs(t, err, domain.ErrEmptyTags)
}

func TestCreateRecipeCookingTimeBounds(t *testing.T) {
	f := newRecipeServiceFixture()

	req := f.validUpsert()
	req.CookingTime = 0
	_, err := f.service.CreateRecipe(context.Background(), req, f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrCookingTimeOutOfRange)

	req = f.validUpsert()
	req.CookingTime = 32768
	_, err = f.service.CreateRecipe(context.Background(), req, f.author.ID.String())
	assert.ErrorIs(t, err, domain.ErrCookingTimeOutOfRange)
}

func TestCreateRecipeAmountBounds(t *testing.T) {
	f := newRecipeServiceFixture()
	req := f.validUpsert()
	req.Ingredients[0].Amount = 0

	_, err := f.service.CreateRecipe(context.Background(), req, f.author.ID.String())

	assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)
}

func TestUpdateRecipeByNonAuthor(t *testing.T) {
	f := newRecipeServiceFixture()

	_, err := f.service.UpdateRecipe(
		context.Background(),
		f.seededRecipe.ID.String(),
		f.validUpsert(),
		uuid.New().String(),
		domain.RoleUser,
	)

	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)
}

func TestUpdateRecipeByAdmin(t *testing.T) {
	f := newRecipeServiceFixture()

	_, err := f.service.UpdateRecipe(
		context.Background(),
		f.seededRecipe.ID.String(),
		f.validUpsert(),
		uuid.New().String(),
		domain.RoleAdmin,
	)

	assert.NoError(t, err)
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	f := newRecipeServiceFixture()
	req := f.validUpsert()
	req.Ingredients = []domain.RecipeIngredientRequest{{ID: f.salt.ID.String(), Amount: 7}}

	res, err := f.service.UpdateRecipe(
		context.Background(),
		f.seededRecipe.ID.String(),
		req,
		f.author.ID.String(),
		domain.RoleUser,
	)

	require.NoError(t, err)
	require.Len(t, res.Ingredients, 1)
	assert.Equal(t, f.salt.ID.String(), res.Ingredients[0].ID)
	assert.Equal(t, 7, res.Ingredients[0].Amount)
	assert.Len(t, f.recipeRepo.lastRows, 1)
}

func TestUpdateRecipeDeletesReplacedImageAfterSuccess(t *testing.T) {
	f := newRecipeServiceFixture()

	_, err := f.service.UpdateRecipe(
		context.Background(),
		f.seededRecipe.ID.String(),
		f.validUpsert(),
		f.author.ID.String(),
		domain.RoleUser,
	)

	require.NoError(t, err)
	assert.Contains(t, f.storage.deleted, "recipes/bread")
}

func TestUpdateRecipeFailureKeepsPreviousImage(t *testing.T) {
	f := newRecipeServiceFixture()
	f.recipeRepo.updateErr = gorm.ErrInvalidTransaction

	_, err := f.service.UpdateRecipe(
		context.Background(),
		f.seededRecipe.ID.String(),
		f.validUpsert(),
		f.author.ID.String(),
		domain.RoleUser,
	)

	require.Error(t, err)
	assert.NotContains(t, f.storage.deleted, "recipes/bread",
		"the stored recipe still references the old image when the update fails")
	require.Len(t, f.storage.deleted, 1, "the orphaned upload is cleaned up")
}

func TestDeleteRecipeByNonAuthor(t *testing.T) {
	f := newRecipeServiceFixture()

	err := f.service.DeleteRecipe(
		context.Background(),
		f.seededRecipe.ID.String(),
		uuid.New().String(),
		domain.RoleUser,
	)

	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)
}

func TestDeleteRecipeNotFound(t *testing.T) {
	f := newRecipeServiceFixture()

	err := f.service.DeleteRecipe(context.Background(), uuid.New().String(), f.author.ID.String(), domain.RoleUser)

	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestAddFavoriteTwice(t *testing.T) {
	f := newRecipeServiceFixture()
	viewerID := uuid.New().String()
	recipeID := f.seededRecipe.ID.String()

	summary, err := f.service.AddFavorite(context.Background(), recipeID, viewerID)
	require.NoError(t, err)
	assert.Equal(t, f.seededRecipe.Name, summary.Name)

	_, err = f.service.AddFavorite(context.Background(), recipeID, viewerID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)
}

func TestAddFavoriteLosingInsertRace(t *testing.T) {
	f := newRecipeServiceFixture()
	f.recipeRepo.favoriteInsertErr = gorm.ErrDuplicatedKey

	_, err := f.service.AddFavorite(context.Background(), f.seededRecipe.ID.String(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)
}

func TestAddToCartLosingInsertRace(t *testing.T) {
	f := newRecipeServiceFixture()
	f.recipeRepo.cartInsertErr = gorm.ErrDuplicatedKey

	_, err := f.service.AddToCart(context.Background(), f.seededRecipe.ID.String(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrAlreadyInShoppingCart)
}

func TestRemoveFavoriteNotFavorited(t *testing.T) {
	f := newRecipeServiceFixture()

	err := f.service.RemoveFavorite(context.Background(), f.seededRecipe.ID.String(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrNotInFavorites)
}

func TestAddToCartTwice(t *testing.T) {
	f := newRecipeServiceFixture()
	viewerID := uuid.New().String()
	recipeID := f.seededRecipe.ID.String()

	_, err := f.service.AddToCart(context.Background(), recipeID, viewerID)
	require.NoError(t, err)

	_, err = f.service.AddToCart(context.Background(), recipeID, viewerID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInShoppingCart)
}

func TestRemoveFromCartNotInCart(t *testing.T) {
	f := newRecipeServiceFixture()

	err := f.service.RemoveFromCart(context.Background(), f.seededRecipe.ID.String(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrNotInShoppingCart)
}

func TestFavoriteUnknownRecipe(t *testing.T) {
	f := newRecipeServiceFixture()

	_, err := f.service.AddFavorite(context.Background(), uuid.New().String(), uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestGetRecipeDetailAnonymousViewer(t *testing.T) {
	f := newRecipeServiceFixture()
	viewerID := uuid.New().String()
	recipeID := f.seededRecipe.ID.String()
	_, err := f.service.AddFavorite(context.Background(), recipeID, viewerID)
	require.NoError(t, err)

	res, err := f.service.GetRecipeDetail(context.Background(), recipeID, "")

	require.NoError(t, err)
	assert.False(t, res.IsFavorited)
	assert.False(t, res.IsInShoppingCart)
	assert.False(t, res.Author.IsSubscribed)
}

func TestGetRecipeDetailSubscribedViewer(t *testing.T) {
	f := newRecipeServiceFixture()
	viewerID := uuid.New().String()
	f.userRepo.subscriptions[pairKey(viewerID, f.author.ID.String())] = true

	res, err := f.service.GetRecipeDetail(context.Background(), f.seededRecipe.ID.String(), viewerID)

	require.NoError(t, err)
	assert.True(t, res.Author.IsSubscribed)
}

func TestDownloadShoppingList(t *testing.T) {
	f := newRecipeServiceFixture()
	f.recipeRepo.cartRows = []*entities.RecipeIngredient{
		{ID: uuid.New(), Ingredient: f.salt, Amount: 10},
		{ID: uuid.New(), Ingredient: f.flour, Amount: 200},
		{ID: uuid.New(), Ingredient: f.salt, Amount: 5},
	}

	list, err := f.service.DownloadShoppingList(context.Background(), uuid.New().String())

	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\nflour, 200 g\nsalt, 15 g\n", list)
}
