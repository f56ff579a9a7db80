package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type (
	RecipeHandler interface {
		GetRecipes(c *fiber.Ctx) error
		GetRecipeDetail(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		AddFavorite(c *fiber.Ctx) error
		RemoveFavorite(c *fiber.Ctx) error
		AddToCart(c *fiber.Ctx) error
		RemoveFromCart(c *fiber.Ctx) error
		DownloadShoppingList(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
		pagination    domain.PaginationConfig
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate, pagination domain.PaginationConfig) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
		pagination:    pagination,
	}
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	page, limit := parsePagination(c, h.pagination)

	filter := domain.RecipeFilterRequest{
		AuthorID:       c.Query("author", ""),
		Favorited:      c.Query("is_favorited", "") == "1",
		InShoppingCart: c.Query("is_in_shopping_cart", "") == "1",
	}
	for _, slug := range c.Context().QueryArgs().PeekMulti("tags") {
		filter.TagSlugs = append(filter.TagSlugs, string(slug))
	}

	recipes, count, err := h.recipeService.GetRecipes(c.Context(), filter, page, limit, viewerID(c))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedGetRecipes, err)
	}

	envelope := domain.NewPageEnvelope(recipes, len(recipes), page, limit, count, "/api/v1/recipes", queryValues(c))
	return presenters.SuccessResponse(c, envelope, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipeDetail(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	if _, err := uuid.Parse(recipeID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetRecipeDetail, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.GetRecipeDetail(c.Context(), recipeID, viewerID(c))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedGetRecipeDetail, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	req := new(domain.UpsertRecipeRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRecipe, err)
	}

	res, err := h.recipeService.CreateRecipe(c.Context(), *req, c.Locals("user_id").(string))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedCreateRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	if _, err := uuid.Parse(recipeID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedUpdateRecipe, domain.ErrRecipeNotFound)
	}

	req := new(domain.UpsertRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRecipe, err)
	}

	res, err := h.recipeService.UpdateRecipe(c.Context(), recipeID, *req, c.Locals("user_id").(string), viewerRole(c))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedUpdateRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	if _, err := uuid.Parse(recipeID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedDeleteRecipe, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.DeleteRecipe(c.Context(), recipeID, c.Locals("user_id").(string), viewerRole(c)); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedDeleteRecipe, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *recipeHandler) AddFavorite(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	if _, err := uuid.Parse(recipeID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedAddFavorite, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.AddFavorite(c.Context(), recipeID, c.Locals("user_id").(string))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedAddFavorite, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddFavorite)
}

func (h *recipeHandler) RemoveFavorite(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	if _, err := uuid.Parse(recipeID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedRemoveFavorite, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.RemoveFavorite(c.Context(), recipeID, c.Locals("user_id").(string)); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedRemoveFavorite, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *recipeHandler) AddToCart(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	if _, err := uuid.Parse(recipeID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedAddToCart, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.AddToCart(c.Context(), recipeID, c.Locals("user_id").(string))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedAddToCart, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddToCart)
}

func (h *recipeHandler) RemoveFromCart(c *fiber.Ctx) error {
	recipeID := c.Params("id")
	if _, err := uuid.Parse(recipeID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedRemoveFromCart, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.RemoveFromCart(c.Context(), recipeID, c.Locals("user_id").(string)); err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedRemoveFromCart, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *recipeHandler) DownloadShoppingList(c *fiber.Ctx) error {
	list, err := h.recipeService.DownloadShoppingList(c.Context(), c.Locals("user_id").(string))
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusCode(err), domain.MessageFailedDownloadCartList, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="purchase_list.txt"`)
	return c.SendString(list)
}
