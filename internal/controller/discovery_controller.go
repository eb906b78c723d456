package controller

import (
	"book-discovery-be/internal/dto"
	"book-discovery-be/internal/pkg/serverutils"
	"book-discovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDiscoveryController interface {
	RegisterRoutes(r fiber.Router)
	Describe(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	ToggleRead(ctx *fiber.Ctx) error
	Recommend(ctx *fiber.Ctx) error
	IndexBooks(ctx *fiber.Ctx) error
}

type discoveryController struct {
	discoveryService service.IDiscoveryService
}

func NewDiscoveryController(discoveryService service.IDiscoveryService) IDiscoveryController {
	return &discoveryController{
		discoveryService: discoveryService,
	}
}

func (c *discoveryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/discovery/v1")
	h.Post("books", c.IndexBooks)
	h.Post("sessions/:id/description", c.Describe)
	h.Post("sessions/:id/search", c.Search)
	h.Post("sessions/:id/read/:bookId", c.ToggleRead)
	h.Post("sessions/:id/recommendations", c.Recommend)
}

func (c *discoveryController) Describe(ctx *fiber.Ctx) error {
	res, err := c.discoveryService.Describe(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate description", res))
}

func (c *discoveryController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.discoveryService.Search(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return mapUpstreamError(err, "Book search is unavailable, please try again")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search books", res))
}

func (c *discoveryController) ToggleRead(ctx *fiber.Ctx) error {
	res, err := c.discoveryService.ToggleRead(ctx.UserContext(), ctx.Params("id"), ctx.Params("bookId"))
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Read mark updated", res))
}

func (c *discoveryController) Recommend(ctx *fiber.Ctx) error {
	res, err := c.discoveryService.Recommend(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapUpstreamError(err, "Recommendations are unavailable, please try again")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate recommendations", res))
}

func (c *discoveryController) IndexBooks(ctx *fiber.Ctx) error {
	var req dto.IndexBooksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.discoveryService.IndexBooks(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Books queued for indexing", res))
}
