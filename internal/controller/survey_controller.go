package controller

import (
	"book-discovery-be/internal/dto"
	"book-discovery-be/internal/pkg/serverutils"
	"book-discovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISurveyController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	CustomText(ctx *fiber.Ctx) error
	ClearAnswer(ctx *fiber.Ctx) error
	Advance(ctx *fiber.Ctx) error
	Skip(ctx *fiber.Ctx) error
	GoTo(ctx *fiber.Ctx) error
	Expand(ctx *fiber.Ctx) error
	Response(ctx *fiber.Ctx) error
}

type surveyController struct {
	surveyService service.ISurveyService
}

func NewSurveyController(surveyService service.ISurveyService) ISurveyController {
	return &surveyController{
		surveyService: surveyService,
	}
}

func (c *surveyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/survey/v1/sessions")
	h.Post("", c.Start)
	h.Get(":id", c.Show)
	h.Put(":id/answers/:questionId", c.Answer)
	h.Put(":id/answers/:questionId/custom", c.CustomText)
	h.Delete(":id/answers/:questionId", c.ClearAnswer)
	h.Post(":id/advance", c.Advance)
	h.Post(":id/skip", c.Skip)
	h.Post(":id/goto", c.GoTo)
	h.Post(":id/expand", c.Expand)
	h.Get(":id/response", c.Response)
}

func (c *surveyController) Start(ctx *fiber.Ctx) error {
	res, err := c.surveyService.Start(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Survey started", res))
}

func (c *surveyController) Show(ctx *fiber.Ctx) error {
	res, err := c.surveyService.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show survey", res))
}

func (c *surveyController) Answer(ctx *fiber.Ctx) error {
	questionId, err := ctx.ParamsInt("questionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "questionId must be a number")
	}

	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.surveyService.Answer(ctx.UserContext(), ctx.Params("id"), questionId, req.Value)
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Answer saved", res))
}

func (c *surveyController) CustomText(ctx *fiber.Ctx) error {
	questionId, err := ctx.ParamsInt("questionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "questionId must be a number")
	}

	var req dto.CustomTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.surveyService.SetCustomText(ctx.UserContext(), ctx.Params("id"), questionId, req.Text)
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Custom answer saved", res))
}

func (c *surveyController) ClearAnswer(ctx *fiber.Ctx) error {
	questionId, err := ctx.ParamsInt("questionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "questionId must be a number")
	}

	res, err := c.surveyService.ClearAnswer(ctx.UserContext(), ctx.Params("id"), questionId)
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Answer cleared", res))
}

func (c *surveyController) Advance(ctx *fiber.Ctx) error {
	res, err := c.surveyService.Advance(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Survey advanced", res))
}

func (c *surveyController) Skip(ctx *fiber.Ctx) error {
	res, err := c.surveyService.Skip(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Question skipped", res))
}

func (c *surveyController) GoTo(ctx *fiber.Ctx) error {
	var req dto.GoToRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.surveyService.GoTo(ctx.UserContext(), ctx.Params("id"), req.Step)
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success go to step", res))
}

func (c *surveyController) Expand(ctx *fiber.Ctx) error {
	res, err := c.surveyService.Expand(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Follow-up questions added", res))
}

func (c *surveyController) Response(ctx *fiber.Ctx) error {
	res, err := c.surveyService.Response(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show survey response", res))
}
