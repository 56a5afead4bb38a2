package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// createPinRequest is the body of POST /pins. Coordinates are pointers so a
// missing field is distinguishable from zero.
type createPinRequest struct {
	Lat   *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng   *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Name  string   `json:"name" validate:"required,min=1,max=200"`
	Image string   `json:"image" validate:"omitempty,max=2048"`
}

func (r createPinRequest) toDomain() domain.NewPin {
	return domain.NewPin{Lat: *r.Lat, Lng: *r.Lng, Name: r.Name, Image: r.Image}
}

// CreatePinResponse is the body of a successful POST /pins.
type CreatePinResponse struct {
	Status  string      `json:"status"`
	PinData *domain.Pin `json:"pin_data"`
}

// validationMessage turns validator output into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ListPinsHandler returns every stored pin.
func ListPinsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pins, err := deps.Pins.List(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(pins)
	}
}

// GetPinHandler returns a single pin.
func GetPinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pin, err := deps.Pins.Get(c.UserContext(), c.Params("id"))
		if errors.Is(err, domain.ErrPinNotFound) {
			return errNotFound(c, "Pin not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(pin)
	}
}

// CreatePinHandler validates the body, creates the pin and returns it enriched.
func CreatePinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := LoggerFromCtx(c.UserContext())

		var req createPinRequest
		if err := c.BodyParser(&req); err != nil {
			log.Warn("invalid pin body", "error", err)
			return errBadRequest(c, "invalid JSON body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		log.Info("create pin request", "lat", *req.Lat, "lng", *req.Lng, "name", req.Name)

		pin, err := deps.Pins.Create(c.UserContext(), req.toDomain())
		if errors.Is(err, domain.ErrInvalidPin) {
			return errBadRequest(c, err.Error())
		}
		if err != nil {
			log.Error("create pin failed", "error", err)
			return errInternal(c, err.Error())
		}

		return c.JSON(CreatePinResponse{Status: "success", PinData: pin})
	}
}

// DeletePinHandler removes a pin by id.
func DeletePinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := LoggerFromCtx(c.UserContext())
		id := c.Params("id")

		ok, err := deps.Pins.Delete(c.UserContext(), id)
		if err != nil {
			log.Error("delete pin failed", "id", id, "error", err)
			return statusError(c, fiber.StatusInternalServerError, err.Error())
		}
		if !ok {
			return errNotFound(c, "Pin not found")
		}
		return c.JSON(StatusResponse{Status: "success", Message: "Pin deleted successfully"})
	}
}
