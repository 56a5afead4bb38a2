package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// pinToMap flattens a pin for the GraphQL resolvers.
func pinToMap(p *domain.Pin) map[string]interface{} {
	return map[string]interface{}{
		"id":        p.ID,
		"lat":       p.Lat,
		"lng":       p.Lng,
		"name":      p.Name,
		"image":     p.Image,
		"timestamp": p.Timestamp.Format(time.RFC3339Nano),
		"location":  p.Location,
	}
}

// buildSchema creates the GraphQL schema wired to the pin service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pinType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Pin",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"lat":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"lng":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"image":     &graphql.Field{Type: graphql.String},
			"timestamp": &graphql.Field{Type: graphql.String},
			"location":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"pins": &graphql.Field{
				Type:        graphql.NewList(pinType),
				Description: "List all pins, oldest first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pins, err := deps.Pins.ListByTime(p.Context)
					if err != nil {
						return nil, err
					}
					result := make([]map[string]interface{}, 0, len(pins))
					for i := range pins {
						result = append(result, pinToMap(&pins[i]))
					}
					return result, nil
				},
			},
			"pin": &graphql.Field{
				Type:        pinType,
				Description: "Get a pin by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pin, err := deps.Pins.Get(p.Context, p.Args["id"].(string))
					if errors.Is(err, domain.ErrPinNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return pinToMap(pin), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createPin": &graphql.Field{
				Type:        pinType,
				Description: "Drop a new pin; its location is resolved server side",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"image": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					image, _ := p.Args["image"].(string)
					req := createPinRequest{Lat: &lat, Lng: &lng, Name: p.Args["name"].(string), Image: image}
					if err := validate.Struct(req); err != nil {
						return nil, errors.New(validationMessage(err))
					}
					pin, err := deps.Pins.Create(p.Context, req.toDomain())
					if err != nil {
						return nil, err
					}
					return pinToMap(pin), nil
				},
			},
			"deletePin": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Delete a pin; false when it did not exist",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Pins.Delete(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
