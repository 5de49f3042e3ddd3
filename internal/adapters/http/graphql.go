package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL read surface over the path store.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	pathType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Path",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.PathRecord).ID, nil
				},
			},
			"type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.PathRecord).Type, nil
				},
			},
			"points": &graphql.Field{
				Type: graphql.NewList(pointType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return []domain.GeoPoint(p.Source.(domain.PathRecord).Points), nil
				},
			},
			"length_m": &graphql.Field{
				Type:        graphql.Float,
				Description: "Total path length in meters",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return geospatial.PathLength(p.Source.(domain.PathRecord).Points), nil
				},
			},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PathStats",
		Fields: graphql.Fields{
			"count":          &graphql.Field{Type: graphql.Int},
			"total_length_m": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"paths": &graphql.Field{
				Type:        graphql.NewList(pathType),
				Description: "List all saved paths in insertion order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Store.List(), nil
				},
			},
			"path": &graphql.Field{
				Type: pathType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rec, err := deps.Store.Get(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return rec, nil
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Aggregate statistics over the path collection",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					records := deps.Store.List()
					var total float64
					for _, rec := range records {
						total += geospatial.PathLength(rec.Points)
					}
					return map[string]interface{}{
						"count":          len(records),
						"total_length_m": total,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// GraphQLHandler serves POST /graphql.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)

	return func(c *fiber.Ctx) error {
		if err != nil {
			return errInternal(c, "schema init failed: "+err.Error())
		}

		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "body must be a GraphQL request")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        c.Context(),
		})
		return c.JSON(result)
	}
}
