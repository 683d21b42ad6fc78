package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://six-cities.local/schemas/"

var (
	createOfferSchema   = mustCompileSchema("create-offer.json", offerSchema(true))
	updateOfferSchema   = mustCompileSchema("update-offer.json", offerSchema(false))
	createCommentSchema = mustCompileSchema("create-comment.json", commentSchema())
	registerSchema      = mustCompileSchema("register.json", registerUserSchema())
	loginSchema         = mustCompileSchema("login.json", loginUserSchema())
	avatarSchema        = mustCompileSchema("avatar.json", avatarUpdateSchema())
)

func offerSchema(create bool) map[string]interface{} {
	cities := make([]string, 0, len(models.Cities))
	for _, c := range models.Cities {
		cities = append(cities, string(c))
	}
	housing := make([]string, 0, len(models.HousingTypes))
	for _, h := range models.HousingTypes {
		housing = append(housing, string(h))
	}
	amenities := make([]string, 0, len(models.Amenities))
	for _, a := range models.Amenities {
		amenities = append(amenities, string(a))
	}

	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title":       map[string]interface{}{"type": "string", "minLength": 10, "maxLength": 100},
			"description": map[string]interface{}{"type": "string", "minLength": 20, "maxLength": 1024},
			"openDate":    map[string]interface{}{"type": "string", "format": "date-time"},
			"city":        map[string]interface{}{"enum": cities},
			"preview":     map[string]interface{}{"type": "string", "minLength": 1},
			"images": map[string]interface{}{
				"type":     "array",
				"items":    map[string]interface{}{"type": "string", "minLength": 1},
				"minItems": models.OfferImagesCount,
				"maxItems": models.OfferImagesCount,
			},
			"isPremium":   map[string]interface{}{"type": "boolean"},
			"housingType": map[string]interface{}{"enum": housing},
			"roomsCount":  map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 8},
			"guestsCount": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 10},
			"price":       map[string]interface{}{"type": "integer", "minimum": models.MinPrice, "maximum": models.MaxPrice},
			"amenities": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"enum": amenities},
				"uniqueItems": true,
			},
			"coordinates": map[string]interface{}{
				"type":     "object",
				"required": []string{"latitude", "longitude"},
				"properties": map[string]interface{}{
					"latitude":  map[string]interface{}{"type": "number", "minimum": -90, "maximum": 90},
					"longitude": map[string]interface{}{"type": "number", "minimum": -180, "maximum": 180},
				},
			},
		},
		"additionalProperties": false,
	}
	if create {
		schema["required"] = []string{
			"title", "description", "city", "preview", "images", "housingType",
			"roomsCount", "guestsCount", "price", "amenities", "coordinates",
		}
	} else {
		schema["minProperties"] = 1
	}
	return schema
}

func commentSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"text", "rating"},
		"properties": map[string]interface{}{
			"text":   map[string]interface{}{"type": "string", "minLength": models.MinCommentLength, "maxLength": models.MaxCommentLength},
			"rating": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": models.MaxRating},
		},
		"additionalProperties": false,
	}
}

func registerUserSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"name", "email", "password"},
		"properties": map[string]interface{}{
			"name":     map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 15},
			"email":    map[string]interface{}{"type": "string", "format": "email"},
			"avatar":   map[string]interface{}{"type": "string"},
			"password": map[string]interface{}{"type": "string", "minLength": 6, "maxLength": 12},
			"type":     map[string]interface{}{"enum": []string{string(models.UserRegular), string(models.UserPro)}},
		},
		"additionalProperties": false,
	}
}

func loginUserSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"email", "password"},
		"properties": map[string]interface{}{
			"email":    map[string]interface{}{"type": "string", "format": "email"},
			"password": map[string]interface{}{"type": "string", "minLength": 1},
		},
	}
}

func avatarUpdateSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"avatar"},
		"properties": map[string]interface{}{
			"avatar": map[string]interface{}{"type": "string", "pattern": `\.(jpe?g|png)$`},
		},
	}
}

func mustCompileSchema(name string, doc map[string]interface{}) *jsonschema.Schema {
	name = schemaBaseURL + name
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// validateBody checks a raw JSON body against schema before it is decoded into a request type.
func validateBody(schema *jsonschema.Schema, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return nil
}
