package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Rrens/nl2sql/internal/api/response"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// maxBodyBytes bounds request bodies; table schemas can be large
const maxBodyBytes = 4 << 20

// decodeJSON decodes and validates the request body, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make(map[string]string)
			for _, e := range validationErrors {
				switch e.Tag() {
				case "required":
					fields[e.Field()] = "is required"
				case "max":
					fields[e.Field()] = fmt.Sprintf("must be at most %s", e.Param())
				case "min":
					fields[e.Field()] = fmt.Sprintf("must be at least %s", e.Param())
				default:
					fields[e.Field()] = "is invalid"
				}
			}
			response.BadRequest(w, fields)
			return false
		}
		response.BadRequest(w, err.Error())
		return false
	}

	return true
}
