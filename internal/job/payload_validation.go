package job

import (
	"encoding/json"
	"maps"
	"net/http"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/joshu-sajeev/pingcrm/common"
	"github.com/joshu-sajeev/pingcrm/internal/dto"
	"github.com/joshu-sajeev/pingcrm/middleware"
)

var validate = validator.New()

// payloadValidators lists the kinds accepted over HTTP.
var payloadValidators = map[string]func(json.RawMessage) error{
	dto.MyJob{}.Kind():   validatePayload[dto.MyJob],
	dto.EchoJob{}.Kind(): validatePayload[dto.EchoJob],
}

func allowedKinds() []string {
	return slices.Sorted(maps.Keys(payloadValidators))
}

func validatePayload[T any](raw json.RawMessage) error {
	var payload T

	if err := json.Unmarshal(raw, &payload); err != nil {
		return common.APIError{
			Status:  http.StatusBadRequest,
			Message: "invalid payload format",
		}
	}

	if err := validate.Struct(payload); err != nil {
		return common.APIError{
			Status:  http.StatusBadRequest,
			Message: "payload validation failed",
			Fields:  middleware.FormatValidationErrors(err),
		}
	}

	return nil
}
