package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
)

var (
	errEmptyPayload    = errors.New("empty json payload")
	errTrailingPayload = errors.New("trailing data after json payload")
)

// DecodePayload decodes a single JSON document of type T from the request body
// and stores it in the request context for the next handler. Bodies larger
// than bodySize are rejected with 413.
func DecodePayload[T any](bodySize int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, bodySize)
			decoder := json.NewDecoder(r.Body)
			decoder.DisallowUnknownFields()

			var decoded T
			if err := decoder.Decode(&decoded); err != nil {
				respondDecodeError(w, err)
				return
			}

			if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
				web.RespondBadRequest(w, errTrailingPayload, message.InvalidInput, nil)
				return
			}

			ctx := web.NewContextWithParams(r.Context(), decoded)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondDecodeError(w http.ResponseWriter, err error) {
	var (
		maxBytesErr *http.MaxBytesError
		typeErr     *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		web.RespondRequestEntityTooLarge(w, err, message.InvalidInput, nil)
	case errors.Is(err, io.EOF):
		web.RespondBadRequest(w, errEmptyPayload, message.InvalidInput, nil)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		details := map[string]string{typeErr.Field: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type)}
		web.RespondUnprocessableEntity(w, err, message.InvalidInput, details)
	default:
		// encoding/json has no typed error for unknown fields.
		const fieldErr = "json: unknown field "
		if fieldName, ok := strings.CutPrefix(err.Error(), fieldErr); ok {
			details := map[string]string{"field": strings.Trim(fieldName, `"`)}
			web.RespondUnprocessableEntity(w, err, message.UnknownField, details)
			return
		}

		web.RespondBadRequest(w, err, message.InvalidInput, nil)
	}
}
