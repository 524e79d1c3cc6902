package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"cafe-ledger/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   domain.Kind
		msg    string
		field  string
	}{
		{"not found", domain.ErrCafeNotFound, 404, domain.KindNotFound, "cafe: resource not found", ""},
		{"validation", domain.Invalid("items", "at least one item is required"), 400, domain.KindInvalidInput, "at least one item is required", "items"},
		{"insufficient", domain.ErrInsufficientPoints, 422, domain.KindInsufficientPoints, "insufficient points", ""},
		{"already used", domain.ErrAlreadyUsed, 409, domain.KindAlreadyUsed, "voucher already used", ""},
		{"expired", domain.ErrExpired, 410, domain.KindExpired, "voucher expired", ""},
		{"conflict", domain.ErrDuplicateSlug, 409, domain.KindConflict, "slug already taken: conflict", ""},
		{"internal hides detail", fmt.Errorf("dial tcp 10.0.0.5:3306: %w", errors.New("refused")), 500, domain.KindInternal, "internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return FromError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var got Response
			require.NoError(t, json.Unmarshal(body, &got))
			assert.False(t, got.Success)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.msg, got.Error)
			assert.Equal(t, tt.field, got.Field)
		})
	}
}
