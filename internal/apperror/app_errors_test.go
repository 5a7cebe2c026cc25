package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	t.Run("Wrapped sentinels keep their code", func(t *testing.T) {
		err := fmt.Errorf("failed to apply BuildRoad: %w", fmt.Errorf("%w: road at 0,0,E", ErrIllegalPlacement))

		assert.Equal(t, "illegal_placement", Reason(err))
	})

	t.Run("Unknown errors are internal", func(t *testing.T) {
		assert.Equal(t, "internal", Reason(errors.New("boom")))
	})
}
