package feedback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRating(t *testing.T) {
	for _, r := range []int{0, 6, -1, 10} {
		assert.ErrorIs(t, ValidateRating(r), ErrInvalidRating, "rating %d", r)
	}
	for r := MinRating; r <= MaxRating; r++ {
		assert.NoError(t, ValidateRating(r), "rating %d", r)
	}
}

func TestKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "feedback:1700000000123_p1", Key(at, "p1"))
}
