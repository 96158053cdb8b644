package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Keta808/backendTesis/internal/model"
)

func TestCanTransition(t *testing.T) {
	terminals := []model.Status{model.StatusCancelada, model.StatusFinalizada, model.StatusRealizada}

	for _, to := range terminals {
		assert.True(t, CanTransition(model.StatusActiva, to), "Activa -> %s", to)
	}

	// Terminal states admit nothing, not even themselves.
	all := append([]model.Status{model.StatusActiva}, terminals...)
	for _, from := range terminals {
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.False(t, CanTransition(model.StatusActiva, model.StatusActiva))
	assert.False(t, CanTransition("Pendiente", model.StatusCancelada))
}
