package hashutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolgate/internal/domain"
)

func TestToolETag(t *testing.T) {
	a := []domain.ToolDescriptor{{Name: "a", Description: "first"}, {Name: "b"}}
	b := []domain.ToolDescriptor{{Name: "a", Description: "first"}, {Name: "b"}}

	tag := ToolETag(zap.NewNop(), a)
	require.Len(t, tag, 64)
	assert.Equal(t, tag, ToolETag(nil, b))

	b[0].Description = "changed"
	assert.NotEqual(t, tag, ToolETag(nil, b))
	assert.NotEqual(t, ToolETag(nil, nil), tag)
}

func TestToolETag_UnencodableToolFallsBackToName(t *testing.T) {
	tools := []domain.ToolDescriptor{{Name: "bad", Metadata: map[string]any{"n": math.NaN()}}}
	assert.Len(t, ToolETag(zap.NewNop(), tools), 64)
}
