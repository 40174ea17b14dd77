package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "graphnav-backend/pkg/errors"
)

func TestNewNode_NameLengthCountsCharacters(t *testing.T) {
	// 255 three-byte characters: within the limit even though the byte
	// length is far past it.
	name := strings.Repeat("グ", MaxNameLength)

	node, err := NewNode(name, "")

	require.NoError(t, err)
	assert.Equal(t, name, node.Name)
}

func TestNewNode_NameTooLong(t *testing.T) {
	_, err := NewNode(strings.Repeat("グ", MaxNameLength+1), "")

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewNode_EmptyNameRejected(t *testing.T) {
	_, err := NewNode("   ", "")

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNode_Rename(t *testing.T) {
	node, err := NewNode("alpha", "")
	require.NoError(t, err)

	require.NoError(t, node.Rename("beta"))
	assert.Equal(t, "beta", node.Name)

	assert.True(t, pkgerrors.IsValidation(node.Rename("")))
	assert.True(t, pkgerrors.IsValidation(node.Rename(strings.Repeat("グ", MaxNameLength+1))))
}

func TestNewEdge_LabelLengthCountsCharacters(t *testing.T) {
	edge, err := NewEdge(1, 2, strings.Repeat("é", MaxNameLength))

	require.NoError(t, err)
	assert.Equal(t, MaxNameLength, len([]rune(edge.Label)))

	_, err = NewEdge(1, 2, strings.Repeat("é", MaxNameLength+1))
	assert.True(t, pkgerrors.IsValidation(err))
}
