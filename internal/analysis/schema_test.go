package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSchema(t *testing.T) {
	s, err := ResolveSchema([]string{"WORKSITE_STATE", "x", "CASE_STATUS", "SOC_NAME"}, DefaultSchemas)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchemas[1], s)

	s, err = ResolveSchema([]string{"LCA_CASE_WORKLOC1_STATE", "STATUS", "LCA_CASE_SOC_NAME"}, DefaultSchemas)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchemas[0], s)

	// names are case-sensitive
	_, err = ResolveSchema([]string{"soc_name", "case_status", "worksite_state"}, DefaultSchemas)
	var se *SchemaResolutionError
	require.True(t, errors.As(err, &se))

	_, err = ResolveSchema(nil, DefaultSchemas)
	require.True(t, errors.As(err, &se))
	assert.Empty(t, se.Header)
}
