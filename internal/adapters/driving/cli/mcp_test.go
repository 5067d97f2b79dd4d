package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/mcp"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresRAGService(t *testing.T) {
	setupTestServices(t)
	SetServices(Services{})

	_, err := execute(t, "mcp", "serve")
	assert.ErrorIs(t, err, mcp.ErrMissingRAGService)
}
