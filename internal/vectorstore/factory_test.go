package vectorstore_test

import (
	"testing"

	"github.com/fyrsmithlabs/tutord/internal/config"
	"github.com/fyrsmithlabs/tutord/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStore_Chromem(t *testing.T) {
	cfg := config.Default()
	cfg.VectorStore.Chromem.Path = t.TempDir()

	store, err := vectorstore.NewStore(cfg, &testEmbedder{vectorSize: 384}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &vectorstore.ChromemStore{}, store)
}

func TestNewStore_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.VectorStore.Provider = "pinecone"

	_, err := vectorstore.NewStore(cfg, &testEmbedder{vectorSize: 384}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported vectorstore provider")
}
