package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/agrorec/config"
	_ "github.com/rushteam/agrorec/config/builders"
	"github.com/rushteam/agrorec/pipeline"
)

func TestSupportedTypes(t *testing.T) {
	types := config.SupportedTypes()
	for _, want := range []string{"recall.catalog", "filter", "rank.hybrid", "rerank.topn", "rerank.diversity"} {
		assert.Contains(t, types, want)
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: ok
  nodes:
    - type: recall.catalog
    - type: filter
    - type: rank.hybrid
    - type: rerank.topn
`))
	require.NoError(t, err)
	assert.NoError(t, config.ValidatePipelineConfig(cfg))

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "rank.dnn"})
	err = config.ValidatePipelineConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank.dnn")

	assert.NoError(t, config.ValidatePipelineConfig(nil))
}

func TestDefaultFactory_RequiresCatalog(t *testing.T) {
	f := config.DefaultFactory(config.Deps{})
	_, err := f.Build("recall.catalog", nil)
	assert.Error(t, err)
	_, err = f.Build("rank.hybrid", nil)
	assert.Error(t, err)

	n, err := f.Build("rerank.topn", map[string]any{"n": 3})
	require.NoError(t, err)
	assert.Equal(t, pipeline.KindReRank, n.Kind())
}
