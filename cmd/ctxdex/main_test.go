package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/config"
	"github.com/kailas-cloud/ctxdex/internal/domain/exchange"
)

const testCorpus = `[
  {"id": "company_profile", "title": "Company Profile", "content": "TechCorp was founded in 2010 in San Francisco."},
  {"id": "products", "title": "Products", "content": "TechCorp offers TechAssist and DataInsight."}
]`

// writeTestConfig writes a corpus and a config using the given provider and
// cache settings. Returns the config path.
func writeTestConfig(t *testing.T, provider, cacheYAML string) string {
	t.Helper()
	dir := t.TempDir()

	corpusPath := filepath.Join(dir, "company_data.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0o600))

	cfg := `
corpus:
  paths: ["` + corpusPath + `"]
embedding:
  provider: ` + provider + `
` + cacheYAML + `
logging:
  level: error
`
	cfgPath := filepath.Join(dir, "ctxdex.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCmd_EmbeddingMode(t *testing.T) {
	cfgPath := writeTestConfig(t, "local", "")

	out, err := run(t, "--config", cfgPath, "query", "-q", "When was TechCorp founded?")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "COMPANY INFORMATION:\n\n--- Company Profile ---\n"), out)
	assert.Contains(t, out, "2010")
}

func TestQueryCmd_KeywordModeJSON(t *testing.T) {
	cfgPath := writeTestConfig(t, "none", "")

	out, err := run(t, "--config", cfgPath, "query", "-q", "datainsight", "--json")
	require.NoError(t, err)

	var resp exchange.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "datainsight", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Products", resp.Results[0].Title)
}

func TestQueryCmd_TopK(t *testing.T) {
	cfgPath := writeTestConfig(t, "local", "")

	out, err := run(t, "--config", cfgPath, "query", "-q", "TechCorp", "--top-k", "1", "--json")
	require.NoError(t, err)

	var resp exchange.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.TotalResults)
}

func TestQueryCmd_RequiresQuery(t *testing.T) {
	cfgPath := writeTestConfig(t, "none", "")

	_, err := run(t, "--config", cfgPath, "query")
	require.Error(t, err)
}

func TestQueryCmd_BadConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "query", "-q", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestWarmCmd_FillsBoltCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.db")
	cfgPath := writeTestConfig(t, "local", "cache:\n  driver: bolt\n  path: "+cachePath)

	_, err := run(t, "--config", cfgPath, "warm")
	require.NoError(t, err)

	bdb, err := bbolt.Open(cachePath, 0o600, &bbolt.Options{ReadOnly: true})
	require.NoError(t, err)
	defer bdb.Close()

	n := 0
	require.NoError(t, bdb.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("kv")).ForEach(func(k, _ []byte) error {
			if strings.HasPrefix(string(k), "ctxdex:emb_cache:") {
				n++
			}
			return nil
		})
	}))
	assert.Equal(t, 2, n)
}

func TestWarmCmd_RequiresCache(t *testing.T) {
	cfgPath := writeTestConfig(t, "local", "")

	_, err := run(t, "--config", cfgPath, "warm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache driver")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ctxdex dev"), out)
}

func TestBuildEmbedders(t *testing.T) {
	cfg := config.Config{}
	cfg.ApplyDefaults()

	t.Run("none", func(t *testing.T) {
		e := cfg.Embedding
		e.Provider = config.ProviderNone
		doc, query := buildEmbedders(e, "p:", nil, zap.NewNop())
		assert.Nil(t, doc)
		assert.Nil(t, query)
	})

	t.Run("instructions are applied per side", func(t *testing.T) {
		e := cfg.Embedding
		e.Provider = config.ProviderLocal
		e.DocumentInstruction = "passage: "
		e.QueryInstruction = "query: "
		doc, query := buildEmbedders(e, "p:", nil, zap.NewNop())

		dv, err := doc.Embed(t.Context(), "TechCorp")
		require.NoError(t, err)
		qv, err := query.Embed(t.Context(), "TechCorp")
		require.NoError(t, err)
		assert.NotEqual(t, dv.Embedding, qv.Embedding)
	})
}
