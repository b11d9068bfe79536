package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/redpanda-data/benthos/v4/public/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerLayout = "../../testdata/layouts/header.yaml"

const pairLayoutContent = `
meta:
  id: pair
seq:
  - id: a
    type: u8
  - id: b
    type: u4
`

func writeTempLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newLayoutProcessor(t *testing.T, yamlConf string) *LayoutProcessor {
	t.Helper()
	pConf, err := layoutProcessorConfig().ParseYAML(yamlConf, nil)
	require.NoError(t, err)
	p, err := newLayoutProcessorFromConfig(pConf, service.MockResources())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestLayoutProcessor_Decode(t *testing.T) {
	ctx := context.Background()
	p := newLayoutProcessor(t, fmt.Sprintf("layout_path: %s", headerLayout))

	data, err := os.ReadFile("../../testdata/layouts/header.bin")
	require.NoError(t, err)

	in := service.NewMessage(data)
	in.MetaSet("source", "sensor-1")
	batch, err := p.Process(ctx, in)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.NoError(t, batch[0].GetError())

	structured, err := batch[0].AsStructured()
	require.NoError(t, err)
	rec := structured.(map[string]any)
	assert.Equal(t, int64(2), rec["version"])
	assert.Equal(t, int64(2), rec["count"])
	assert.Equal(t, []any{int64(-2), int64(3)}, rec["items"])
	assert.Equal(t, []byte{0xca, 0xfe}, rec["magic"])
	assert.Equal(t, int64(4), rec["total"])

	id, ok := batch[0].MetaGet("combo_layout")
	require.True(t, ok)
	assert.Equal(t, "header", id)
	src, ok := batch[0].MetaGet("source")
	require.True(t, ok)
	assert.Equal(t, "sensor-1", src)
}

func TestLayoutProcessor_Split(t *testing.T) {
	ctx := context.Background()
	path := writeTempLayout(t, pairLayoutContent)
	p := newLayoutProcessor(t, fmt.Sprintf("layout_path: %s\nsplit: true", path))

	batch, err := p.Process(ctx, service.NewMessage([]byte{0x12, 0x34, 0x56}))
	require.NoError(t, err)
	require.Len(t, batch, 2)

	want := []map[string]any{
		{"a": int64(0x12), "b": int64(3)},
		{"a": int64(0x45), "b": int64(6)},
	}
	for i, msg := range batch {
		structured, err := msg.AsStructured()
		require.NoError(t, err)
		assert.Equal(t, want[i], structured)
	}
}

func TestLayoutProcessor_Errors(t *testing.T) {
	ctx := context.Background()
	path := writeTempLayout(t, pairLayoutContent)

	t.Run("EmptyMessage", func(t *testing.T) {
		p := newLayoutProcessor(t, fmt.Sprintf("layout_path: %s", path))
		batch, err := p.Process(ctx, service.NewMessage(nil))
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.ErrorContains(t, batch[0].GetError(), "empty binary data provided")
	})

	t.Run("ShortData", func(t *testing.T) {
		p := newLayoutProcessor(t, fmt.Sprintf("layout_path: %s", path))
		batch, err := p.Process(ctx, service.NewMessage([]byte{0x12}))
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.ErrorContains(t, batch[0].GetError(), `field "b"`)

		raw, err := batch[0].AsBytes()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x12}, raw)
	})

	t.Run("MissingLayout", func(t *testing.T) {
		pConf, err := layoutProcessorConfig().ParseYAML("layout_path: does/not/exist.yaml", nil)
		require.NoError(t, err)
		_, err = newLayoutProcessorFromConfig(pConf, service.MockResources())
		assert.ErrorContains(t, err, "invalid layout")
	})

	t.Run("InvalidLayout", func(t *testing.T) {
		bad := writeTempLayout(t, "meta: {id: bad}\nseq: [{id: a, type: f32}]")
		pConf, err := layoutProcessorConfig().ParseYAML(fmt.Sprintf("layout_path: %s", bad), nil)
		require.NoError(t, err)
		_, err = newLayoutProcessorFromConfig(pConf, service.MockResources())
		assert.ErrorContains(t, err, `unknown type "f32"`)
	})
}

func TestJSONSafe(t *testing.T) {
	huge, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	require.True(t, ok)

	got := jsonSafe(map[string]any{
		"u":    uint32(7),
		"s":    int32(-7),
		"big":  big.NewInt(-9),
		"huge": huge,
		"list": []any{uint32(1)},
		"raw":  []byte{1},
	})
	assert.Equal(t, map[string]any{
		"u":    int64(7),
		"s":    int64(-7),
		"big":  int64(-9),
		"huge": "340282366920938463463374607431768211455",
		"list": []any{int64(1)},
		"raw":  []byte{1},
	}, got)
}

func TestMatchProcessor(t *testing.T) {
	ctx := context.Background()
	newMatch := func(t *testing.T, conf string) *MatchProcessor {
		t.Helper()
		pConf, err := matchProcessorConfig().ParseYAML(conf, nil)
		require.NoError(t, err)
		p, err := newMatchProcessorFromConfig(pConf, service.MockResources())
		require.NoError(t, err)
		return p
	}

	t.Run("Regexp", func(t *testing.T) {
		p := newMatch(t, "pattern: '\\d+'\nmode: regexp")
		batch, err := p.Process(ctx, service.NewMessage([]byte("123abc")))
		require.NoError(t, err)
		require.Len(t, batch, 1)
		require.NoError(t, batch[0].GetError())

		m, ok := batch[0].MetaGet("combo_match")
		require.True(t, ok)
		assert.Equal(t, "123", m)
		idx, ok := batch[0].MetaGetMut("combo_match_index")
		require.True(t, ok)
		assert.Equal(t, 3, idx)
	})

	t.Run("FoldCustomKey", func(t *testing.T) {
		p := newMatch(t, "pattern: get\nmode: fold\nmeta_key: verb")
		batch, err := p.Process(ctx, service.NewMessage([]byte("GET /index.html")))
		require.NoError(t, err)
		m, ok := batch[0].MetaGet("verb")
		require.True(t, ok)
		assert.Equal(t, "GET", m)
	})

	t.Run("Miss", func(t *testing.T) {
		p := newMatch(t, "pattern: abc")
		batch, err := p.Process(ctx, service.NewMessage([]byte("abd")))
		require.NoError(t, err)
		assert.EqualError(t, batch[0].GetError(), "match: Tried to match 'abc', but got 'abd' @ index 0")
	})

	t.Run("BadPattern", func(t *testing.T) {
		pConf, err := matchProcessorConfig().ParseYAML("pattern: '('\nmode: regexp", nil)
		require.NoError(t, err)
		_, err = newMatchProcessorFromConfig(pConf, service.MockResources())
		assert.ErrorContains(t, err, "invalid pattern")
	})
}
