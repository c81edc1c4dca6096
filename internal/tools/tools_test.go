package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/tinkerlens/internal/laravel"
	"github.com/doITmagic/tinkerlens/internal/output"
	"github.com/doITmagic/tinkerlens/internal/scancache"
)

type fakeScanner struct {
	calls int
}

func (f *fakeScanner) Scan(_ context.Context, root string) ([]laravel.ModelDescriptor, error) {
	f.calls++
	return []laravel.ModelDescriptor{{
		Name:      "Student",
		TableName: "students",
		Columns:   []string{"id", "name"},
		Relations: []laravel.Relation{{Method: "school", Kind: laravel.BelongsTo, TargetModel: "School"}},
		Methods:   []string{"graduate"},
	}}, nil
}

type fakeRunner struct {
	out string
	err error
}

func (r fakeRunner) Run(context.Context, string, ...string) (string, error) {
	return r.out, r.err
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	return m
}

func TestScanModelsTool_JSON(t *testing.T) {
	scanner := &fakeScanner{}
	cache := scancache.New(scanner, scancache.Options{})
	tool := NewScanModelsTool(cache, "laravel.test")

	out, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)

	resp := decode(t, out)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["fromCache"])
	assert.NotZero(t, resp["timestamp"])

	data := resp["data"].([]any)
	require.Len(t, data, 1)
	model := data[0].(map[string]any)
	assert.Equal(t, "Student", model["name"])
	assert.Equal(t, "students", model["tableName"])
	rel := model["relations"].([]any)[0].(map[string]any)
	assert.Equal(t, "belongsTo", rel["type"])
	assert.Equal(t, "School", rel["model"])

	out, err = tool.Execute(context.Background(), map[string]interface{}{"use_cache": true})
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, out)["fromCache"])
	assert.Equal(t, 1, scanner.calls)
}

func TestScanModelsTool_MissingRoot(t *testing.T) {
	tool := NewScanModelsTool(scancache.New(&fakeScanner{}, scancache.Options{}), "")

	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, "root not configured", err.Error())
}

func TestScanModelsTool_Markdown(t *testing.T) {
	tool := NewScanModelsTool(scancache.New(&fakeScanner{}, scancache.Options{}), "")

	out, err := tool.Execute(context.Background(), map[string]interface{}{
		"root":          "/srv/school",
		"output_format": "markdown",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "# Laravel models in /srv/school")
	assert.Contains(t, out, "## Student (`students`)")
	assert.Contains(t, out, "**Columns:** id, name")
	assert.Contains(t, out, "- BelongsTo: school → School")
	assert.Contains(t, out, "**Methods:** graduate")
}

func TestScanCacheTools(t *testing.T) {
	cache := scancache.New(&fakeScanner{}, scancache.Options{})
	check := NewCheckScanCacheTool(cache)
	clearTool := NewClearScanTool(cache)

	out, err := check.Execute(context.Background(), nil)
	require.NoError(t, err)
	status := decode(t, out)
	assert.Equal(t, false, status["hasCachedData"])
	assert.Nil(t, status["timestamp"])

	_, err = cache.Scan(context.Background(), "app")
	require.NoError(t, err)

	out, err = check.Execute(context.Background(), nil)
	require.NoError(t, err)
	status = decode(t, out)
	assert.Equal(t, true, status["hasCachedData"])
	assert.NotNil(t, status["timestamp"])

	out, err = clearTool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, out)["success"])
	assert.False(t, cache.Status().HasCachedData)
}

func TestSplitOutputTool(t *testing.T) {
	tool := NewSplitOutputTool()

	raw := "PHP Deprecated:  something in /vendor/x.php\n" +
		`{"result":[{"id":1}],"queries":[{"query":"select * from users","bindings":[],"time":0.42}]}`
	out, err := tool.Execute(context.Background(), map[string]interface{}{"output": raw})
	require.NoError(t, err)

	resp := decode(t, out)
	assert.Equal(t, "PHP Deprecated:  something in /vendor/x.php", resp["meta"])
	queries := resp["queries"].([]any)
	require.Len(t, queries, 1)
	assert.Equal(t, "select * from users", queries[0].(map[string]any)["query"])

	out, err = tool.Execute(context.Background(), map[string]interface{}{"output": `{"a":1}`})
	require.NoError(t, err)
	resp = decode(t, out)
	assert.Equal(t, "", resp["meta"])
	assert.NotContains(t, resp, "queries")
}

func TestSplitOutputTool_Errors(t *testing.T) {
	tool := NewSplitOutputTool()

	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	assert.Error(t, err)

	_, err = tool.Execute(context.Background(), map[string]interface{}{"output": "no json here"})
	assert.ErrorIs(t, err, output.ErrNoJSONFound)

	_, err = tool.Execute(context.Background(), map[string]interface{}{"output": "x {bad"})
	var invalid *output.InvalidJSONError
	assert.ErrorAs(t, err, &invalid)
}

func TestListContainersTool(t *testing.T) {
	tool := NewListContainersTool(fakeRunner{out: "CONTAINER ID   IMAGE   COMMAND   CREATED   STATUS   PORTS   NAMES\n" +
		"abc123   sail-8.3/app   \"start\"   1 hour ago   Up 1 hour   80/tcp   laravel.test\n"}, "")

	out, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"name": "laravel.test"`))

	failing := NewListContainersTool(fakeRunner{err: errors.New("daemon down")}, "")
	_, err = failing.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestBoolArg(t *testing.T) {
	v, ok := boolArg(map[string]interface{}{"x": "TRUE"}, "x")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = boolArg(map[string]interface{}{"x": float64(1)}, "x")
	assert.False(t, ok)

	_, ok = boolArg(map[string]interface{}{}, "x")
	assert.False(t, ok)
}
