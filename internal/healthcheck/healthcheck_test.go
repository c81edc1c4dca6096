package healthcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/tinkerlens/internal/config"
)

type scriptedRunner struct {
	outputs map[string]string
	errs    map[string]error
}

func (r scriptedRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	if err, ok := r.errs[key]; ok {
		return "", err
	}
	return r.outputs[key], nil
}

func TestCheckDocker(t *testing.T) {
	ok := CheckDocker(scriptedRunner{outputs: map[string]string{
		"docker version --format {{.Server.Version}}": "27.1.1\n",
	}}, "")
	assert.Equal(t, "ok", ok.Status)
	assert.Contains(t, ok.Message, "27.1.1")

	failed := CheckDocker(scriptedRunner{errs: map[string]error{
		"docker version --format {{.Server.Version}}": errors.New("Cannot connect to the Docker daemon"),
	}}, "")
	assert.Equal(t, "error", failed.Status)
	assert.Error(t, failed.Error)
}

func TestCheckContainer(t *testing.T) {
	runner := scriptedRunner{
		outputs: map[string]string{
			"docker inspect -f {{.State.Running}} laravel.test": "true\n",
			"docker inspect -f {{.State.Running}} stopped":      "false\n",
		},
		errs: map[string]error{
			"docker inspect -f {{.State.Running}} ghost": errors.New("No such object: ghost"),
		},
	}

	assert.Equal(t, "ok", CheckContainer(runner, "", "laravel.test").Status)
	assert.Equal(t, "error", CheckContainer(runner, "", "stopped").Status)
	assert.Equal(t, "error", CheckContainer(runner, "", "ghost").Status)
	assert.Equal(t, "error", CheckContainer(runner, "", "").Status)
}

func TestCheckProjectRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "artisan")
	require.NoError(t, os.WriteFile(file, []byte("#!/usr/bin/env php"), 0o755))

	assert.Equal(t, "ok", CheckProjectRoot(dir).Status)
	assert.Equal(t, "error", CheckProjectRoot(file).Status)
	assert.Equal(t, "error", CheckProjectRoot(filepath.Join(dir, "missing")).Status)
	assert.Equal(t, "error", CheckProjectRoot("").Status)
}

func TestCheckAllFollowsDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.ContainerName = "laravel.test"
	runner := scriptedRunner{outputs: map[string]string{
		"docker version --format {{.Server.Version}}":       "27.1.1",
		"docker inspect -f {{.State.Running}} laravel.test": "true",
	}}

	results := CheckAll(cfg, runner)
	require.Len(t, results, 2)
	assert.Equal(t, "Docker", results[0].Service)
	assert.Equal(t, "Container", results[1].Service)
	assert.Empty(t, GetRemediation(results))

	cfg.Source.Driver = config.DriverLocal
	cfg.Source.ProjectRoot = t.TempDir()
	results = CheckAll(cfg, runner)
	require.Len(t, results, 1)
	assert.Equal(t, "Project", results[0].Service)
}

func TestFormatAndRemediation(t *testing.T) {
	results := []CheckResult{
		{Service: "Docker", Status: "ok", Message: "docker daemon 27.1.1"},
		{Service: "Container", Status: "error", Message: "Container app is not running"},
	}

	out := FormatResults(results)
	assert.Contains(t, out, "✓ Docker: docker daemon 27.1.1")
	assert.Contains(t, out, "✗ Container: Container app is not running")

	fix := GetRemediation(results)
	assert.Contains(t, fix, "Container is not accessible")
	assert.Contains(t, fix, "TINKER_CONTAINER")
	assert.NotContains(t, fix, "Docker is not accessible")
}
