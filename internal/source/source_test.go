package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/tinkerlens/internal/laravel"
)

type recordingRunner struct {
	calls   [][]string
	outputs map[string]string
	err     error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	argv := append([]string{name}, args...)
	r.calls = append(r.calls, argv)
	if r.err != nil {
		return "", r.err
	}
	return r.outputs[strings.Join(argv, " ")], nil
}

func TestDockerSource_ListFiles(t *testing.T) {
	runner := &recordingRunner{outputs: map[string]string{
		"docker exec app find app/Models -name *.php": "app/Models/User.php\n\napp/Models/Post.php\n",
	}}
	src := NewDockerSource(runner, "")

	files, err := src.ListFiles(context.Background(), "app", "app/Models", "*.php")
	require.NoError(t, err)

	assert.Equal(t, []string{"app/Models/User.php", "app/Models/Post.php"}, files)
	assert.Equal(t, [][]string{{"docker", "exec", "app", "find", "app/Models", "-name", "*.php"}}, runner.calls)
}

func TestDockerSource_ReadFile(t *testing.T) {
	runner := &recordingRunner{outputs: map[string]string{
		"podman exec app cat app/Models/User.php": "<?php class User {}",
	}}
	src := NewDockerSource(runner, "podman")

	content, err := src.ReadFile(context.Background(), "app", "app/Models/User.php")
	require.NoError(t, err)
	assert.Equal(t, "<?php class User {}", content)
}

func TestDockerSource_PropagatesErrors(t *testing.T) {
	boom := errors.New("Error response from daemon: container app is not running")
	src := NewDockerSource(&recordingRunner{err: boom}, "")

	_, err := src.ListFiles(context.Background(), "app", "app/Models", "*.php")
	assert.ErrorIs(t, err, boom)

	_, err = src.ReadFile(context.Background(), "app", "app/Models/User.php")
	assert.ErrorIs(t, err, boom)
}

func TestLocalSource_ListAndRead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/Models/User.php", "<?php class User {}")
	writeFile(t, root, "app/Models/Billing/Invoice.php", "<?php class Invoice {}")
	writeFile(t, root, "app/Models/README.md", "not a model")
	writeFile(t, root, "app/Http/Controller.php", "<?php")

	src := NewLocalSource()
	files, err := src.ListFiles(context.Background(), root, "app/Models", "*.php")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/Models/Billing/Invoice.php", "app/Models/User.php"}, files)

	content, err := src.ReadFile(context.Background(), root, files[1])
	require.NoError(t, err)
	assert.Equal(t, "<?php class User {}", content)
}

func TestLocalSource_MissingDirectory(t *testing.T) {
	_, err := NewLocalSource().ListFiles(context.Background(), t.TempDir(), "database/migrations", "*.php")
	assert.Error(t, err)
}

func TestLocalSource_WithScanner(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "database/migrations/2024_01_01_create_posts_table.php", `<?php
Schema::create('posts', function (Blueprint $table) {
    $table->string('title');
    $table->text('body');
});
`)
	writeFile(t, root, "app/Models/Post.php", `<?php
class Post extends Model
{
    public function author()
    {
        return $this->belongsTo(User::class);
    }
}
`)

	models, err := laravel.NewScanner(NewLocalSource(), laravel.Options{}).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "posts", models[0].TableName)
	assert.Equal(t, []string{"title", "body"}, models[0].Columns)
	assert.Equal(t, "User::class", models[0].Relations[0].TargetModel)
}

func TestListContainers(t *testing.T) {
	runner := &recordingRunner{outputs: map[string]string{
		"docker ps": `CONTAINER ID   IMAGE                COMMAND                  CREATED       STATUS       PORTS                  NAMES
3f2a9c1b7d4e   sail-8.3/app         "start-container"        2 hours ago   Up 2 hours   0.0.0.0:80->80/tcp     laravel.test
9b8c7d6e5f4a   mysql/mysql-server   "/entrypoint.sh mysq…"   2 hours ago   Up 2 hours   3306/tcp               laravel-mysql-1

`,
	}}

	containers, err := ListContainers(context.Background(), runner, "")
	require.NoError(t, err)
	require.Len(t, containers, 2)

	assert.Equal(t, "3f2a9c1b7d4e", containers[0].ID)
	assert.Equal(t, "sail-8.3/app", containers[0].Image)
	assert.Equal(t, "laravel.test", containers[0].Name)
	assert.Equal(t, "laravel-mysql-1", containers[1].Name)
	assert.True(t, strings.HasPrefix(containers[1].Raw, "9b8c7d6e5f4a"))
}

func TestListContainers_Empty(t *testing.T) {
	runner := &recordingRunner{outputs: map[string]string{
		"docker ps": "CONTAINER ID   IMAGE     COMMAND   CREATED   STATUS    PORTS     NAMES\n",
	}}

	containers, err := ListContainers(context.Background(), runner, "")
	require.NoError(t, err)
	assert.Empty(t, containers)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "artisan", "#!/usr/bin/env php")
	writeFile(t, root, "app/Models/User.php", "<?php class User {}")
	writeFile(t, root, "vendor/acme/pkg/composer.json", "{}")
	writeFile(t, root, "vendor/acme/pkg/src/Thing.php", "<?php")

	got, err := DetectProjectRoot(filepath.Join(root, "app", "Models", "User.php"))
	require.NoError(t, err)
	assert.Equal(t, root, got)

	got, err = DetectProjectRoot(filepath.Join(root, "vendor", "acme", "pkg", "src"))
	require.NoError(t, err)
	assert.Equal(t, root, got, "vendor packages are skipped")
}

func TestDetectProjectRoot_NotFound(t *testing.T) {
	_, err := DetectProjectRoot(t.TempDir())
	assert.Error(t, err)
}
