package source

import (
	"context"
	"fmt"

	"github.com/doITmagic/tinkerlens/internal/laravel"
)

const DefaultDockerBinary = "docker"

// DockerSource reads project files from inside a running container. The
// scan root is the container name; paths are relative to the container's
// working directory (the Laravel project root in typical images).
type DockerSource struct {
	runner Runner
	binary string
}

var _ laravel.FileSource = (*DockerSource)(nil)

// NewDockerSource creates a source that shells out to the docker CLI
func NewDockerSource(runner Runner, binary string) *DockerSource {
	if runner == nil {
		runner = ExecRunner{}
	}
	if binary == "" {
		binary = DefaultDockerBinary
	}
	return &DockerSource{runner: runner, binary: binary}
}

// ListFiles runs `docker exec <container> find <dir> -name <pattern>`
func (s *DockerSource) ListFiles(ctx context.Context, container, dir, pattern string) ([]string, error) {
	out, err := s.runner.Run(ctx, s.binary, "exec", container, "find", dir, "-name", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s in %s: %w", dir, container, err)
	}
	return splitLines(out), nil
}

// ReadFile runs `docker exec <container> cat <path>`
func (s *DockerSource) ReadFile(ctx context.Context, container, path string) (string, error) {
	out, err := s.runner.Run(ctx, s.binary, "exec", container, "cat", path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s in %s: %w", path, container, err)
	}
	return out, nil
}
