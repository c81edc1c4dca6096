package tools

import (
	"context"

	"github.com/doITmagic/tinkerlens/internal/source"
)

// ListContainersTool lists running docker containers
type ListContainersTool struct {
	runner source.Runner
	binary string
}

// NewListContainersTool creates the container listing tool
func NewListContainersTool(runner source.Runner, binary string) *ListContainersTool {
	return &ListContainersTool{runner: runner, binary: binary}
}

func (t *ListContainersTool) Name() string {
	return "list_containers"
}

func (t *ListContainersTool) Description() string {
	return "List running docker containers (docker ps). Use it to find the container name of the Laravel application to scan."
}

func (t *ListContainersTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	containers, err := source.ListContainers(ctx, t.runner, t.binary)
	if err != nil {
		return "", err
	}
	return toJSON(map[string][]source.Container{"containers": containers})
}
