package source

import (
	"context"
	"fmt"
	"strings"
)

// Container is one row of `docker ps` output
type Container struct {
	ID    string `json:"id"`
	Image string `json:"image"`
	Name  string `json:"name"`
	Raw   string `json:"raw"`
}

// ListContainers returns the running containers reported by `docker ps`.
// The header row and blank lines are dropped.
func ListContainers(ctx context.Context, runner Runner, binary string) ([]Container, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	if binary == "" {
		binary = DefaultDockerBinary
	}

	out, err := runner.Run(ctx, binary, "ps")
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	containers := []Container{}
	for _, line := range splitLines(out) {
		if strings.HasPrefix(line, "CONTAINER ID") {
			continue
		}
		containers = append(containers, parseContainerLine(line))
	}
	return containers, nil
}

// parseContainerLine reads the ID, image and trailing NAMES column of a
// `docker ps` row. Columns are separated by runs of two or more spaces.
func parseContainerLine(line string) Container {
	c := Container{Raw: line}

	var cols []string
	for _, col := range strings.Split(line, "  ") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}

	if len(cols) > 0 {
		fields := strings.Fields(cols[0])
		c.ID = fields[0]
		if len(fields) > 1 {
			c.Image = fields[1]
		}
	}
	if len(cols) > 1 && c.Image == "" {
		c.Image = cols[1]
	}
	if len(cols) > 1 {
		c.Name = cols[len(cols)-1]
	}
	return c
}
