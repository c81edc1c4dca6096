package healthcheck

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/doITmagic/tinkerlens/internal/config"
	"github.com/doITmagic/tinkerlens/internal/source"
)

const checkTimeout = 5 * time.Second

// CheckResult represents the result of a health check
type CheckResult struct {
	Service string
	Status  string
	Message string
	Error   error
}

// CheckDocker verifies the docker CLI can reach a daemon
func CheckDocker(runner source.Runner, binary string) CheckResult {
	result := CheckResult{
		Service: "Docker",
		Status:  "unknown",
	}

	if binary == "" {
		binary = source.DefaultDockerBinary
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	out, err := runner.Run(ctx, binary, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		result.Status = "error"
		result.Error = err
		result.Message = fmt.Sprintf("Cannot run %s version", binary)
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%s daemon %s", binary, strings.TrimSpace(out))
	return result
}

// CheckContainer verifies the named container exists and is running
func CheckContainer(runner source.Runner, binary, name string) CheckResult {
	result := CheckResult{
		Service: "Container",
		Status:  "unknown",
	}

	if name == "" {
		result.Status = "error"
		result.Message = "No container configured (source.container_name / TINKER_CONTAINER)"
		return result
	}
	if binary == "" {
		binary = source.DefaultDockerBinary
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	out, err := runner.Run(ctx, binary, "inspect", "-f", "{{.State.Running}}", name)
	if err != nil {
		result.Status = "error"
		result.Error = err
		result.Message = fmt.Sprintf("Container %s not found", name)
		return result
	}

	if strings.TrimSpace(out) == "true" {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Container %s is running", name)
	} else {
		result.Status = "error"
		result.Message = fmt.Sprintf("Container %s is not running", name)
	}

	return result
}

// CheckProjectRoot verifies a local project directory exists
func CheckProjectRoot(root string) CheckResult {
	result := CheckResult{
		Service: "Project",
		Status:  "unknown",
	}

	if root == "" {
		result.Status = "error"
		result.Message = "No project root configured (source.project_root / TINKER_PROJECT_ROOT)"
		return result
	}

	info, err := os.Stat(root)
	if err != nil {
		result.Status = "error"
		result.Error = err
		result.Message = fmt.Sprintf("Cannot access %s", root)
		return result
	}
	if !info.IsDir() {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s is not a directory", root)
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Project found at %s", root)
	return result
}

// CheckAll runs the checks relevant to the configured source driver
func CheckAll(cfg *config.Config, runner source.Runner) []CheckResult {
	if runner == nil {
		runner = source.ExecRunner{}
	}
	if cfg.Source.Driver == config.DriverLocal {
		return []CheckResult{CheckProjectRoot(cfg.Source.ProjectRoot)}
	}
	return []CheckResult{
		CheckDocker(runner, cfg.Source.DockerBinary),
		CheckContainer(runner, cfg.Source.DockerBinary, cfg.Source.ContainerName),
	}
}

// FormatResults formats health check results for display
func FormatResults(results []CheckResult) string {
	var b strings.Builder
	b.WriteString("\n=== Dependency Health Check ===\n\n")

	for _, result := range results {
		var status string
		switch result.Status {
		case "ok":
			status = "✓"
		case "error":
			status = "✗"
		default:
			status = "?"
		}

		fmt.Fprintf(&b, "%s %s: %s\n", status, result.Service, result.Message)
	}

	return b.String()
}

// GetRemediation provides remediation steps for failed checks
func GetRemediation(results []CheckResult) string {
	var remediation string

	for _, result := range results {
		if result.Status == "ok" {
			continue
		}
		remediation += fmt.Sprintf("\n%s is not accessible:\n", result.Service)

		switch result.Service {
		case "Docker":
			remediation += `
  Install Docker and make sure the daemon is running:
    docker version

  If you use podman, set source.docker_binary: podman
`
		case "Container":
			remediation += `
  List running containers and pick the Laravel app:
    docker ps

  Start a Sail project:
    ./vendor/bin/sail up -d

  Then set TINKER_CONTAINER (or source.container_name) to its name.
`
		case "Project":
			remediation += `
  Point TINKER_PROJECT_ROOT (or source.project_root) at the Laravel
  application directory, the one containing artisan.
`
		}
	}

	return remediation
}
