package postgraph_test

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/postgraph/internal/seed"
)

func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

func TestDockerfileMultiStageBuild(t *testing.T) {
	content := readFile(t, "Dockerfile")

	// マルチステージビルドの確認: ビルドステージと実行ステージが存在すること
	if !strings.Contains(content, "FROM golang:") {
		t.Error("Dockerfile should contain a Go builder stage (FROM golang:)")
	}

	// 最終ステージは軽量イメージであること
	var lastFrom string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "FROM ") {
			lastFrom = trimmed
		}
	}
	if !strings.Contains(lastFrom, "gcr.io/distroless") && !strings.Contains(lastFrom, "alpine") && !strings.Contains(lastFrom, "scratch") {
		t.Errorf("final stage should use a minimal base image (distroless/alpine/scratch), got: %s", lastFrom)
	}
}

func TestDockerfileBuildsPostgraph(t *testing.T) {
	content := readFile(t, "Dockerfile")

	if !strings.Contains(content, "./cmd/postgraph") {
		t.Error("Dockerfile should build ./cmd/postgraph")
	}
	if !strings.Contains(content, "ENTRYPOINT") {
		t.Error("Dockerfile should contain ENTRYPOINT")
	}
}

func TestDockerComposeHealthcheckUsesSubcommand(t *testing.T) {
	var compose struct {
		Services map[string]struct {
			Command     []string `yaml:"command"`
			Healthcheck struct {
				Test []string `yaml:"test"`
			} `yaml:"healthcheck"`
		} `yaml:"services"`
	}
	if err := yaml.Unmarshal([]byte(readFile(t, "docker-compose.yml")), &compose); err != nil {
		t.Fatalf("failed to parse docker-compose.yml: %v", err)
	}

	api, ok := compose.Services["api"]
	if !ok {
		t.Fatal("docker-compose.yml should contain service \"api\"")
	}
	// distrolessにはシェルやcurlがないため、バイナリのhealthcheckサブコマンドを使う
	if !strings.Contains(strings.Join(api.Healthcheck.Test, " "), "healthcheck") {
		t.Errorf("api healthcheck = %v, want healthcheck subcommand", api.Healthcheck.Test)
	}
	if len(api.Command) == 0 || api.Command[0] != "serve" {
		t.Errorf("api command = %v, want serve subcommand", api.Command)
	}
}

func TestSeedFileIsValid(t *testing.T) {
	f, err := seed.LoadFile("seed/seed.yaml")
	if err != nil {
		t.Fatalf("seed.LoadFile() error = %v", err)
	}
	if len(f.Users) == 0 || len(f.Posts) == 0 || len(f.Comments) == 0 {
		t.Errorf("seed should contain users, posts and comments, got %d/%d/%d", len(f.Users), len(f.Posts), len(f.Comments))
	}
}
