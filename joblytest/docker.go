package joblytest

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/ory/dockertest"
)

type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	Builder        func(host string, port int) (T, error)
}

func (d DockerServiceConfig[T]) Env() []string {
	env := []string{}
	for k, v := range d.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// GetDockerService starts a throwaway container and returns whatever Builder
// makes of it once it answers. Tests are skipped in short mode or when no
// Docker daemon can be reached.
func GetDockerService[T any](
	t *testing.T,
	config DockerServiceConfig[T],
) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping long-running test in short mode.")
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not construct pool: %s", err)
	}

	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run(
		config.DockerImage,
		config.DockerImageTag,
		config.Env(),
	)
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	})

	dockerURL := os.Getenv("DOCKER_HOST")
	if dockerURL == "" {
		dockerURL = "tcp://" + resource.GetHostPort(fmt.Sprintf("%d/tcp", config.InternalPort))
	}
	u, err := url.Parse(dockerURL)
	if err != nil {
		t.Fatalf("Error parsing docker URL: %s", err)
	}

	port := func() int {
		i, _ := strconv.Atoi(u.Port())
		return i
	}()

	var service T
	if err := pool.Retry(func() error {
		var err error

		service, err = config.Builder(u.Hostname(), port)

		return err
	}); err != nil {
		t.Fatalf("Could not connect to service: %s", err)
	}

	return service
}
