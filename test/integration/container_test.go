//go:build integration

package integration

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	postgresImage = "postgres:16-alpine"
	readyTimeout  = 30 * time.Second
)

// startPostgres runs a throwaway Postgres container through the Docker CLI.
// Docker picks the host port; the container is removed by the returned
// cleanup function.
func startPostgres(ctx context.Context) (string, func(), error) {
	out, err := exec.CommandContext(ctx, "docker", "run", "-d", "--rm",
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER=hms",
		"-e", "POSTGRES_PASSWORD=hms",
		"-e", "POSTGRES_DB=hms_test",
		postgresImage,
	).CombinedOutput()
	if err != nil {
		return "", nil, fmt.Errorf("docker run: %w: %s", err, out)
	}
	id := strings.TrimSpace(string(out))
	cleanup := func() {
		_ = exec.Command("docker", "rm", "-f", id).Run()
	}

	addr, err := hostAddr(ctx, id)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	connStr := fmt.Sprintf("postgres://hms:hms@%s/hms_test?sslmode=disable", addr)
	if err := waitForPostgres(ctx, connStr); err != nil {
		cleanup()
		return "", nil, err
	}
	return connStr, cleanup, nil
}

// hostAddr returns the host:port Docker mapped to the container's 5432.
func hostAddr(ctx context.Context, id string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", "port", id, "5432/tcp").Output()
	if err != nil {
		return "", fmt.Errorf("docker port: %w", err)
	}
	// One line per address family; the first is enough.
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if line == "" {
		return "", fmt.Errorf("no port mapping for container %s", id)
	}
	return line, nil
}

func waitForPostgres(ctx context.Context, connStr string) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres not ready after %s: %w", readyTimeout, lastErr)
		case <-ticker.C:
		}
	}
}
