package main

import (
	"context"
	"errors"
	"net"
	"time"

	"haku/internal/config"
	"haku/internal/github"
	"haku/internal/sync"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var remoteErr *github.RemoteError
	if errors.As(err, &remoteErr) {
		switch remoteErr.Kind {
		case github.KindAuthFailed:
			lines = append(lines, "hint: check the access token (haku token <token>) and its repository permissions.")
		case github.KindRateLimited:
			if !remoteErr.ResetAt.IsZero() {
				lines = append(lines, "hint: rate limited; retry after "+remoteErr.ResetAt.Format(time.RFC3339)+".")
			} else {
				lines = append(lines, "hint: rate limited; wait before retrying.")
			}
		case github.KindNotFound:
			lines = append(lines, "hint: verify the linked repository (haku config get remote) and the issue number.")
		case github.KindTransportFailure:
			lines = append(lines,
				"hint: check network connectivity to the tracker.",
				"hint: you can increase HAKU_HTTP_TIMEOUT for slower environments.",
			)
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, config.ErrNotLinked) || errors.Is(err, config.ErrNoToken) {
		return uniqueLines(lines)
	}

	if errors.Is(err, sync.ErrPendingCreations) {
		lines = append(lines, "hint: run 'haku push' to create them remotely, or pull with --force to proceed anyway.")
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; increase HAKU_HTTP_TIMEOUT or check tracker availability.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure the tracker endpoint is reachable.",
			"hint: you can increase HAKU_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
