// Package sync reconciles the local issues directory with the remote
// tracker. Push drives local state outward (create, update, close);
// pull mirrors remote state inward. Both snapshot the issues directory
// before mutating anything and report per-issue outcomes instead of
// failing whole batches.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"haku/internal/config"
	"haku/internal/github"
	"haku/internal/store"
)

// ErrPendingCreations aborts a conservative pull: overwriting the
// local store would silently destroy issues that were never pushed.
var ErrPendingCreations = errors.New("local pending issues exist; push them first or pull with --force")

// Snapshotter backs up the issues directory before destructive
// operations.
type Snapshotter interface {
	Snapshot(dir string) (string, error)
}

// Engine composes the local store, the remote gateway, and the backup
// manager into push and pull operations. The config carries the
// pending-closure queue and the last-sync timestamp; the engine
// mutates it in place and the caller persists it.
type Engine struct {
	store   *store.Store
	gateway github.Gateway
	backups Snapshotter
	cfg     *config.Config
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs an Engine.
func New(st *store.Store, gateway github.Gateway, backups Snapshotter, cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   st,
		gateway: gateway,
		backups: backups,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// PushOptions scopes a push. Number zero pushes every record; a
// positive number pushes that one issue. DryRun reports intended
// actions without touching the network or the filesystem.
type PushOptions struct {
	Number int
	DryRun bool
}

// PullOptions controls a pull. Force overrides the guard that refuses
// to overwrite local pending issues.
type PullOptions struct {
	Force bool
}

// Push reconciles local records outward: updates for confirmed issues,
// creates (with number promotion) for pending ones, then queued remote
// closures. One issue's remote failure never stops the batch; auth and
// rate-limit failures do, since every later call would fail the same
// way. The returned error is the batch-fatal cause, if any; the report
// is valid either way.
func (e *Engine) Push(ctx context.Context, opts PushOptions) (Report, error) {
	if err := e.cfg.RequireRemote(); err != nil {
		return Report{}, err
	}

	existing, pending, err := e.scope(opts.Number)
	if err != nil {
		return Report{}, err
	}

	inScope := make(map[int]bool, len(existing))
	for _, entry := range existing {
		inScope[entry.Issue.Number] = true
	}

	var report Report
	if opts.DryRun {
		for _, entry := range existing {
			report.plan("update #%d %s", entry.Issue.Number, entry.Issue.Title)
		}
		for _, entry := range pending {
			report.plan("create %s", entry.Issue.Title)
		}
		for _, number := range e.cfg.PendingClosures {
			if !inScope[number] {
				report.plan("close #%d", number)
			}
		}
		return report, nil
	}

	backupPath, err := e.backups.Snapshot(e.store.Dir())
	if err != nil {
		return Report{}, fmt.Errorf("backup before push failed: %w", err)
	}
	report.Backup = backupPath

	for _, entry := range existing {
		if err := e.pushExisting(ctx, entry); err != nil {
			report.addFailure(entry.Issue.Number, entry.Issue.Title, err)
			if fatal := e.abortBatch(&report, err); fatal != nil {
				return report, fatal
			}
			continue
		}
		report.Updated++
	}

	for _, entry := range pending {
		promoted, err := e.pushPending(ctx, entry)
		if err != nil {
			var remoteErr *github.RemoteError
			if !errors.As(err, &remoteErr) {
				// Local storage failure after the remote create
				// succeeded; the next push cannot heal this.
				return report, err
			}
			report.addFailure(0, entry.Issue.Title, err)
			if fatal := e.abortBatch(&report, err); fatal != nil {
				return report, fatal
			}
			continue
		}
		e.logger.Info("issue created", "number", promoted.Issue.Number, "title", promoted.Issue.Title)
		report.Created++
	}

	for _, number := range append([]int(nil), e.cfg.PendingClosures...) {
		if inScope[number] {
			continue
		}
		if err := e.closeQueued(ctx, number); err != nil {
			report.addFailure(number, "", err)
			if fatal := e.abortBatch(&report, err); fatal != nil {
				return report, fatal
			}
			continue
		}
		report.Closed++
	}

	e.cfg.SetLastSync(e.now())
	return report, nil
}

// Pull mirrors remote state into the local store. The full remote
// result set is drained before the first write, so an interrupted
// pagination leaves the prior local state untouched. Writes are keyed
// by issue number; a file whose slug no longer matches the remote
// title is removed so each number keeps exactly one locator.
func (e *Engine) Pull(ctx context.Context, opts PullOptions) (Report, error) {
	if err := e.cfg.RequireRemote(); err != nil {
		return Report{}, err
	}

	entries, err := e.store.Entries()
	if err != nil {
		return Report{}, err
	}

	if !opts.Force {
		for _, entry := range entries {
			if entry.Issue.Pending() {
				return Report{}, ErrPendingCreations
			}
		}
	}

	var report Report
	backupPath, err := e.backups.Snapshot(e.store.Dir())
	if err != nil {
		return Report{}, fmt.Errorf("backup before pull failed: %w", err)
	}
	report.Backup = backupPath

	remote, err := e.gateway.List(ctx, github.ListFilter{})
	if err != nil {
		return report, err
	}

	local := make(map[int][]string, len(entries))
	for _, entry := range entries {
		if !entry.Issue.Pending() {
			local[entry.Issue.Number] = append(local[entry.Issue.Number], entry.Filename)
		}
	}

	for _, remoteIssue := range remote {
		issue := remoteIssue.Issue()
		written, err := e.store.Put(issue)
		if err != nil {
			return report, err
		}
		for _, stale := range local[issue.Number] {
			if stale == written.Filename {
				continue
			}
			if err := e.store.RemoveFile(stale); err != nil {
				return report, err
			}
		}
		report.Pulled++
	}

	e.cfg.SetLastSync(e.now())
	return report, nil
}

// pushExisting updates one confirmed issue. The preliminary fetch is
// best effort: a missing or unreadable remote counterpart still gets
// the update attempt, so a transient fetch problem never turns into an
// accidental duplicate create.
func (e *Engine) pushExisting(ctx context.Context, entry store.Entry) error {
	number := entry.Issue.Number
	if _, err := e.gateway.Get(ctx, number); err != nil {
		if isBatchFatal(err) {
			return err
		}
		e.logger.Warn("remote fetch before update failed", "number", number, "error", err)
	}
	_, err := e.gateway.Update(ctx, number, entry.Issue)
	return err
}

// pushPending creates one pending issue remotely and promotes the
// local file to the server-assigned number. On remote failure the
// local file is untouched and the create retries on the next push.
func (e *Engine) pushPending(ctx context.Context, entry store.Entry) (store.Entry, error) {
	created, err := e.gateway.Create(ctx, entry.Issue)
	if err != nil {
		return store.Entry{}, err
	}

	issue := entry.Issue
	issue.Number = created.Number
	issue.CreatedAt = created.CreatedAt
	issue.UpdatedAt = created.UpdatedAt
	return e.store.Promote(entry.Filename, issue)
}

// closeQueued executes one queued remote closure and dequeues it on
// success. A remote not_found also dequeues: there is nothing left to
// close and retrying forever would wedge the queue.
func (e *Engine) closeQueued(ctx context.Context, number int) error {
	if _, err := e.gateway.Close(ctx, number); err != nil {
		if !github.IsKind(err, github.KindNotFound) {
			return err
		}
		e.logger.Warn("queued closure target missing remotely, dropping", "number", number)
	}
	e.cfg.RemovePendingClosure(number)
	return nil
}

func (e *Engine) scope(number int) (existing, pending []store.Entry, err error) {
	if number > 0 {
		entry, err := e.store.Get(number)
		if err != nil {
			return nil, nil, err
		}
		return []store.Entry{entry}, nil, nil
	}

	entries, err := e.store.Entries()
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		if entry.Issue.Pending() {
			pending = append(pending, entry)
		} else {
			existing = append(existing, entry)
		}
	}
	return existing, pending, nil
}

// abortBatch marks the report aborted and returns the error when it is
// batch fatal; otherwise the batch continues.
func (e *Engine) abortBatch(report *Report, err error) error {
	if !isBatchFatal(err) {
		return nil
	}
	report.Aborted = err.Error()
	return err
}

func isBatchFatal(err error) bool {
	return github.IsKind(err, github.KindAuthFailed) || github.IsKind(err, github.KindRateLimited)
}
