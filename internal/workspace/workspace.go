// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package workspace turns a session manifest into the batch of external
// commands that prepares the workspace: one clone per repository, followed
// by dependency installs for the repositories that want them.
package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/rustydotwtf/letmecook/internal/interactive"
	"github.com/rustydotwtf/letmecook/internal/session"
	"github.com/spf13/afero"
)

// RepoDir returns the checkout directory for a repository within the
// session's workspace.
func RepoDir(sess *session.Session, repo session.RepoRef) string {
	return filepath.Join(sess.Workspace, repo.Name)
}

// CloneTasks builds one git clone task per repository, index-aligned with
// sess.Repos so results correlate back to repositories without any label
// parsing.
func CloneTasks(sess *session.Session) []interactive.Task {
	tasks := make([]interactive.Task, 0, len(sess.Repos))

	for _, repo := range sess.Repos {
		tasks = append(tasks, interactive.Task{
			Label:   repo.Name,
			Command: []string{"git", "clone", repo.URL, RepoDir(sess, repo)},
		})
	}

	return tasks
}

// InstallTasks inspects each cloned repository and builds install tasks for
// the package managers it finds. Repositories without a recognized manifest
// produce no task.
func InstallTasks(fs afero.Fs, sess *session.Session) ([]interactive.Task, error) {
	var tasks []interactive.Task

	for _, repo := range sess.Repos {
		dir := RepoDir(sess, repo)

		for _, probe := range []struct {
			file    string
			command []string
		}{
			{"package.json", []string{"npm", "install"}},
			{"go.mod", []string{"go", "mod", "download"}},
		} {
			ok, err := afero.Exists(fs, filepath.Join(dir, probe.file))
			if err != nil {
				return nil, fmt.Errorf("probing %s in %s: %w", probe.file, dir, err)
			}

			if !ok {
				continue
			}

			tasks = append(tasks, interactive.Task{
				Label:   repo.Name,
				Command: probe.command,
				Dir:     dir,
			})
		}
	}

	return tasks, nil
}

// CleanupFailedClones removes the checkout directories of clone tasks that
// were aborted or skipped, so a later launch starts from a clean slate.
// Results must be the output of running CloneTasks for the same session.
func CleanupFailedClones(fs afero.Fs, sess *session.Session, results interactive.Results) error {
	for i, res := range results {
		if i >= len(sess.Repos) {
			break
		}

		if res.Outcome != interactive.OutcomeAborted && res.Outcome != interactive.OutcomeSkipped {
			continue
		}

		dir := RepoDir(sess, sess.Repos[i])
		if err := fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}

	return nil
}
