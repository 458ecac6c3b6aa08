// Package fswalk enumerates regular files under a root directory, keyed by
// root-relative path, for the sync reconciler's Phase A.
package fswalk

import (
	"io/fs"
	"path/filepath"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/verrors"
)

// Walk canonicalizes root and returns a map from root-relative path to
// filesystem metadata for every regular file reachable under it. Symbolic
// links are not followed. A per-entry I/O error fails the whole walk with a
// *verrors.WalkFailure rather than silently dropping the entry.
func Walk(root string) (map[string]domain.FsMeta, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &verrors.WalkFailure{Path: root, Err: err}
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, &verrors.WalkFailure{Path: root, Err: err}
	}

	out := make(map[string]domain.FsMeta)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &verrors.WalkFailure{Path: path, Err: err}
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return &verrors.WalkFailure{Path: path, Err: err}
		}
		info, err := d.Info()
		if err != nil {
			return &verrors.WalkFailure{Path: path, Err: err}
		}
		if _, exists := out[rel]; exists {
			return &verrors.WalkFailure{Path: path, Err: fs.ErrExist}
		}
		out[rel] = domain.FsMeta{Size: info.Size(), ModTime: info.ModTime()}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}
