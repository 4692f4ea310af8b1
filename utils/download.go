package utils

import (
	"context"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"golang.org/x/xerrors"
)

// DownloadToDir fetches src into a sibling of dst and swaps it into place, so a
// failed download leaves the previous contents of dst untouched.
func DownloadToDir(ctx context.Context, src, dst string) error {
	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, os.ModePerm); err != nil {
		return xerrors.Errorf("failed to create %s: %w", parent, err)
	}

	tmpDir, err := os.MkdirTemp(parent, ".download-")
	if err != nil {
		return xerrors.Errorf("failed to create a temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// go-getter doesn't allow destination to exist.It needs to be removed once.
	// https://github.com/hashicorp/go-getter/blob/7b99c311a18a8bb679bc7ff3a830a65029afef9b/module_test.go#L18-L28
	tmpDst := filepath.Join(tmpDir, "dst")
	if err = download(ctx, src, tmpDst, getter.ClientModeDir); err != nil {
		return xerrors.Errorf("download error: %w", err)
	}

	if err = os.RemoveAll(dst); err != nil {
		return xerrors.Errorf("failed to remove %s: %w", dst, err)
	}
	if err = os.Rename(tmpDst, dst); err != nil {
		return xerrors.Errorf("failed to move download into %s: %w", dst, err)
	}
	return nil
}

func download(ctx context.Context, src, dst string, mode getter.ClientMode) error {
	pwd, err := os.Getwd()
	if err != nil {
		return xerrors.Errorf("unable to get the current dir: %w", err)
	}

	// Build the client
	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     dst,
		Pwd:     pwd,
		Getters: getter.Getters,
		Mode:    mode,
	}

	if err = client.Get(); err != nil {
		return xerrors.Errorf("failed to download: %w", err)
	}

	return nil
}
