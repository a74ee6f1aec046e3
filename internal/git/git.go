package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrUnknownRef is returned when a ref names no tag, branch or commit of
// the remote.
var ErrUnknownRef = errors.New("unknown git ref")

// Fetch clones url into dest and checks out ref, which may be a tag, a
// branch or a commit hash. An empty ref keeps the remote's default branch.
// dest is removed again when anything fails.
func Fetch(ctx context.Context, url, ref, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	err := fetch(ctx, url, ref, dest)
	if err != nil {
		_ = os.RemoveAll(dest)
	}
	return err
}

func fetch(ctx context.Context, url, ref, dest string) error {
	opts := &gogit.CloneOptions{URL: url, Tags: gogit.AllTags}
	if ref == "" {
		opts.Depth = 1
	} else {
		opts.NoCheckout = true
	}
	repo, err := gogit.PlainCloneContext(ctx, dest, false, opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("cloning %s: %w", url, ctxErr)
		}
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	if ref == "" {
		return nil
	}

	hash, err := resolve(repo, ref)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", ref, err)
	}
	return nil
}

// resolve looks ref up as a tag, then as a remote branch, then as any
// revision git understands (a full or abbreviated hash).
func resolve(repo *gogit.Repository, ref string) (plumbing.Hash, error) {
	candidates := []string{
		plumbing.NewTagReferenceName(ref).String(),
		plumbing.NewRemoteReferenceName(gogit.DefaultRemoteName, ref).String(),
		ref,
	}
	for _, rev := range candidates {
		if h, err := repo.ResolveRevision(plumbing.Revision(rev)); err == nil {
			return *h, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("%q: %w", ref, ErrUnknownRef)
}

// HeadCommit returns the hash HEAD points at in the checkout at dir.
func HeadCommit(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return head.Hash().String(), nil
}
