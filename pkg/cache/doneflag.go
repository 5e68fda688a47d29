package cache

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// FlagPolicy selects when the done flag is written relative to the
// weighting work it guards.
type FlagPolicy int

const (
	// FlagBeforeWork writes the flag before any weighting starts. The
	// flag is a forward-looking claim: a crash mid-loop leaves it set
	// alongside an incomplete artifact set. Cheap, and repeated failures
	// never redo the expensive work, but the cache needs manual
	// inspection after an aborted run.
	FlagBeforeWork FlagPolicy = iota

	// FlagAfterVerify takes an exclusive-create claim file first and
	// writes the flag only after every per-mode artifact is verified on
	// disk. Abandoned claims are taken over once they exceed ClaimTTL.
	FlagAfterVerify
)

// ClaimTTL is the age after which an unreleased claim counts as abandoned.
const ClaimTTL = 2 * time.Hour

var ErrClaimHeld = errors.New("weighting claim already held for this identity")

const doneFlagContent = "m4ra weighting complete\n"

// HasDoneFlag reports whether the sentinel for (city, hash) exists.
func (c *Config) HasDoneFlag(city, hash string) bool {
	_, err := os.Stat(c.DoneFlagPath(city, hash))
	return err == nil
}

// WriteDoneFlag atomically writes the sentinel for (city, hash).
func (c *Config) WriteDoneFlag(city, hash string) error {
	if _, err := c.EnsureCityDir(city); err != nil {
		return err
	}
	path := c.DoneFlagPath(city, hash)
	if err := atomic.WriteFile(path, strings.NewReader(doneFlagContent)); err != nil {
		return fmt.Errorf("writing done flag %s: %w", path, err)
	}
	return nil
}

// Claim is an exclusive hold on a (city, fingerprint) identity, used by
// the FlagAfterVerify policy.
type Claim struct {
	path string
}

// AcquireClaim takes the exclusive-create claim for (city, hash). A stale
// claim left behind by an interrupted run is removed and re-taken once. A
// fresh claim held by another process yields ErrClaimHeld; duplicated work
// under FlagBeforeWork is the accepted alternative.
func (c *Config) AcquireClaim(city, hash string) (*Claim, error) {
	if _, err := c.EnsureCityDir(city); err != nil {
		return nil, err
	}
	path := c.DoneFlagPath(city, hash) + ".claim"

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return &Claim{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating claim %s: %w", path, err)
		}
		info, statErr := os.Stat(path)
		if statErr != nil {
			// raced with a release, retry the create
			continue
		}
		if time.Since(info.ModTime()) < ClaimTTL {
			return nil, fmt.Errorf("%w: %s", ErrClaimHeld, path)
		}
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("removing stale claim %s: %w", path, rmErr)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrClaimHeld, path)
}

// Release drops the claim. Safe to call once work has finished or failed.
func (cl *Claim) Release() {
	if cl == nil {
		return
	}
	_ = os.Remove(cl.path)
}
