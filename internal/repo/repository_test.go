package repo_test

import (
	"testing"

	"github.com/hamed0406/safewarmer/internal/repo"
	"github.com/hamed0406/safewarmer/internal/repo/memory"
	pg "github.com/hamed0406/safewarmer/internal/repo/postgres"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.ResultStore = memory.New()
	var _ repo.ResultStore = (*pg.Store)(nil)
}
