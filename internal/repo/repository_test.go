package repo_test

import (
	"testing"

	"github.com/hamed0406/linkchecker/internal/repo"
	"github.com/hamed0406/linkchecker/internal/repo/memory"
	pg "github.com/hamed0406/linkchecker/internal/repo/postgres"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.TargetStore = memory.New()
	var _ repo.ResultStore = memory.New()
	var _ repo.AlertStore = memory.New()

	var _ repo.TargetStore = (*pg.Store)(nil)
	var _ repo.ResultStore = (*pg.Store)(nil)
	var _ repo.AlertStore = (*pg.Store)(nil)
}
