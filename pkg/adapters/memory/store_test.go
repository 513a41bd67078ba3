package memory_test

import (
	"testing"

	"github.com/aretw0/halo/pkg/adapters/memory"
	"github.com/aretw0/halo/pkg/ports"
)

func TestMemorySnapshotStore_Contract(t *testing.T) {
	store := memory.NewSnapshotStore()
	ports.RunSnapshotStoreContract(t, store)
}
