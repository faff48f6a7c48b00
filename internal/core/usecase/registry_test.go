package usecase

import (
	"testing"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
)

func TestRegistryStartsEmpty(t *testing.T) {
	reg := NewRegistry(nil, nil)
	if reg.Current().Len() != 0 {
		t.Fatalf("expected empty initial snapshot, got %d documents", reg.Current().Len())
	}
}

func TestReplaceSwapsSnapshotWholesale(t *testing.T) {
	bus := &busFake{}
	reg := NewRegistry(bus, nil)

	reg.Replace(domain.NewSnapshot([]domain.Document{
		{ID: "1", Filename: "a.txt", Status: domain.StatusReady},
		{ID: "2", Filename: "b.txt", Status: domain.StatusPending},
	}))
	reg.Replace(domain.NewSnapshot([]domain.Document{
		{ID: "3", Filename: "c.txt", Status: domain.StatusProcessing},
	}))

	snapshot := reg.Current()
	if snapshot.Len() != 1 {
		t.Fatalf("expected replacement, not merge; got %d documents", snapshot.Len())
	}
	if _, ok := snapshot.Get("1"); ok {
		t.Fatalf("expected document 1 gone after replacement")
	}
	if bus.countTopic(ports.TopicRegistryReplaced) != 2 {
		t.Fatalf("expected 2 replacement events, got %d", bus.countTopic(ports.TopicRegistryReplaced))
	}
}
