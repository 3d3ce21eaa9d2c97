package registry

import (
	"sort"
	"time"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"toolgate/internal/domain"
	"toolgate/internal/infra/hashutil"
	"toolgate/internal/infra/namespace"
)

// snapshot is an immutable merged view. It is never modified after it has
// been published, so readers may hold it without locking.
type snapshot struct {
	info   domain.SnapshotInfo
	tools  map[string]domain.ToolDescriptor
	sorted []domain.ToolDescriptor
	index  bleve.Index
}

func emptySnapshot() *snapshot {
	return &snapshot{
		info:  domain.SnapshotInfo{ETag: hashutil.ToolETag(nil, nil)},
		tools: map[string]domain.ToolDescriptor{},
	}
}

func (s *snapshot) remoteCount() int {
	count := 0
	for _, tool := range s.sorted {
		if _, _, remote := namespace.Provenance(tool); remote {
			count++
		}
	}
	return count
}

func newSnapshot(tools map[string]domain.ToolDescriptor, revision uint64, refreshedAt time.Time, logger *zap.Logger) *snapshot {
	sorted := make([]domain.ToolDescriptor, 0, len(tools))
	for _, tool := range tools {
		sorted = append(sorted, tool)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &snapshot{
		info: domain.SnapshotInfo{
			Revision:    revision,
			ETag:        hashutil.ToolETag(logger, sorted),
			RefreshedAt: refreshedAt,
			Tools:       len(sorted),
			Ready:       true,
		},
		tools:  tools,
		sorted: sorted,
	}
}
