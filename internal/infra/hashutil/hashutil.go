// Package hashutil derives content hashes used as catalog ETags.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.uber.org/zap"

	"toolgate/internal/domain"
)

// ToolETag hashes tools in the given order. Callers pass tools sorted by name
// so equal catalogs always produce equal tags. A tool that cannot be encoded
// contributes only its name and is logged.
func ToolETag(logger *zap.Logger, tools []domain.ToolDescriptor) string {
	hasher := sha256.New()
	for _, tool := range tools {
		raw, err := json.Marshal(tool)
		if err != nil {
			if logger != nil {
				logger.Warn("tool hash failed", zap.String("tool", tool.Name), zap.Error(err))
			}
			raw = []byte(tool.Name)
		}
		_, _ = hasher.Write([]byte(tool.Name))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(raw)
		_, _ = hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
