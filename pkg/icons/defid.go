package icons

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/matzehuels/graphrender/pkg/cache"
)

// DefIDs assigns document-unique element ids to icons placed in <defs>.
// The zero value is not usable; call [NewDefIDs].
type DefIDs struct {
	byIcon map[string]string
	used   map[string]bool
}

// NewDefIDs returns an empty id table.
func NewDefIDs() *DefIDs {
	return &DefIDs{byIcon: map[string]string{}, used: map[string]bool{}}
}

// ID returns the defs id for icon, allocating it on first use. Ids have the
// form "icon-<sanitized>"; when two icons sanitize to the same id, the later
// one gets an 8-digit SHA-1 suffix.
func (d *DefIDs) ID(icon string) string {
	if id, ok := d.byIcon[icon]; ok {
		return id
	}
	safe := cache.Sanitize(icon)
	if safe == "" {
		safe = "icon"
	}
	id := "icon-" + safe
	if d.used[id] {
		sum := sha1.Sum([]byte(icon))
		id += "-" + hex.EncodeToString(sum[:])[:8]
	}
	d.byIcon[icon] = id
	d.used[id] = true
	return id
}
