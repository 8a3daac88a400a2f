// Package reconcile classifies candidate invoices against the persisted
// store and drives the sequential reconciliation run.
package reconcile

import (
	"strings"

	"github.com/leacau/aire-crm-sub001/database"
)

// OwnerDirectory maps lower-cased advisor display names to owner ids.
// It is built once per pass from the owners snapshot.
type OwnerDirectory map[string]string

// BuildOwnerDirectory indexes the owners snapshot by display name.
func BuildOwnerDirectory(owners []database.Owner) OwnerDirectory {
	dir := make(OwnerDirectory, len(owners))
	for _, o := range owners {
		dir[strings.ToLower(strings.TrimSpace(o.DisplayName))] = o.ID
	}
	return dir
}

// Resolve looks up an advisor by display name, case-insensitively.
func (d OwnerDirectory) Resolve(name string) (string, bool) {
	id, ok := d[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
