package bundle

import (
	"sort"
	"time"

	"appatlas/internal/object"
)

// Manifest is the application-level object inventory.
type Manifest struct {
	Metadata    ManifestMeta    `json:"_metadata"`
	PackageInfo PackageInfo     `json:"package_info"`
	Inventory   ObjectInventory `json:"object_inventory"`
}

type ManifestMeta struct {
	BuilderVersion string `json:"builder_version"`
	GeneratedAt    string `json:"generated_at"`
	SourcePackage  string `json:"source_package"`
}

type ObjectInventory struct {
	ByType      map[string]InventoryGroup `json:"by_type"`
	TotalByType map[string]int            `json:"total_by_type"`
}

type InventoryGroup struct {
	Count   int            `json:"count"`
	Objects []InventoryRef `json:"objects"`
}

type InventoryRef struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// BuildManifest groups every object by kind, sorted by name within a group.
func BuildManifest(store *object.Store, info PackageInfo, now time.Time) *Manifest {
	byType := make(map[string]InventoryGroup)
	totals := make(map[string]int)
	for _, rec := range store.Records() {
		group := byType[rec.Kind]
		group.Objects = append(group.Objects, InventoryRef{UUID: rec.UUID, Name: rec.Name})
		group.Count = len(group.Objects)
		byType[rec.Kind] = group
		totals[rec.Kind]++
	}
	for kind, group := range byType {
		sort.Slice(group.Objects, func(i, j int) bool { return group.Objects[i].Name < group.Objects[j].Name })
		byType[kind] = group
	}
	return &Manifest{
		Metadata: ManifestMeta{
			BuilderVersion: builderVersion,
			GeneratedAt:    now.UTC().Format(time.RFC3339),
			SourcePackage:  info.Filename,
		},
		PackageInfo: info,
		Inventory:   ObjectInventory{ByType: byType, TotalByType: totals},
	}
}
