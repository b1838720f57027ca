package deps

import "sort"

// Graph indexes an edge list by source and target for per-object views and
// rankings. Derived data only; rebuild after any re-analysis.
type Graph struct {
	Outbound map[string][]Edge
	Inbound  map[string][]Edge
}

// BuildGraph inverts the edge list into outbound and inbound indexes.
func BuildGraph(edges []Edge) *Graph {
	g := &Graph{
		Outbound: make(map[string][]Edge),
		Inbound:  make(map[string][]Edge),
	}
	for _, e := range edges {
		g.Outbound[e.SourceUUID] = append(g.Outbound[e.SourceUUID], e)
		g.Inbound[e.TargetUUID] = append(g.Inbound[e.TargetUUID], e)
	}
	return g
}

// OutboundNames returns the deduplicated, sorted names this object depends on.
func (g *Graph) OutboundNames(uuid string) []string {
	return dedupNames(g.Outbound[uuid], func(e Edge) string { return e.TargetName })
}

// InboundNames returns the deduplicated, sorted names depending on this object.
func (g *Graph) InboundNames(uuid string) []string {
	return dedupNames(g.Inbound[uuid], func(e Edge) string { return e.SourceName })
}

func dedupNames(edges []Edge, name func(Edge) string) []string {
	seen := make(map[string]bool, len(edges))
	var out []string
	for _, e := range edges {
		n := name(e)
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// RankEntry is one row of a dependency ranking.
type RankEntry struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Summary aggregates the edge list for the application overview.
type Summary struct {
	Total            int            `json:"total"`
	ByKind           map[string]int `json:"by_kind"`
	MostDependedOn   []RankEntry    `json:"most_depended_on"`
	MostDependencies []RankEntry    `json:"most_dependencies"`
}

// Summarize builds ranking stats over the full edge list, keeping the top n
// entries per ranking.
func Summarize(edges []Edge, n int) Summary {
	byKind := make(map[string]int)
	inbound := make(map[string]int)
	outbound := make(map[string]int)
	names := make(map[string]string)
	kinds := make(map[string]string)

	for _, e := range edges {
		byKind[e.Kind]++
		inbound[e.TargetUUID]++
		outbound[e.SourceUUID]++
		names[e.TargetUUID], kinds[e.TargetUUID] = e.TargetName, e.TargetKind
		names[e.SourceUUID], kinds[e.SourceUUID] = e.SourceName, e.SourceKind
	}

	return Summary{
		Total:            len(edges),
		ByKind:           byKind,
		MostDependedOn:   topN(inbound, names, kinds, n),
		MostDependencies: topN(outbound, names, kinds, n),
	}
}

func topN(counts map[string]int, names, kinds map[string]string, n int) []RankEntry {
	entries := make([]RankEntry, 0, len(counts))
	for uuid, count := range counts {
		entries = append(entries, RankEntry{Name: names[uuid], Kind: kinds[uuid], Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
