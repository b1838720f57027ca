package bundle

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"appatlas/internal/artifact"
	"appatlas/internal/deps"
	"appatlas/internal/object"
	"appatlas/internal/sail"
)

// Expression rules with at least this many callers are treated as shared
// utilities: the walk records them but does not expand through them, unless
// they root the bundle themselves.
const hubCallerThreshold = 20

const keyObjectLimit = 5

// IndexEntry is one row of the bundle index embedded in the overview.
type IndexEntry struct {
	ID          string   `json:"id"`
	BundleType  string   `json:"bundle_type"`
	RootName    string   `json:"root_name"`
	ParentName  string   `json:"parent_name,omitempty"`
	ObjectCount int      `json:"object_count"`
	KeyObjects  []string `json:"key_objects"`
	Partial     bool     `json:"partial,omitempty"`
}

// Result is what Build leaves behind for the later artifact builders.
type Result struct {
	// Assignments maps each bundled object's UUID to the bundle IDs that
	// contain it, in bundle build order.
	Assignments map[string][]string
	// Index holds one entry per bundle, sorted by (bundle type, root name).
	Index []IndexEntry
}

// Coordinator builds every bundle for one application and writes the
// per-bundle artifacts through the given writer.
type Coordinator struct {
	// Workers bounds the number of concurrent bundle builds. Zero means
	// GOMAXPROCS.
	Workers int
}

// Build discovers entry points, walks the dependency graph from each, and
// writes structure and raw-content artifacts per bundle. Bundle IDs are
// assigned before the parallel phase so identical inputs always produce
// identical IDs.
func (c *Coordinator) Build(ctx context.Context, store *object.Store, edges []deps.Edge, w artifact.Writer) (*Result, error) {
	graph := deps.BuildGraph(edges)

	adj := make(map[string][]string)
	for uuid, out := range graph.Outbound {
		targets := make(map[string]bool, len(out))
		for _, e := range out {
			if !targets[e.TargetUUID] {
				targets[e.TargetUUID] = true
				adj[uuid] = append(adj[uuid], e.TargetUUID)
			}
		}
	}

	hubs := make(map[string]bool)
	for uuid, in := range graph.Inbound {
		if len(in) < hubCallerThreshold {
			continue
		}
		if rec, ok := store.ByUUID(uuid); ok && rec.Kind == object.KindExpressionRule {
			hubs[uuid] = true
		}
	}

	eps := Discover(store)
	ids := assignIDs(eps)

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(eps) {
		workers = len(eps)
	}
	if workers < 1 {
		workers = 1
	}

	res := &Result{Assignments: make(map[string][]string)}
	entries := make([]IndexEntry, len(eps))

	var mu sync.Mutex
	var firstErr error
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	tasks := make(chan int, len(eps))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-tasks:
					if !ok {
						return
					}
					ep := eps[idx]
					entry, members, err := c.buildOne(ctx, store, graph, adj, hubs, ep, ids[idx], w)
					if err != nil {
						setErr(err)
						continue
					}
					mu.Lock()
					entries[idx] = entry
					for _, m := range members {
						res.Assignments[m] = append(res.Assignments[m], entry.ID)
					}
					mu.Unlock()
				}
			}
		}()
	}
	for i := range eps {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}

	// Assignment lists accumulate in completion order across workers. Put
	// them back into bundle build order.
	order := make(map[string]int, len(ids))
	for i, id := range ids {
		order[id] = i
	}
	for _, list := range res.Assignments {
		sort.Slice(list, func(a, b int) bool { return order[list[a]] < order[list[b]] })
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].BundleType != entries[b].BundleType {
			return entries[a].BundleType < entries[b].BundleType
		}
		return entries[a].RootName < entries[b].RootName
	})
	res.Index = entries
	log.Printf("bundle: built %d bundles covering %d objects", len(entries), len(res.Assignments))
	return res, nil
}

func (c *Coordinator) buildOne(
	ctx context.Context,
	store *object.Store,
	graph *deps.Graph,
	adj map[string][]string,
	hubs map[string]bool,
	ep EntryPoint,
	id string,
	w artifact.Writer,
) (IndexEntry, []string, error) {
	roots := rootUUIDs(store, ep)
	reachable := walk(roots, adj, store, hubs)
	for uuid := range roots {
		reachable[uuid] = true
	}

	// Keep store order so every derived list is deterministic.
	var members []*object.Record
	inBundle := make(map[string]bool, len(reachable))
	for _, rec := range store.Records() {
		if reachable[rec.UUID] {
			members = append(members, rec)
			inBundle[rec.UUID] = true
		}
	}

	structure := buildStructure(store, graph, ep, members, inBundle)
	if err := w.WriteJSON(ctx, artifact.BundleStructurePath(id), structure); err != nil {
		return IndexEntry{}, nil, fmt.Errorf("bundle %s: write structure: %w", id, err)
	}
	if err := w.WriteJSON(ctx, artifact.BundleCodePath(id), buildCode(id, members)); err != nil {
		return IndexEntry{}, nil, fmt.Errorf("bundle %s: write code: %w", id, err)
	}

	entry := IndexEntry{
		ID:          id,
		BundleType:  ep.BundleType,
		RootName:    ep.Name,
		ParentName:  ep.ParentName,
		ObjectCount: len(members),
		KeyObjects:  keyObjects(graph, members, inBundle),
		Partial:     isPartial(store, ep),
	}
	uuids := make([]string, len(members))
	for i, m := range members {
		uuids[i] = m.UUID
	}
	return entry, uuids, nil
}

// isPartial reports whether the entry point declares a target that no record
// in the application satisfies.
func isPartial(store *object.Store, ep EntryPoint) bool {
	if ep.BundleType != TypeAction || ep.Action == nil {
		return false
	}
	raw := getString(ep.Action, "target_uuid")
	if raw == "" {
		return false
	}
	_, ok := resolveTarget(store, raw)
	return !ok
}

// keyObjects ranks bundle members by in-bundle connectivity and returns the
// top names.
func keyObjects(graph *deps.Graph, members []*object.Record, inBundle map[string]bool) []string {
	type ranked struct {
		name  string
		score int
	}
	scores := make([]ranked, 0, len(members))
	for _, m := range members {
		score := 0
		for _, e := range graph.Outbound[m.UUID] {
			if inBundle[e.TargetUUID] {
				score++
			}
		}
		for _, e := range graph.Inbound[m.UUID] {
			if inBundle[e.SourceUUID] {
				score++
			}
		}
		scores = append(scores, ranked{m.Name, score})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	n := keyObjectLimit
	if len(scores) < n {
		n = len(scores)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = scores[i].name
	}
	return out
}

// walk traverses the adjacency list breadth-first from the roots. Record
// types are recorded but not expanded; hub expression rules are expanded
// only when they are roots.
func walk(roots map[string]bool, adj map[string][]string, store *object.Store, hubs map[string]bool) map[string]bool {
	visited := make(map[string]bool)
	queue := make([]string, 0, len(roots))
	for uuid := range roots {
		queue = append(queue, uuid)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		if rec, ok := store.ByUUID(current); ok && rec.Kind == object.KindRecordType {
			continue
		}
		if hubs[current] && !roots[current] {
			continue
		}
		for _, next := range adj[current] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// rootUUIDs collects the walk roots for an entry point: its own object plus
// whatever its payload references directly.
func rootUUIDs(store *object.Store, ep EntryPoint) map[string]bool {
	roots := make(map[string]bool)
	if ep.UUID != "" {
		if _, ok := store.ByUUID(ep.UUID); ok {
			roots[ep.UUID] = true
		}
	}

	switch ep.BundleType {
	case TypeAction:
		if raw := getString(ep.Action, "target_uuid"); raw != "" {
			if rec, ok := resolveTarget(store, raw); ok {
				roots[rec.UUID] = true
			}
		}
		if exprs, ok := ep.Action["expressions"].(map[string]any); ok {
			for _, v := range exprs {
				if text, ok := v.(string); ok && text != "" {
					collectExpressionRefs(store, text, roots)
				}
			}
		}
		// The owning record type anchors the page bundle, not the action.
		delete(roots, ep.RecordTypeUUID)

	case TypePage:
		for _, view := range ep.Views {
			for _, field := range []string{"ui_expr", "visibility_expr"} {
				if expr := getString(view, field); expr != "" {
					collectExpressionRefs(store, expr, roots)
				}
			}
		}

	case TypeSite:
		if rec, ok := store.ByUUID(ep.UUID); ok {
			for _, page := range mapList(rec.Data, "pages") {
				collectPageRoots(store, page, roots)
			}
		}

	case TypeDashboard:
		if rec, ok := store.ByUUID(ep.UUID); ok {
			for _, key := range []string{"interfaces", "custom_pages"} {
				for _, item := range mapList(rec.Data, key) {
					addIfKnown(store, getString(item, "interface_uuid"), roots)
				}
			}
			addIfKnown(store, getString(rec.Data, "primary_record_type_uuid"), roots)
		}
	}
	return roots
}

func collectPageRoots(store *object.Store, page map[string]any, roots map[string]bool) {
	uuid := getString(page, "ui_object_uuid")
	if uuid == "" {
		uuid = getString(page, "target_uuid")
	}
	addIfKnown(store, uuid, roots)
	for _, child := range mapList(page, "children") {
		collectPageRoots(store, child, roots)
	}
}

func addIfKnown(store *object.Store, uuid string, roots map[string]bool) {
	if uuid == "" {
		return
	}
	if _, ok := store.ByUUID(uuid); ok {
		roots[uuid] = true
	}
}

var expressionRefPatterns = []*regexp.Regexp{
	sail.RuleRefRe, sail.ConstantRefRe, sail.TypeRefRe, sail.RecordTypeRefRe,
}

// collectExpressionRefs finds every object an expression references, by
// resolved name or by surviving address token.
func collectExpressionRefs(store *object.Store, text string, roots map[string]bool) {
	for _, re := range expressionRefPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if rec, ok := store.ByName(m[1]); ok {
				roots[rec.UUID] = true
			}
		}
	}
	for _, m := range sail.FullTokenRe.FindAllStringSubmatch(text, -1) {
		if rec, ok := store.ByAddress(m[1]); ok {
			roots[rec.UUID] = true
		}
	}
	for _, token := range sail.StandardTokens(text) {
		if rec, ok := store.ByAddress(token); ok {
			roots[rec.UUID] = true
		}
	}
}

// assignIDs sanitizes entry-point names into bundle IDs, resolving
// collisions with a numeric counter in discovery order.
func assignIDs(eps []EntryPoint) []string {
	used := make(map[string]bool, len(eps))
	ids := make([]string, len(eps))
	for i, ep := range eps {
		id := sanitizeID(ep.Name)
		if used[id] {
			n := 2
			for used[fmt.Sprintf("%s_%d", id, n)] {
				n++
			}
			id = fmt.Sprintf("%s_%d", id, n)
		}
		used[id] = true
		ids[i] = id
	}
	return ids
}

var (
	idStripRe    = regexp.MustCompile(`[^\w\s-]`)
	idCollapseRe = regexp.MustCompile(`\s+`)
)

func sanitizeID(name string) string {
	s := idStripRe.ReplaceAllString(name, "")
	s = idCollapseRe.ReplaceAllString(strings.TrimSpace(s), "_")
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	if s == "" {
		return "unnamed"
	}
	return s
}
