package bundle

import (
	"fmt"
	"sort"

	"appatlas/internal/deps"
	"appatlas/internal/object"
)

// Structure is a bundle's lightweight skeleton: everything about the bundle
// except raw source text.
type Structure struct {
	Metadata   StructureMeta    `json:"_metadata"`
	EntryPoint map[string]any   `json:"entry_point"`
	Flow       map[string]any   `json:"flow"`
	Objects    []map[string]any `json:"objects"`
}

type StructureMeta struct {
	BundleType   string `json:"bundle_type"`
	RootName     string `json:"root_name"`
	ParentName   string `json:"parent_name,omitempty"`
	TotalObjects int    `json:"total_objects"`
}

// Workflow node types collapsed to a small vocabulary; unmapped types pass
// through unchanged.
var nodeTypeMap = map[string]string{
	"Start Event":       "START_EVENT",
	"End Event":         "END_EVENT",
	"Terminate Event":   "TERMINATE_EVENT",
	"XOR Gateway":       "XOR_GATEWAY",
	"AND Gateway":       "AND_GATEWAY",
	"OR Gateway":        "OR_GATEWAY",
	"Subprocess":        "SUBPROCESS",
	"Write Records":     "SCRIPT_TASK",
	"Script Task":       "SCRIPT_TASK",
	"User Input Task":   "USER_TASK",
	"Send E-Mail":       "SCRIPT_TASK",
	"Raise Error Event": "ERROR_EVENT",
}

func buildStructure(store *object.Store, graph *deps.Graph, ep EntryPoint, members []*object.Record, inBundle map[string]bool) *Structure {
	entries := make([]map[string]any, 0, len(members))
	for _, m := range members {
		entries = append(entries, buildObjectEntry(graph, m, inBundle))
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, _ := entries[i]["type"].(string)
		tj, _ := entries[j]["type"].(string)
		if ti != tj {
			return ti < tj
		}
		ni, _ := entries[i]["name"].(string)
		nj, _ := entries[j]["name"].(string)
		return ni < nj
	})

	return &Structure{
		Metadata: StructureMeta{
			BundleType:   ep.BundleType,
			RootName:     ep.Name,
			ParentName:   ep.ParentName,
			TotalObjects: len(members),
		},
		EntryPoint: buildEntryPointDetail(store, ep),
		Flow:       buildFlow(store, ep, members),
		Objects:    entries,
	}
}

// buildEntryPointDetail extracts the per-bundle-type header: what the entry
// point is and where it leads.
func buildEntryPointDetail(store *object.Store, ep EntryPoint) map[string]any {
	detail := make(map[string]any)

	switch ep.BundleType {
	case TypeAction:
		target := getString(ep.Action, "target_uuid")
		pm := findProcessModel(store, target)
		detail["action_type"] = ep.Action["action_type"]
		detail["record_type"] = ep.ParentName
		if pm != nil {
			detail["target_process"] = pm.Name
			form := getString(pm.Data, "start_form_interface_uuid")
			if formRec, ok := resolveTarget(store, form); ok {
				detail["form_interface"] = formRec.Name
			} else if form != "" {
				detail["form_interface"] = form
			}
		} else if target != "" {
			detail["target_process"] = target
		}
		detail["expressions"] = ep.Action["expressions"]

	case TypeProcess:
		if rec, ok := store.ByUUID(ep.UUID); ok {
			detail["complexity_score"] = rec.Data["complexity_score"]
			detail["total_nodes"] = rec.Data["total_nodes"]
			form := getString(rec.Data, "start_form_interface_uuid")
			if formRec, ok := resolveTarget(store, form); ok {
				detail["start_form"] = formRec.Name
			} else if form != "" {
				detail["start_form"] = form
			}
		}

	case TypePage:
		recordType := ep.ParentName
		if recordType == "" {
			if rec, ok := store.ByUUID(ep.UUID); ok {
				recordType = rec.Name
			}
		}
		detail["record_type"] = recordType
		views := make([]map[string]any, 0, len(ep.Views))
		for _, v := range ep.Views {
			if getString(v, "ui_expr") == "" {
				continue
			}
			views = append(views, map[string]any{
				"view_type": v["view_type"],
				"view_name": v["view_name"],
				"url_stub":  v["url_stub"],
			})
		}
		detail["views"] = views

	case TypeSite:
		if rec, ok := store.ByUUID(ep.UUID); ok {
			detail["url_stub"] = rec.Data["url_stub"]
			detail["pages"] = compactPages(mapList(rec.Data, "pages"))
		}

	case TypeDashboard:
		if rec, ok := store.ByUUID(ep.UUID); ok {
			detail["url_stub"] = rec.Data["url_stub"]
			detail["primary_record_type"] = rec.Data["primary_record_display_name"]
			names := make([]any, 0)
			for _, iface := range mapList(rec.Data, "interfaces") {
				if n := getString(iface, "interface_name"); n != "" {
					names = append(names, n)
				} else {
					names = append(names, iface["interface_uuid"])
				}
			}
			detail["interfaces"] = names
		}

	case TypeWebAPI:
		if rec, ok := store.ByUUID(ep.UUID); ok {
			detail["http_method"] = rec.Data["http_method"]
			detail["url_alias"] = rec.Data["url_alias"]
			detail["security"] = rec.Data["security"]
		}
	}
	return detail
}

// findProcessModel resolves an action target to a process model record. The
// target may be an identifier or a display name left behind by resolution.
func findProcessModel(store *object.Store, target string) *object.Record {
	if target == "" {
		return nil
	}
	if rec, ok := store.ByUUID(target); ok {
		return rec
	}
	if rec, ok := store.ByName(target); ok && rec.Kind == object.KindProcessModel {
		return rec
	}
	return nil
}

// buildFlow produces the simplified workflow graph for bundles rooted at or
// targeting a process model, including any subprocess members. Nil when the
// bundle has no workflow.
func buildFlow(store *object.Store, ep EntryPoint, members []*object.Record) map[string]any {
	var pm *object.Record
	switch ep.BundleType {
	case TypeAction:
		pm = findProcessModel(store, getString(ep.Action, "target_uuid"))
	case TypeProcess:
		pm, _ = store.ByUUID(ep.UUID)
	}
	if pm == nil || pm.Kind != object.KindProcessModel {
		return nil
	}

	flow := map[string]any{
		"process_model": buildFlowGraph(store, pm),
	}
	var subs []map[string]any
	for _, m := range members {
		if m.Kind == object.KindProcessModel && m.UUID != pm.UUID {
			subs = append(subs, buildFlowGraph(store, m))
		}
	}
	if len(subs) > 0 {
		flow["subprocesses"] = subs
	}
	return flow
}

func buildFlowGraph(store *object.Store, pm *object.Record) map[string]any {
	nodes := mapList(pm.Data, "nodes")
	flows := mapList(pm.Data, "flows")

	byID := make(map[string]map[string]any, len(nodes)*2)
	for _, n := range nodes {
		byID[getString(n, "node_id")] = n
		if gui, ok := n["gui_id"]; ok {
			byID[fmt.Sprint(gui)] = n
		}
	}
	outgoing := make(map[string][]map[string]any)
	for _, fl := range flows {
		from := getString(fl, "from_node_id")
		outgoing[from] = append(outgoing[from], fl)
	}

	graphNodes := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		name := getString(n, "node_name")
		if name == "" {
			name = "Unknown"
		}
		typeName := getString(n, "node_type_name")
		mapped, ok := nodeTypeMap[typeName]
		if !ok {
			mapped = typeName
			if mapped == "" {
				mapped = "UNKNOWN"
			}
		}
		entry := map[string]any{"name": name, "type": mapped}

		var next []string
		for _, fl := range outgoing[getString(n, "node_id")] {
			target, ok := byID[getString(fl, "to_node_id")]
			if !ok {
				continue
			}
			targetName := getString(target, "node_name")
			if label := getString(fl, "flow_label"); label != "" {
				next = append(next, fmt.Sprintf("%s (%s)", targetName, label))
			} else {
				next = append(next, targetName)
			}
		}
		if len(next) > 0 {
			entry["next"] = next
		}

		if sub := getString(n, "subprocess_uuid"); sub != "" {
			if rec, ok := store.ByUUID(sub); ok {
				entry["subprocess"] = rec.Name
			} else {
				entry["subprocess"] = sub
			}
		}
		if iface := getString(n, "interface_uuid"); iface != "" {
			if rec, ok := store.ByUUID(iface); ok {
				entry["interface"] = rec.Name
			} else {
				entry["interface"] = iface
			}
		}
		graphNodes = append(graphNodes, entry)
	}

	return map[string]any{
		"name":             pm.Name,
		"complexity_score": pm.Data["complexity_score"],
		"total_nodes":      pm.Data["total_nodes"],
		"nodes":            graphNodes,
	}
}

func buildObjectEntry(graph *deps.Graph, rec *object.Record, inBundle map[string]bool) map[string]any {
	calls := scopedNames(graph.Outbound[rec.UUID], inBundle, func(e deps.Edge) (string, string) { return e.TargetUUID, e.TargetName })
	calledBy := scopedNames(graph.Inbound[rec.UUID], inBundle, func(e deps.Edge) (string, string) { return e.SourceUUID, e.SourceName })

	entry := map[string]any{
		"uuid":        rec.UUID,
		"name":        rec.Name,
		"type":        rec.Kind,
		"description": rec.Data["description"],
	}
	promoteFields(entry, rec)
	entry["calls"] = calls
	entry["called_by"] = calledBy
	return entry
}

func scopedNames(edges []deps.Edge, inBundle map[string]bool, pick func(deps.Edge) (string, string)) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range edges {
		uuid, name := pick(e)
		if inBundle[uuid] && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// promoteFields lifts the kind-specific summary fields into the entry,
// never raw source text.
func promoteFields(entry map[string]any, rec *object.Record) {
	data := rec.Data
	switch rec.Kind {
	case object.KindInterface, object.KindExpressionRule:
		params, _ := data["parameters"].([]any)
		if params == nil {
			params = []any{}
		}
		entry["parameters"] = params
	case object.KindRecordType:
		actions := []string{}
		for _, a := range mapList(data, "actions") {
			if key := getString(a, "reference_key"); key != "" {
				actions = append(actions, key)
			} else {
				actions = append(actions, "Unknown")
			}
		}
		entry["actions"] = actions
		views := []string{}
		for _, v := range mapList(data, "views") {
			name := getString(v, "view_name")
			if name == "" {
				name = getString(v, "view_type")
			}
			if name == "" {
				name = "Unknown"
			}
			views = append(views, name)
		}
		entry["views"] = views
	case object.KindCDT:
		fields := []map[string]any{}
		for _, f := range mapList(data, "fields") {
			fields = append(fields, map[string]any{"name": f["name"], "type": f["type"]})
		}
		entry["fields"] = fields
	case object.KindConstant:
		entry["value"] = data["value"]
		entry["value_type"] = data["value_type"]
	case object.KindIntegration:
		cs := data["connected_system_name"]
		if cs == nil {
			cs = data["connected_system_uuid"]
		}
		entry["connected_system"] = cs
		entry["http_method"] = data["http_method"]
	case object.KindWebAPI:
		entry["url_alias"] = data["url_alias"]
		entry["http_method"] = data["http_method"]
	case object.KindConnectedSystem:
		entry["system_type"] = data["system_type"]
		entry["base_url"] = data["base_url"]
	case object.KindSite, object.KindControlPanel:
		entry["url_stub"] = data["url_stub"]
	}
}

func compactPages(pages []map[string]any) []map[string]any {
	out := []map[string]any{}
	for _, p := range pages {
		name := p["static_name"]
		if name == nil || name == "" {
			name = p["name_expr"]
		}
		page := map[string]any{
			"name":     name,
			"url_stub": p["url_stub"],
		}
		if children := mapList(p, "children"); len(children) > 0 {
			page["children"] = compactPages(children)
		}
		out = append(out, page)
	}
	return out
}
