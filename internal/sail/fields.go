package sail

import "appatlas/internal/object"

// CodeFields maps each kind to the payload paths holding expression text.
// These paths get full reference resolution and are scanned for edges.
var CodeFields = map[string][]string{
	object.KindInterface: {"sail_code", "test_inputs[].input_value"},
	object.KindExpressionRule: {
		"sail_code", "definition",
		"test_cases[].test_inputs[].input_value",
		"test_cases[].assertions[].assertion_value",
	},
	object.KindProcessModel: {
		"nodes[].form_expression",
		"nodes[].gateway_conditions[].condition",
		"nodes[].inputs[].input_expression",
		"nodes[].outputs[].output_expression",
		"nodes[].pre_triggers[].rules[].expression",
		"nodes[].subprocess_config.input_mappings[].expression",
		"nodes[].subprocess_config.output_mappings[].save_into",
		"start_form_expression",
	},
	object.KindRecordType: {
		"actions[].expressions.TITLE",
		"actions[].expressions.DESCRIPTION",
		"actions[].expressions.VISIBILITY",
		"actions[].expressions.CONTEXT",
		"views[].visibility_expr",
		"views[].ui_expr",
		"views[].view_name",
	},
	object.KindWebAPI: {"sail_code"},
	object.KindSite: {
		"pages[].visibility_expr",
		"display_name",
		"header_background_color_expr",
		"selected_tab_background_color_expr",
		"accent_color_expr",
		"logo_expr",
		"favicon_expr",
		"loading_bar_color_expr",
	},
	object.KindControlPanel: {"settings_json_raw"},
	object.KindIntegration:  {"url", "request_body", "test_inputs[].input_value"},
}

// UUIDFields maps each kind to payload paths holding a single raw address.
// These resolve to a plain name (no kind prefix) and are not scanned as text.
var UUIDFields = map[string][]string{
	object.KindProcessModel: {
		"nodes[].interface_uuid",
		"nodes[].subprocess_uuid",
		"start_form_interface_uuid",
	},
	object.KindIntegration: {"connected_system_uuid"},
	object.KindGroup: {
		"parent_group_uuid",
		"members[].member_uuid",
	},
	object.KindConstant: {"value"},
	object.KindSite:     {"pages[].ui_object_uuid"},
	object.KindControlPanel: {
		"primary_record_type_uuid",
		"interfaces[].interface_uuid",
		"custom_pages[].interface_uuid",
	},
	object.KindRecordType: {
		"relationships[].target_record_type_uuid",
		"actions[].target_uuid",
	},
}

// Edge kinds tag dependency edges by the relationship the reference expresses.
const (
	EdgeCalls              = "CALLS"
	EdgeUsesConstant       = "USES_CONSTANT"
	EdgeUsesCDT            = "USES_CDT"
	EdgeUsesRecordType     = "USES_RECORD_TYPE"
	EdgeUsesIntegration    = "USES_INTEGRATION"
	EdgeUsesConnectedSys   = "USES_CONNECTED_SYSTEM"
	EdgeUsesGroup          = "USES_GROUP"
	EdgeUsesSite           = "USES_SITE"
)

// StructuralField pairs a payload path with the edge kind its references
// carry. Unlike CodeFields, the whole field value is one address.
type StructuralField struct {
	Path     string
	EdgeKind string
}

// StructuralFields maps each kind to its direct-reference fields.
var StructuralFields = map[string][]StructuralField{
	object.KindProcessModel: {
		{Path: "nodes[].interface_uuid", EdgeKind: EdgeCalls},
		{Path: "nodes[].subprocess_uuid", EdgeKind: EdgeCalls},
		{Path: "start_form_interface_uuid", EdgeKind: EdgeCalls},
	},
	object.KindIntegration: {
		{Path: "connected_system_uuid", EdgeKind: EdgeUsesConnectedSys},
	},
	object.KindRecordType: {
		{Path: "relationships[].target_record_type_uuid", EdgeKind: EdgeUsesRecordType},
		{Path: "actions[].target_uuid", EdgeKind: EdgeCalls},
	},
	object.KindSite: {
		{Path: "pages[].ui_object_uuid", EdgeKind: EdgeCalls},
	},
	object.KindGroup: {
		{Path: "parent_group_uuid", EdgeKind: EdgeUsesGroup},
	},
	object.KindControlPanel: {
		{Path: "primary_record_type_uuid", EdgeKind: EdgeUsesRecordType},
		{Path: "interfaces[].interface_uuid", EdgeKind: EdgeCalls},
		{Path: "custom_pages[].interface_uuid", EdgeKind: EdgeCalls},
	},
}

var edgeKindByTarget = map[string]string{
	object.KindExpressionRule:  EdgeCalls,
	object.KindInterface:       EdgeCalls,
	object.KindConstant:        EdgeUsesConstant,
	object.KindCDT:             EdgeUsesCDT,
	object.KindDataType:        EdgeUsesCDT,
	object.KindRecordType:      EdgeUsesRecordType,
	object.KindIntegration:     EdgeUsesIntegration,
	object.KindConnectedSystem: EdgeUsesConnectedSys,
	object.KindGroup:           EdgeUsesGroup,
	object.KindSite:            EdgeUsesSite,
}

// EdgeKindFor infers the edge kind from the target object's kind.
func EdgeKindFor(targetKind string) string {
	if k, ok := edgeKindByTarget[targetKind]; ok {
		return k
	}
	return EdgeCalls
}

// KindPrefix returns the reference prefix used when rendering a resolved
// address for the given kind.
func KindPrefix(kind string) string {
	switch kind {
	case object.KindConstant:
		return "cons!"
	case object.KindCDT, object.KindDataType:
		return "type!"
	default:
		return "rule!"
	}
}
