package object

// Object kinds recognized by the extractor. The set is closed: anything the
// extractor could not classify arrives as KindUnknown.
const (
	KindInterface         = "Interface"
	KindExpressionRule    = "Expression Rule"
	KindProcessModel      = "Process Model"
	KindRecordType        = "Record Type"
	KindCDT               = "CDT"
	KindDataType          = "Data Type"
	KindIntegration       = "Integration"
	KindWebAPI            = "Web API"
	KindSite              = "Site"
	KindGroup             = "Group"
	KindConstant          = "Constant"
	KindConnectedSystem   = "Connected System"
	KindControlPanel      = "Control Panel"
	KindTranslationSet    = "Translation Set"
	KindTranslationString = "Translation String"
	KindUnknown           = "Unknown"
)

// Kinds lists every known kind in display order.
var Kinds = []string{
	KindInterface,
	KindExpressionRule,
	KindProcessModel,
	KindRecordType,
	KindCDT,
	KindDataType,
	KindIntegration,
	KindWebAPI,
	KindSite,
	KindGroup,
	KindConstant,
	KindConnectedSystem,
	KindControlPanel,
	KindTranslationSet,
	KindTranslationString,
	KindUnknown,
}

// namePriority orders kinds for name-based lookup when two objects of
// different kinds share a display name. Expression-level objects win over
// structural ones; Unknown always loses.
var namePriority = map[string]int{
	KindExpressionRule:    0,
	KindInterface:         1,
	KindProcessModel:      2,
	KindRecordType:        3,
	KindConstant:          4,
	KindCDT:               5,
	KindDataType:          6,
	KindIntegration:       7,
	KindWebAPI:            8,
	KindSite:              9,
	KindControlPanel:      10,
	KindConnectedSystem:   11,
	KindGroup:             12,
	KindTranslationSet:    13,
	KindTranslationString: 14,
	KindUnknown:           15,
}

func kindPriority(kind string) int {
	if p, ok := namePriority[kind]; ok {
		return p
	}
	return len(namePriority)
}
