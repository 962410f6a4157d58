/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

const (
	DefaultKeyProperty = "ID"

	HeaderPrefer                   = "Prefer"
	HeaderPreferenceApplied        = "Preference-Applied"
	HeaderIfMatch                  = "If-Match"
	HeaderIfNoneMatch              = "If-None-Match"
	HeaderODataEntityID            = "OData-EntityId"
	PreferReturnMinimal            = "return=minimal"
	PreferReturnContent            = "return=representation"
	PreferContinueOnError          = "odata.continue-on-error"
	AnnotationID                   = "@odata.id"
	AnnotationETag                 = "@odata.etag"
	AnnotationBind                 = "@odata.bind"
	ContentIDPrefix                = "$"
	SegmentRef                     = "$ref"
	SegmentValue                   = "$value"
	QueryID                        = "$id"
	anyETag                        = "*"
	collectionValue                = "value"
	annotationPrefix               = "@odata."
	firstVersion            uint64 = 1
)

const (
	KindList Kind = iota
	KindCreate
	KindRead
	KindUpdate
	KindReplace
	KindDelete
	KindListRelated
	KindCreateRelated
	KindListRefs
	KindAddRef
	KindSetRef
	KindDeleteRef
	KindReadStream
	KindWriteStream
	KindInvokeAction
)

var kindNames = map[Kind]string{
	KindList:          "List",
	KindCreate:        "Create",
	KindRead:          "Read",
	KindUpdate:        "Update",
	KindReplace:       "Replace",
	KindDelete:        "Delete",
	KindListRelated:   "ListRelated",
	KindCreateRelated: "CreateRelated",
	KindListRefs:      "ListRefs",
	KindAddRef:        "AddRef",
	KindSetRef:        "SetRef",
	KindDeleteRef:     "DeleteRef",
	KindReadStream:    "ReadStream",
	KindWriteStream:   "WriteStream",
	KindInvokeAction:  "InvokeAction",
}
