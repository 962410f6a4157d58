/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import "time"

const (
	None                     SaveChangesOptions = 0
	BatchWithSingleChangeset SaveChangesOptions = 1
	ContinueOnError          SaveChangesOptions = 2
	ReplaceOnUpdate          SaveChangesOptions = 4

	// one changeset per operation in a single batch
	BatchWithIndependentOperations SaveChangesOptions = 16

	// inserts carry only the properties marked by UpdateObject or MarkPropertiesSet
	PostOnlySetProperties SaveChangesOptions = 32
)

const (
	PreferenceDefault ResponsePreference = iota
	PreferenceIncludeContent
	PreferenceNoContent
)

const (
	headerPrefer          = "Prefer"
	headerIfMatch         = "If-Match"
	headerIfNoneMatch     = "If-None-Match"
	headerODataEntityID   = "OData-EntityId"
	preferReturnContent   = "return=representation"
	preferReturnMinimal   = "return=minimal"
	preferContinueOnError = "odata.continue-on-error"
	annotationID          = "@odata.id"
	batchSegment          = "$batch"
	refSegment            = "$ref"
	valueSegment          = "$value"
	queryID               = "$id"
	contentIDPrefix       = "$"
)

const (
	DefaultRetryMaxAttempts  = 3
	DefaultRetryInitialDelay = 100 * time.Millisecond
	DefaultRetryMaxDelay     = 2 * time.Second
)
