/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package iservicesctl

import (
	"github.com/voedger/odata/pkg/iservices"
)

func New() (impl iservices.IServicesController) {
	return &servicesController{}
}
