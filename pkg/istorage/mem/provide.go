/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package mem

import "github.com/voedger/odata/pkg/istorage"

func Provide() istorage.IStore {
	return &store{
		sets: map[string]recordSet{},
		seq:  map[string]int64{},
	}
}
