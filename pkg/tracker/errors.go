/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package tracker

import "errors"

var (
	ErrSaveInProgress    = errors.New("save changes is in progress")
	ErrCyclicDependency  = errors.New("cyclic dependency between pending changes")
	ErrAlreadyTracked    = errors.New("already tracked")
	ErrNotTracked        = errors.New("not tracked")
	ErrNotPointer        = errors.New("tracked object must be a non-nil pointer")
	ErrEntityIsDeleted   = errors.New("entity is deleted")
	ErrEmptyEntitySet    = errors.New("entity set name is empty")
	ErrEmptyPropertyName = errors.New("property name is empty")
)
