/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package pipeline

type errPipeline struct {
	err    error
	work   interface{}
	opName string
}

func (e errPipeline) Error() string {
	return e.err.Error()
}

func (e errPipeline) Unwrap() error {
	return e.err
}

func (e errPipeline) GetWork() interface{} {
	return e.work
}

func (e errPipeline) GetOpName() string {
	return e.opName
}
