package heritage

import "errors"

var (
	ErrMalformed       = errors.New("heritage: malformed descriptor")
	ErrNotConfigurable = errors.New("heritage: member is not configurable")
	ErrNotExtensible   = errors.New("heritage: object is not extensible")
	ErrReadOnly        = errors.New("heritage: member is read-only")
	ErrNotCallable     = errors.New("heritage: member is not callable")
	ErrConstruct       = errors.New("heritage: construction failed")
	ErrFrozen          = errors.New("heritage: factory is frozen")
	ErrNotConstructor  = errors.New("heritage: implementation cannot be constructed")
)
