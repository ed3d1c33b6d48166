package gridbase

import (
	"gridbase/api"
	"gridbase/cache"
	"gridbase/logger"
	"gridbase/schema"
)

// Re-export the building-block types so most callers only import the
// root package.

type Row = schema.Row
type Warning = schema.Warning
type FieldMap = schema.FieldMap
type Field = api.Field
type SelectOption = api.SelectOption
type Logger = logger.Interface
type CacheStore = cache.Store

var (
	ErrAuth               = api.ErrAuth
	ErrNotFound           = api.ErrNotFound
	ErrBackendUnavailable = api.ErrBackendUnavailable
	ErrUnknownField       = schema.ErrUnknownField
	ErrAmbiguousFieldName = schema.ErrAmbiguousFieldName
)

var (
	NewMemoryCache = cache.NewMemory
	NewRedisCache  = cache.NewRedis
)
