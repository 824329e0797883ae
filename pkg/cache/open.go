package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Open builds the cache selected by opts.Backend. An empty backend means
// [BackendFile].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		return nonNil(NewFileCache(opts.Dir))
	case BackendRedis:
		return nonNil(NewRedisCache(ctx, opts.Redis))
	case BackendMongo:
		return nonNil(NewMongoCache(ctx, opts.Mongo))
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// nonNil keeps a typed nil pointer from escaping as a non-nil Cache.
func nonNil[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
