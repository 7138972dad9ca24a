package backrex

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/backrex/backrex/syntax"
)

// compileCacheSize bounds the process-wide compile cache. Analyzer
// workloads re-validate the same pattern many times; caching the immutable
// compiled graph makes that free.
const compileCacheSize = 512

var compileCache, _ = lru.New[string, *Pattern](compileCacheSize)

// CompileCached returns a cached compiled pattern, compiling and caching
// on miss. Compilation errors are not cached. The returned Pattern is
// shared: it is immutable and safe for concurrent use.
func CompileCached(pattern string, flags syntax.Flags) (*Pattern, error) {
	key := cacheKey(pattern, flags)
	if p, ok := compileCache.Get(key); ok {
		return p, nil
	}
	p, err := CompileFlags(pattern, flags)
	if err != nil {
		return nil, err
	}
	compileCache.Add(key, p)
	return p, nil
}

// PurgeCache empties the compile cache.
func PurgeCache() {
	compileCache.Purge()
}

func cacheKey(pattern string, flags syntax.Flags) string {
	return fmt.Sprintf("%d:%s", flags, pattern)
}
