package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// keyHashThreshold bounds raw key length; anything longer is replaced by
// prefix:md5(raw) so key size stays constant regardless of argument size.
const keyHashThreshold = 200

// Key builds a stable cache key from a prefix and a list of parts. Slice
// parts are sorted before joining so the same set of values always yields
// the same key.
func Key(prefix string, parts ...any) string {
	keyParts := make([]string, 0, len(parts)+1)
	keyParts = append(keyParts, prefix)
	for _, p := range parts {
		keyParts = append(keyParts, partString(p))
	}

	raw := strings.Join(keyParts, ":")
	if len(raw) > keyHashThreshold {
		sum := md5.Sum([]byte(raw))
		return prefix + ":" + hex.EncodeToString(sum[:])
	}
	return raw
}

func partString(p any) string {
	switch v := p.(type) {
	case nil:
		return "None"
	case string:
		return v
	case []string:
		sorted := make([]string, len(v))
		copy(sorted, v)
		sort.Strings(sorted)
		return strings.Join(sorted, ",")
	case []int:
		sorted := make([]int, len(v))
		copy(sorted, v)
		sort.Ints(sorted)
		joined := make([]string, len(sorted))
		for i, n := range sorted {
			joined[i] = strconv.Itoa(n)
		}
		return strings.Join(joined, ",")
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
