package store

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	generatedHostnames = 40000
	hostnameSeed       = 20250115
)

var (
	hostPrefixes = []string{"web", "db", "api", "cache", "worker", "mail", "cdn", "proxy", "app", "srv"}
	hostSuffixes = []string{"prod", "dev", "test", "staging", "backup", "primary", "secondary", "master", "slave"}
	hostRegions  = []string{"us-east", "us-west", "eu-west", "eu-central", "ap-south", "ap-north"}
)

// GenerateHostnames builds the synthetic hostname index. The same seed always
// yields the same sorted list.
func GenerateHostnames(n int, seed int64) []string {
	r := rand.New(rand.NewSource(seed))
	out := make([]string, 0, n+4)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("%s-%s-%s-%03d",
			hostPrefixes[r.Intn(len(hostPrefixes))],
			hostSuffixes[r.Intn(len(hostSuffixes))],
			hostRegions[r.Intn(len(hostRegions))],
			i))
	}
	out = append(out, "test-server-001", "prod-web-server", "staging-db-primary", "dev-api-gateway")
	sort.Strings(out)
	return out
}
