package integration_tests

import "github.com/specialistvlad/provisiongrid/internal/identity"

func snapshot(in map[string]identity.Identity) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = string(v)
	}
	return out
}
