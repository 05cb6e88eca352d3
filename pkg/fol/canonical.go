package fol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CanonicalModelString renders m in the exact line-oriented format spec
// §6 mandates: `Domain size: n`, `Domain: {0,...,n-1}`, then
// `Constants:`/`Functions:`/`Predicates:` sections with their entries
// sorted by name and, within a name, by tuple order — so two structurally
// identical models always print identically (round-trip invariant, spec
// §8.1).
func CanonicalModelString(m *Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain size: %d\n", m.DomainSize)
	fmt.Fprintf(&b, "Domain: {%s}\n", joinInts(domainElements(m.DomainSize)))

	b.WriteString("Constants:\n")
	for _, name := range sortedKeys(m.Constants) {
		fmt.Fprintf(&b, "%s = %d\n", name, m.Constants[name])
	}

	b.WriteString("Functions:\n")
	for _, name := range sortedFunctionKeys(m.Functions) {
		table := m.Functions[name]
		entries := sortedTupleEntries(table)
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = fmt.Sprintf("(%s)->%d", joinInts(e.tuple), table[e.key])
		}
		fmt.Fprintf(&b, "%s: {%s}\n", name, strings.Join(parts, ", "))
	}

	b.WriteString("Predicates:\n")
	for _, name := range sortedPredicateKeys(m.Predicates) {
		set := m.Predicates[name]
		var tuples [][]int
		for key, held := range set {
			if held {
				tuples = append(tuples, parseTupleKey(key))
			}
		}
		sort.Slice(tuples, func(i, j int) bool { return lessTuple(tuples[i], tuples[j]) })
		parts := make([]string, len(tuples))
		for i, t := range tuples {
			parts[i] = fmt.Sprintf("(%s)", joinInts(t))
		}
		fmt.Fprintf(&b, "%s: {%s}\n", name, strings.Join(parts, ", "))
	}

	return b.String()
}

func domainElements(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedFunctionKeys(m map[string]map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedPredicateKeys(m map[string]map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type tupleEntry struct {
	key   string
	tuple []int
}

func sortedTupleEntries(table map[string]int) []tupleEntry {
	out := make([]tupleEntry, 0, len(table))
	for k := range table {
		out = append(out, tupleEntry{key: k, tuple: parseTupleKey(k)})
	}
	sort.Slice(out, func(i, j int) bool { return lessTuple(out[i].tuple, out[j].tuple) })
	return out
}

func lessTuple(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
