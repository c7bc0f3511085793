package detect

import "sort"

// Merge reconciles the raw findings from all detectors into a final set
// that is pairwise non-overlapping and sorted by span start.
//
// The sweep is greedy with a deterministic precedence rule for overlaps:
// higher confidence wins; on a tie the pattern detector beats any model
// (regex is treated as more precise for its narrow categories); then the
// longer span wins; then the earlier-registered detector (per rank). The
// losing finding is discarded whole — spans are never trimmed, because a
// truncated PII span can itself leak a fragment.
//
// A candidate fully contained in the last accepted span is discarded
// unless it strictly outranks the container, in which case it replaces it.
//
// rank maps each detector source to its registration order (lower is
// earlier). Merge does not depend on the order of raw: the sort step
// normalizes it, so concurrent detector joins need no ordering guarantee.
func Merge(raw []Finding, rank map[Source]int) []Finding {
	if len(raw) == 0 {
		return []Finding{}
	}

	sorted := make([]Finding, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		// Prefer the longer span first when starts tie.
		return sorted[i].Span.End > sorted[j].Span.End
	})

	accepted := make([]Finding, 0, len(sorted))
	for _, candidate := range sorted {
		if len(accepted) == 0 {
			accepted = append(accepted, candidate)
			continue
		}
		last := accepted[len(accepted)-1]
		if candidate.Span.Start >= last.Span.End {
			accepted = append(accepted, candidate)
			continue
		}
		// Overlap (including full containment): the precedence rule picks
		// exactly one survivor. Replacement is safe with respect to the
		// previously accepted finding: candidate.Start >= last.Start and
		// last did not overlap its predecessor.
		if outranks(candidate, last, rank) {
			accepted[len(accepted)-1] = candidate
		}
	}
	return accepted
}

// outranks reports whether a strictly wins over b under the precedence
// rule. Equal findings do not outrank each other, which keeps the sweep
// stable: the earlier-sorted finding survives.
func outranks(a, b Finding, rank map[Source]int) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Source.IsPattern() != b.Source.IsPattern() {
		return a.Source.IsPattern()
	}
	if a.Span.Len() != b.Span.Len() {
		return a.Span.Len() > b.Span.Len()
	}
	return rank[a.Source] < rank[b.Source]
}
