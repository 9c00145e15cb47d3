// internal/sample/sample.go
// Package sample draws the stratified human-rating cohort sample. The draw is
// a pure function of (runs, prompts, options, rng): randomness is always an
// explicit parameter so callers control reproducibility.
package sample

import (
	"sort"

	"github.com/mwiater/krino/internal/logging"
	"github.com/mwiater/krino/internal/store"
	"github.com/mwiater/krino/internal/util"
)

// Rand is the slice of math/rand the sampler needs. Tests may substitute a
// deterministic stub.
type Rand interface {
	Intn(n int) int
}

// CohortKey groups runs by (model, system-prompt version, prompt category).
type CohortKey struct {
	Model               string
	SystemPromptVersion string
	Category            string
}

// Options configures a stratified draw.
type Options struct {
	// TargetSize is the desired total sample size. It is enforced only by the
	// over-fill trim, so a zero target produces an empty sample.
	TargetSize int
	// PerCohortQuota caps the draw from any single cohort before
	// reconciliation.
	PerCohortQuota int
}

// Partition groups runs into cohorts keyed by (model, system-prompt version,
// category). Runs whose prompt_id is absent from the lookup are returned
// separately; they belong to no cohort.
func Partition(runs []store.Run, promptsByID map[string]store.Prompt) (map[CohortKey][]store.Run, []store.Run) {
	cohorts := make(map[CohortKey][]store.Run)
	var missing []store.Run
	for _, run := range runs {
		prompt, ok := promptsByID[run.PromptID]
		if !ok {
			missing = append(missing, run)
			continue
		}
		key := CohortKey{
			Model:               run.ModelName,
			SystemPromptVersion: run.SystemPromptVersion,
			Category:            prompt.Category,
		}
		cohorts[key] = append(cohorts[key], run)
	}
	return cohorts, missing
}

// Stratified draws up to PerCohortQuota runs from each cohort, tops the
// sample up from the unselected pool when below TargetSize, and trims it
// uniformly back down to TargetSize when above. The result is deduplicated
// and sorted ascending by run_id.
//
// The trim draws uniformly from the whole selected pool and makes no
// fairness guarantee across cohorts; a small cohort can lose all of its
// members in that step.
func Stratified(runs []store.Run, promptsByID map[string]store.Prompt, opts Options, rng Rand) []store.Run {
	cohorts, missing := Partition(runs, promptsByID)
	for _, run := range missing {
		logging.LogEvent("warning: run_id %d references missing prompt_id %q, excluded from sampling", run.RunID, run.PromptID)
	}

	// Cohorts iterate in lexicographic key order so the result does not
	// depend on input record ordering for the same grouping and seed.
	keys := make([]CohortKey, 0, len(cohorts))
	for key := range cohorts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	var sampled []store.Run
	for _, key := range keys {
		members := cohorts[key]
		sampled = append(sampled, drawWithoutReplacement(members, util.Min(opts.PerCohortQuota, len(members)), rng)...)
	}

	// Under-fill: top up from eligible runs not yet selected. This can push
	// cohorts past their quota.
	if len(sampled) < opts.TargetSize {
		selected := make(map[int]bool, len(sampled))
		for _, run := range sampled {
			selected[run.RunID] = true
		}
		var pool []store.Run
		for _, key := range keys {
			for _, run := range cohorts[key] {
				if !selected[run.RunID] {
					pool = append(pool, run)
				}
			}
		}
		need := util.Min(opts.TargetSize-len(sampled), len(pool))
		sampled = append(sampled, drawWithoutReplacement(pool, need, rng)...)
	}

	// Over-fill: second-stage downsample from the already-selected pool, not
	// a re-run of cohort sampling.
	if opts.TargetSize >= 0 && len(sampled) > opts.TargetSize {
		sampled = drawWithoutReplacement(sampled, opts.TargetSize, rng)
	}

	// Selection cannot pick a run twice, but the contract guarantees it.
	seen := make(map[int]bool, len(sampled))
	result := sampled[:0:0]
	for _, run := range sampled {
		if seen[run.RunID] {
			continue
		}
		seen[run.RunID] = true
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RunID < result[j].RunID })
	return result
}

// drawWithoutReplacement picks k elements uniformly at random without
// replacement. The input slice is never mutated.
func drawWithoutReplacement(members []store.Run, k int, rng Rand) []store.Run {
	if k <= 0 {
		return nil
	}
	if k > len(members) {
		k = len(members)
	}
	scratch := make([]store.Run, len(members))
	copy(scratch, members)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(scratch)-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	return scratch[:k]
}

// Breakdown counts the sampled runs per cohort for the console table.
func Breakdown(sampled []store.Run, promptsByID map[string]store.Prompt) map[CohortKey]int {
	counts := make(map[CohortKey]int)
	for _, run := range sampled {
		prompt, ok := promptsByID[run.PromptID]
		if !ok {
			continue
		}
		counts[CohortKey{
			Model:               run.ModelName,
			SystemPromptVersion: run.SystemPromptVersion,
			Category:            prompt.Category,
		}]++
	}
	return counts
}

// SortedKeys returns cohort keys in the sampler's lexicographic order.
func SortedKeys(counts map[CohortKey]int) []CohortKey {
	keys := make([]CohortKey, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	return keys
}

func lessKey(a, b CohortKey) bool {
	if a.Model != b.Model {
		return a.Model < b.Model
	}
	if a.SystemPromptVersion != b.SystemPromptVersion {
		return a.SystemPromptVersion < b.SystemPromptVersion
	}
	return a.Category < b.Category
}
