// Package generator plans bulk creation of exam-wide mock tests from a blueprint.
//
// Planning is pure: it receives the eligible pool per subject and a random
// source, and decides how many disjoint mocks can be built and which questions
// each one receives. Materializing the plan is the caller's job.
package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/SAP-F-2025/examprep-service/internal/models"
)

// Requirement is a per-subject question count, with duplicate subjects merged.
type Requirement struct {
	SubjectID uint
	Count     int
}

// SubjectSelection lists the questions one instance draws from one subject.
type SubjectSelection struct {
	SubjectID   uint
	QuestionIDs []uint
}

// Instance is the question set of one generated mock, in blueprint order.
type Instance struct {
	Subjects []SubjectSelection
}

// QuestionIDs flattens the instance in blueprint order.
func (in Instance) QuestionIDs() []uint {
	var ids []uint
	for _, s := range in.Subjects {
		ids = append(ids, s.QuestionIDs...)
	}
	return ids
}

type Plan struct {
	MaxTests  int
	Instances []Instance
	Warnings  []string
}

// NewRand returns an unseeded source for production runs.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Requirements merges blueprint items by subject, keeping first-seen order.
// Items with a non-positive count are dropped.
func Requirements(items []models.BlueprintItem) []Requirement {
	index := make(map[uint]int)
	var reqs []Requirement
	for _, it := range items {
		if it.QuestionCount <= 0 {
			continue
		}
		if i, ok := index[it.SubjectID]; ok {
			reqs[i].Count += it.QuestionCount
			continue
		}
		index[it.SubjectID] = len(reqs)
		reqs = append(reqs, Requirement{SubjectID: it.SubjectID, Count: it.QuestionCount})
	}
	return reqs
}

// MaxTests is the minimum over requirements of floor(pool/count). It is zero
// when there are no requirements.
func MaxTests(reqs []Requirement, poolSizes map[uint]int) int {
	best := -1
	for _, r := range reqs {
		if r.Count <= 0 {
			continue
		}
		n := poolSizes[r.SubjectID] / r.Count
		if best < 0 || n < best {
			best = n
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// Build shuffles each subject pool and slices it into disjoint instances.
// pools maps subject ID to eligible question IDs; it is not modified.
func Build(items []models.BlueprintItem, pools map[uint][]uint, rng *rand.Rand) Plan {
	var plan Plan

	reqs := Requirements(items)
	if len(reqs) == 0 {
		plan.Warnings = append(plan.Warnings, "blueprint does not require any questions")
		return plan
	}

	shuffled := make(map[uint][]uint, len(reqs))
	sizes := make(map[uint]int, len(reqs))
	for _, r := range reqs {
		pool := append([]uint(nil), pools[r.SubjectID]...)
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		shuffled[r.SubjectID] = pool
		sizes[r.SubjectID] = len(pool)

		if len(pool) < r.Count {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"subject %d: %d eligible questions, %d required per test", r.SubjectID, len(pool), r.Count))
		}
	}

	plan.MaxTests = MaxTests(reqs, sizes)
	plan.Instances = make([]Instance, 0, plan.MaxTests)
	for i := 0; i < plan.MaxTests; i++ {
		inst := Instance{Subjects: make([]SubjectSelection, 0, len(reqs))}
		for _, r := range reqs {
			pool := shuffled[r.SubjectID]
			inst.Subjects = append(inst.Subjects, SubjectSelection{
				SubjectID:   r.SubjectID,
				QuestionIDs: pool[:r.Count:r.Count],
			})
			shuffled[r.SubjectID] = pool[r.Count:]
		}
		plan.Instances = append(plan.Instances, inst)
	}

	return plan
}
