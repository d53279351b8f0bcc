package thematic

import "fmt"

// Merge records codes folded into a surviving code during refinement.
type Merge struct {
	From   []string `json:"from"`
	To     string   `json:"to"`
	Reason string   `json:"reason"`
}

// RefinementResult is the output of RefineCodebook.
type RefinementResult struct {
	Refined []Code  `json:"refined"`
	Merges  []Merge `json:"merges"`
}

// RefineCodebook merges near-duplicate codes in a single greedy pass.
//
// Each code joins the first cluster whose seed shares more than
// DefaultMergeThreshold of its name tokens, otherwise it seeds a new cluster.
// Clustering is first-match and not transitive, so input order matters.
// The input slice is never modified.
func RefineCodebook(codes []Code) RefinementResult {
	clusters := clusterCodes(codes, func(ratio float64) bool {
		return ratio > DefaultMergeThreshold
	})

	result := RefinementResult{
		Refined: make([]Code, 0, len(clusters)),
		Merges:  []Merge{},
	}
	for _, members := range clusters {
		if len(members) == 1 {
			result.Refined = append(result.Refined, members[0].clone())
			continue
		}
		merged, merge := mergeCluster(members)
		result.Refined = append(result.Refined, merged)
		result.Merges = append(result.Merges, merge)
	}
	return result
}

func mergeCluster(members []Code) (Code, Merge) {
	survivor := 0
	for i, m := range members {
		if len(m.Name) < len(members[survivor].Name) {
			survivor = i
		}
	}

	merged := Code{
		Name:       members[survivor].Name,
		Definition: members[0].Definition,
		Type:       members[0].Type,
	}
	var from []string
	for i, m := range members {
		merged.Frequency += m.Frequency
		merged.Examples = append(merged.Examples, m.Examples...)
		if i != survivor {
			from = append(from, m.Name)
		}
	}
	merged.Examples = capStrings(merged.Examples, DefaultMergedExampleCap)

	return merged, Merge{
		From:   from,
		To:     merged.Name,
		Reason: fmt.Sprintf("merged %d codes with overlapping names", len(members)),
	}
}

// clusterCodes groups codes greedily by name overlap against each cluster's seed.
func clusterCodes(codes []Code, similar func(ratio float64) bool) [][]Code {
	var clusters [][]Code
	for _, c := range codes {
		placed := false
		for i, cluster := range clusters {
			if similar(overlapRatio(cluster[0].Name, c.Name)) {
				clusters[i] = append(cluster, c)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []Code{c})
		}
	}
	return clusters
}
