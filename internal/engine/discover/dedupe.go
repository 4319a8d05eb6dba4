package discover

// Dedupe collapses candidates that share an identity, keeping one survivor
// per id. The survivor is the richest record in its group: the one with the
// most populated optional fields, earliest-seen winning ties. Input order is
// otherwise preserved, so running Dedupe on already-unique input is a no-op.
func Dedupe(candidates []*Candidate) []*Candidate {
	if len(candidates) < 2 {
		return candidates
	}

	best := make(map[string]int, len(candidates))
	order := make([]string, 0, len(candidates))
	for i, c := range candidates {
		prev, seen := best[c.ID]
		if !seen {
			best[c.ID] = i
			order = append(order, c.ID)
			continue
		}
		if richness(c) > richness(candidates[prev]) {
			best[c.ID] = i
		}
	}

	out := make([]*Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, candidates[best[id]])
	}
	return out
}

// richness counts populated optional fields; only strictly richer duplicates
// replace an earlier survivor.
func richness(c *Candidate) int {
	n := 0
	if c.URL != "" {
		n++
	}
	switch {
	case c.Job != nil:
		j := c.Job
		for _, s := range []string{j.Company, j.Location, j.RemoteType, j.Description} {
			if s != "" {
				n++
			}
		}
		if j.Level != "" {
			n++
		}
		if j.SalaryMin != nil {
			n++
		}
		if j.SalaryMax != nil {
			n++
		}
		if j.PostedAt != nil {
			n++
		}
		if len(j.Skills) > 0 {
			n++
		}
	case c.Person != nil:
		p := c.Person
		for _, s := range []string{p.Title, p.Company, p.School, p.Snippet} {
			if s != "" {
				n++
			}
		}
		if p.GraduationYear != 0 {
			n++
		}
	}
	return n
}
